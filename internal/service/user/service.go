package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vetdesk/vetdesk-api/internal/model"
	"github.com/vetdesk/vetdesk-api/internal/repository"
	"github.com/vetdesk/vetdesk-api/pkg/auth"
)

type UserServicer interface {
	UpsertFromClaims(ctx context.Context, claims *auth.IdentityClaims) (*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	ListMemberships(ctx context.Context, userID uuid.UUID) ([]*model.ClinicMembership, error)
}

type Service struct {
	repo        repository.UserRepository
	memberships repository.MembershipRepository
}

func NewService(repo repository.UserRepository, memberships repository.MembershipRepository) *Service {
	return &Service{
		repo:        repo,
		memberships: memberships,
	}
}

// UpsertFromClaims persists the identity asserted by the auth provider.
// Called on every authenticated request; the first call creates the
// user, later calls refresh the profile fields.
func (s *Service) UpsertFromClaims(ctx context.Context, claims *auth.IdentityClaims) (*model.User, error) {
	upsert := &model.UpsertUser{
		ID:   claims.Subject,
		Name: claims.Name,
	}
	if claims.Email != "" {
		upsert.Email = &claims.Email
	}
	if claims.FirstName != "" {
		upsert.FirstName = &claims.FirstName
	}
	if claims.LastName != "" {
		upsert.LastName = &claims.LastName
	}
	if claims.ProfileImageURL != "" {
		upsert.ProfileImageURL = &claims.ProfileImageURL
	}
	if upsert.Name == "" && claims.Email != "" {
		upsert.Name = claims.Email
	}

	user, err := s.repo.Upsert(ctx, upsert)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.FirstName != nil {
		user.FirstName = req.FirstName
	}
	if req.LastName != nil {
		user.LastName = req.LastName
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Timezone != nil {
		user.Timezone = req.Timezone
	}
	if req.GlobalRole != nil {
		user.GlobalRole = *req.GlobalRole
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListMemberships(ctx context.Context, userID uuid.UUID) ([]*model.ClinicMembership, error) {
	return s.memberships.ListActiveByUser(ctx, userID)
}
