package membership

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/vetdesk-api/internal/email"
	"github.com/vetdesk/vetdesk-api/internal/model"
	"github.com/vetdesk/vetdesk-api/internal/repository"
	apperrors "github.com/vetdesk/vetdesk-api/pkg/errors"
	"github.com/vetdesk/vetdesk-api/pkg/logger"
)

type MembershipServicer interface {
	CreateMembership(ctx context.Context, req *model.CreateMembershipRequest) (*model.ClinicMembership, error)
	GetMembership(ctx context.Context, id uuid.UUID) (*model.ClinicMembership, error)
	UpdateMembership(ctx context.Context, id uuid.UUID, req *model.UpdateMembershipRequest) (*model.ClinicMembership, error)
	RemoveMembership(ctx context.Context, id uuid.UUID) error
	ListMemberships(ctx context.Context, clinicID uuid.UUID) ([]*model.ClinicMembership, error)
}

// Invalidator drops a cached membership entry after a write.
type Invalidator interface {
	Invalidate(clinicID, userID uuid.UUID)
}

type Service struct {
	repo     repository.MembershipRepository
	users    repository.UserRepository
	clinics  repository.ClinicRepository
	outbox   repository.OutboxRepository
	emailSvc email.Service
	cache    Invalidator
	logger   *logger.Logger
}

func NewService(
	repo repository.MembershipRepository,
	users repository.UserRepository,
	clinics repository.ClinicRepository,
	outbox repository.OutboxRepository,
	emailSvc email.Service,
	cache Invalidator,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		clinics:  clinics,
		outbox:   outbox,
		emailSvc: emailSvc,
		cache:    cache,
		logger:   log,
	}
}

// CreateMembership grants a user a role in a clinic. If a row for the
// pair already exists it is reactivated with the new role instead of
// inserting a duplicate.
func (s *Service) CreateMembership(ctx context.Context, req *model.CreateMembershipRequest) (*model.ClinicMembership, error) {
	clinicID, err := uuid.Parse(req.ClinicID)
	if err != nil {
		return nil, fmt.Errorf("invalid clinic id: %w", err)
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	clinic, err := s.clinics.Get(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	if !clinic.Active {
		return nil, apperrors.Conflict("clinic is deactivated")
	}
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Find(ctx, clinicID, userID)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}

	var membership *model.ClinicMembership
	if existing != nil {
		if existing.Active {
			return nil, apperrors.Conflict("user is already a member of this clinic")
		}
		existing.Role = req.Role
		existing.Active = true
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		membership = existing
	} else {
		now := time.Now().UTC()
		membership = &model.ClinicMembership{
			Base: model.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			ClinicID: clinicID,
			UserID:   userID,
			Role:     req.Role,
			Active:   true,
		}
		if err := s.repo.Create(ctx, membership); err != nil {
			return nil, err
		}
	}

	s.cache.Invalidate(clinicID, userID)
	s.emitInvited(ctx, membership)

	if user.Email != nil {
		if err := s.emailSvc.SendMembershipInvite(ctx, *user.Email, clinic.Name, string(membership.Role)); err != nil {
			s.logger.Error(err, "failed to send membership invite email")
		}
	}

	return membership, nil
}

func (s *Service) GetMembership(ctx context.Context, id uuid.UUID) (*model.ClinicMembership, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateMembership(ctx context.Context, id uuid.UUID, req *model.UpdateMembershipRequest) (*model.ClinicMembership, error) {
	membership, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != nil {
		membership.Role = *req.Role
	}

	if err := s.repo.Update(ctx, membership); err != nil {
		return nil, err
	}

	s.cache.Invalidate(membership.ClinicID, membership.UserID)
	return membership, nil
}

func (s *Service) RemoveMembership(ctx context.Context, id uuid.UUID) error {
	membership, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(membership.ClinicID, membership.UserID)
	return nil
}

func (s *Service) ListMemberships(ctx context.Context, clinicID uuid.UUID) ([]*model.ClinicMembership, error) {
	return s.repo.ListByClinic(ctx, clinicID)
}

func (s *Service) emitInvited(ctx context.Context, membership *model.ClinicMembership) {
	payload, err := json.Marshal(membership)
	if err != nil {
		s.logger.Error(err, "failed to marshal membership event")
		return
	}
	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: model.EventMembershipInvited,
		Payload:   payload,
		Status:    model.OutboxStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to record membership event")
	}
}
