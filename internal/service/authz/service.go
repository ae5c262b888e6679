package authz

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/vetdesk/vetdesk-api/internal/model"
	"github.com/vetdesk/vetdesk-api/internal/repository"
	apperrors "github.com/vetdesk/vetdesk-api/pkg/errors"
)

const (
	cacheTTL     = 30 * time.Second
	cacheCleanup = 5 * time.Minute
)

type AuthzServicer interface {
	// Authorize checks that the user may act within the clinic. With no
	// roles given, any active membership passes; otherwise the membership
	// role must be one of those listed. ADMIN_MASTER passes everything.
	Authorize(ctx context.Context, user *model.User, clinicID uuid.UUID, roles ...model.ClinicRole) error
	MembershipFor(ctx context.Context, clinicID, userID uuid.UUID) (*model.ClinicMembership, error)
	Invalidate(clinicID, userID uuid.UUID)
}

type Service struct {
	memberships repository.MembershipRepository
	cache       *gocache.Cache
}

func NewService(memberships repository.MembershipRepository) *Service {
	return &Service{
		memberships: memberships,
		cache:       gocache.New(cacheTTL, cacheCleanup),
	}
}

func (s *Service) Authorize(ctx context.Context, user *model.User, clinicID uuid.UUID, roles ...model.ClinicRole) error {
	if user == nil {
		return apperrors.Unauthorized(nil)
	}
	if user.IsAdminMaster() {
		return nil
	}

	membership, err := s.MembershipFor(ctx, clinicID, user.ID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.Forbidden("not a member of this clinic")
		}
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !membership.Active {
		return apperrors.Forbidden("membership is inactive")
	}

	if len(roles) == 0 {
		return nil
	}
	for _, role := range roles {
		if membership.Role == role {
			return nil
		}
	}
	return apperrors.Forbidden("insufficient role for this action")
}

func (s *Service) MembershipFor(ctx context.Context, clinicID, userID uuid.UUID) (*model.ClinicMembership, error) {
	key := cacheKey(clinicID, userID)
	if cached, found := s.cache.Get(key); found {
		return cached.(*model.ClinicMembership), nil
	}

	membership, err := s.memberships.Find(ctx, clinicID, userID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, membership, cacheTTL)
	return membership, nil
}

// Invalidate drops the cached membership after a role change or
// deactivation so the next check sees the fresh row.
func (s *Service) Invalidate(clinicID, userID uuid.UUID) {
	s.cache.Delete(cacheKey(clinicID, userID))
}

func cacheKey(clinicID, userID uuid.UUID) string {
	return clinicID.String() + ":" + userID.String()
}
