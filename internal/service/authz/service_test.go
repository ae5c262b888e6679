package authz

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/vetdesk-api/internal/model"
	"github.com/vetdesk/vetdesk-api/internal/repository"
	apperrors "github.com/vetdesk/vetdesk-api/pkg/errors"
)

type fakeMembershipRepo struct {
	repository.MembershipRepository
	memberships map[string]*model.ClinicMembership
	findCalls   int
}

func key(clinicID, userID uuid.UUID) string {
	return clinicID.String() + ":" + userID.String()
}

func (f *fakeMembershipRepo) Find(_ context.Context, clinicID, userID uuid.UUID) (*model.ClinicMembership, error) {
	f.findCalls++
	m, ok := f.memberships[key(clinicID, userID)]
	if !ok {
		return nil, apperrors.NotFound("membership", nil)
	}
	return m, nil
}

func newFixture(role model.ClinicRole, active bool) (*Service, *fakeMembershipRepo, *model.User, uuid.UUID) {
	clinicID := uuid.New()
	user := &model.User{Base: model.Base{ID: uuid.New()}, GlobalRole: model.GlobalRoleUser}

	repo := &fakeMembershipRepo{memberships: map[string]*model.ClinicMembership{
		key(clinicID, user.ID): {
			ClinicID: clinicID,
			UserID:   user.ID,
			Role:     role,
			Active:   active,
		},
	}}
	return NewService(repo), repo, user, clinicID
}

func TestAuthorizeAdminMasterBypassesMembership(t *testing.T) {
	svc := NewService(&fakeMembershipRepo{memberships: map[string]*model.ClinicMembership{}})
	admin := &model.User{Base: model.Base{ID: uuid.New()}, GlobalRole: model.GlobalRoleAdminMaster}

	err := svc.Authorize(context.Background(), admin, uuid.New(), model.ClinicRoleAdmin)
	assert.NoError(t, err)
}

func TestAuthorizeActiveMemberAnyRole(t *testing.T) {
	svc, _, user, clinicID := newFixture(model.ClinicRoleReceptionist, true)

	err := svc.Authorize(context.Background(), user, clinicID)
	assert.NoError(t, err)
}

func TestAuthorizeRoleMismatchIsForbidden(t *testing.T) {
	svc, _, user, clinicID := newFixture(model.ClinicRoleReceptionist, true)

	err := svc.Authorize(context.Background(), user, clinicID, model.ClinicRoleVeterinarian)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)
}

func TestAuthorizeNonMemberIsForbidden(t *testing.T) {
	svc, _, user, _ := newFixture(model.ClinicRoleAdmin, true)

	err := svc.Authorize(context.Background(), user, uuid.New())
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)
}

func TestAuthorizeInactiveMembershipIsForbidden(t *testing.T) {
	svc, _, user, clinicID := newFixture(model.ClinicRoleAdmin, false)

	err := svc.Authorize(context.Background(), user, clinicID)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)
}

func TestAuthorizeNilUserIsUnauthorized(t *testing.T) {
	svc := NewService(&fakeMembershipRepo{memberships: map[string]*model.ClinicMembership{}})

	err := svc.Authorize(context.Background(), nil, uuid.New())
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
}

func TestMembershipLookupIsCached(t *testing.T) {
	svc, repo, user, clinicID := newFixture(model.ClinicRoleAdmin, true)

	require.NoError(t, svc.Authorize(context.Background(), user, clinicID))
	require.NoError(t, svc.Authorize(context.Background(), user, clinicID))
	assert.Equal(t, 1, repo.findCalls)

	svc.Invalidate(clinicID, user.ID)
	require.NoError(t, svc.Authorize(context.Background(), user, clinicID))
	assert.Equal(t, 2, repo.findCalls)
}
