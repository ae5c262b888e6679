package membership

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/vetdesk-api/internal/email"
	"github.com/vetdesk/vetdesk-api/internal/model"
	"github.com/vetdesk/vetdesk-api/internal/repository"
	apperrors "github.com/vetdesk/vetdesk-api/pkg/errors"
	"github.com/vetdesk/vetdesk-api/pkg/logger"
)

type fakeMembershipRepo struct {
	repository.MembershipRepository
	byID        map[uuid.UUID]*model.ClinicMembership
	deactivated []uuid.UUID
}

func pairKey(clinicID, userID uuid.UUID) string {
	return clinicID.String() + ":" + userID.String()
}

func (f *fakeMembershipRepo) Create(_ context.Context, m *model.ClinicMembership) error {
	f.byID[m.ID] = m
	return nil
}

func (f *fakeMembershipRepo) Get(_ context.Context, id uuid.UUID) (*model.ClinicMembership, error) {
	m, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NotFound("membership", nil)
	}
	return m, nil
}

func (f *fakeMembershipRepo) Find(_ context.Context, clinicID, userID uuid.UUID) (*model.ClinicMembership, error) {
	for _, m := range f.byID {
		if pairKey(m.ClinicID, m.UserID) == pairKey(clinicID, userID) {
			return m, nil
		}
	}
	return nil, apperrors.NotFound("membership", nil)
}

func (f *fakeMembershipRepo) Update(_ context.Context, m *model.ClinicMembership) error {
	f.byID[m.ID] = m
	return nil
}

func (f *fakeMembershipRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	if m, ok := f.byID[id]; ok {
		m.Active = false
	}
	f.deactivated = append(f.deactivated, id)
	return nil
}

type fakeUserRepo struct {
	repository.UserRepository
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return u, nil
}

type fakeClinicRepo struct {
	repository.ClinicRepository
	clinics map[uuid.UUID]*model.Clinic
}

func (f *fakeClinicRepo) Get(_ context.Context, id uuid.UUID) (*model.Clinic, error) {
	c, ok := f.clinics[id]
	if !ok {
		return nil, apperrors.NotFound("clinic", nil)
	}
	return c, nil
}

type fakeOutboxRepo struct {
	repository.OutboxRepository
	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	f.events = append(f.events, e)
	return nil
}

type fakeEmailService struct {
	email.Service
	invites []string
	err     error
}

func (f *fakeEmailService) SendMembershipInvite(_ context.Context, to, _, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.invites = append(f.invites, to)
	return nil
}

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) Invalidate(_, _ uuid.UUID) {
	f.calls++
}

type fixture struct {
	svc    *Service
	repo   *fakeMembershipRepo
	outbox *fakeOutboxRepo
	email  *fakeEmailService
	cache  *fakeInvalidator
	clinic *model.Clinic
	user   *model.User
}

func newFixture() *fixture {
	userEmail := "vet@happypaws.example"
	clinic := &model.Clinic{Base: model.Base{ID: uuid.New()}, Name: "Happy Paws", Active: true}
	user := &model.User{Base: model.Base{ID: uuid.New()}, Name: "Ana Lima", Email: &userEmail}

	repo := &fakeMembershipRepo{byID: map[uuid.UUID]*model.ClinicMembership{}}
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{user.ID: user}}
	clinics := &fakeClinicRepo{clinics: map[uuid.UUID]*model.Clinic{clinic.ID: clinic}}
	outbox := &fakeOutboxRepo{}
	emailSvc := &fakeEmailService{}
	cache := &fakeInvalidator{}

	svc := NewService(repo, users, clinics, outbox, emailSvc, cache, logger.NewLogger(nil))
	return &fixture{svc: svc, repo: repo, outbox: outbox, email: emailSvc, cache: cache, clinic: clinic, user: user}
}

func (fx *fixture) createRequest(role model.ClinicRole) *model.CreateMembershipRequest {
	return &model.CreateMembershipRequest{
		ClinicID: fx.clinic.ID.String(),
		UserID:   fx.user.ID.String(),
		Role:     role,
	}
}

func TestCreateMembershipInvitesAndInvalidates(t *testing.T) {
	fx := newFixture()

	m, err := fx.svc.CreateMembership(context.Background(), fx.createRequest(model.ClinicRoleVeterinarian))
	require.NoError(t, err)
	assert.True(t, m.Active)
	assert.Equal(t, model.ClinicRoleVeterinarian, m.Role)

	assert.Equal(t, 1, fx.cache.calls)
	assert.Equal(t, []string{"vet@happypaws.example"}, fx.email.invites)
	require.Len(t, fx.outbox.events, 1)
	assert.Equal(t, model.EventMembershipInvited, fx.outbox.events[0].EventType)
}

func TestCreateMembershipRejectsActiveDuplicate(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.CreateMembership(context.Background(), fx.createRequest(model.ClinicRoleVeterinarian))
	require.NoError(t, err)

	_, err = fx.svc.CreateMembership(context.Background(), fx.createRequest(model.ClinicRoleAdmin))
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestCreateMembershipReactivatesInsteadOfDuplicating(t *testing.T) {
	fx := newFixture()

	m, err := fx.svc.CreateMembership(context.Background(), fx.createRequest(model.ClinicRoleReceptionist))
	require.NoError(t, err)
	require.NoError(t, fx.svc.RemoveMembership(context.Background(), m.ID))

	reactivated, err := fx.svc.CreateMembership(context.Background(), fx.createRequest(model.ClinicRoleVeterinarian))
	require.NoError(t, err)
	assert.Equal(t, m.ID, reactivated.ID)
	assert.True(t, reactivated.Active)
	assert.Equal(t, model.ClinicRoleVeterinarian, reactivated.Role)
	assert.Len(t, fx.repo.byID, 1)
}

func TestCreateMembershipRequiresActiveClinic(t *testing.T) {
	fx := newFixture()
	fx.clinic.Active = false

	_, err := fx.svc.CreateMembership(context.Background(), fx.createRequest(model.ClinicRoleAdmin))
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestCreateMembershipSurvivesEmailFailure(t *testing.T) {
	fx := newFixture()
	fx.email.err = errors.New("smtp unreachable")

	m, err := fx.svc.CreateMembership(context.Background(), fx.createRequest(model.ClinicRoleVeterinarian))
	require.NoError(t, err)
	assert.True(t, m.Active)
}

func TestRemoveMembershipDeactivatesAndInvalidates(t *testing.T) {
	fx := newFixture()

	m, err := fx.svc.CreateMembership(context.Background(), fx.createRequest(model.ClinicRoleVeterinarian))
	require.NoError(t, err)
	fx.cache.calls = 0

	require.NoError(t, fx.svc.RemoveMembership(context.Background(), m.ID))
	assert.False(t, fx.repo.byID[m.ID].Active)
	assert.Equal(t, 1, fx.cache.calls)
}
