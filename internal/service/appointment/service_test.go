package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/vetdesk-api/internal/model"
	"github.com/vetdesk/vetdesk-api/internal/repository"
	apperrors "github.com/vetdesk/vetdesk-api/pkg/errors"
	"github.com/vetdesk/vetdesk-api/pkg/logger"
)

type fakeAppointmentRepo struct {
	repository.AppointmentRepository
	appointments map[uuid.UUID]*model.Appointment
	overlap      bool
	deleted      []uuid.UUID
}

func (f *fakeAppointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	f.appointments[a.ID] = a
	return nil
}

func (f *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, ok := f.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAppointmentRepo) Update(_ context.Context, a *model.Appointment) error {
	f.appointments[a.ID] = a
	return nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.AppointmentStatus) (bool, error) {
	a, ok := f.appointments[id]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = to
	return true, nil
}

func (f *fakeAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.appointments, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAppointmentRepo) HasOverlap(_ context.Context, _ uuid.UUID, _, _ time.Time, _ *uuid.UUID) (bool, error) {
	return f.overlap, nil
}

type fakePatientRepo struct {
	repository.PatientRepository
	patients map[uuid.UUID]*model.Patient
}

func (f *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	return p, nil
}

type fakeEncounterRepo struct {
	repository.EncounterRepository
	hasEncounter bool
}

func (f *fakeEncounterRepo) ExistsForAppointment(_ context.Context, _ uuid.UUID) (bool, error) {
	return f.hasEncounter, nil
}

type fakeOutboxRepo struct {
	repository.OutboxRepository
	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	f.events = append(f.events, e)
	return nil
}

type fixture struct {
	svc        *Service
	repo       *fakeAppointmentRepo
	encounters *fakeEncounterRepo
	outbox     *fakeOutboxRepo
	clinicID   uuid.UUID
	patient    *model.Patient
}

func newFixture() *fixture {
	clinicID := uuid.New()
	patient := &model.Patient{
		Base:     model.Base{ID: uuid.New()},
		ClinicID: clinicID,
		OwnerID:  uuid.New(),
	}

	repo := &fakeAppointmentRepo{appointments: map[uuid.UUID]*model.Appointment{}}
	patients := &fakePatientRepo{patients: map[uuid.UUID]*model.Patient{patient.ID: patient}}
	encounters := &fakeEncounterRepo{}
	outbox := &fakeOutboxRepo{}

	svc := NewService(repo, patients, encounters, outbox, logger.NewLogger(nil))
	return &fixture{svc: svc, repo: repo, encounters: encounters, outbox: outbox, clinicID: clinicID, patient: patient}
}

func (fx *fixture) createRequest() *model.CreateAppointmentRequest {
	start := time.Now().Add(time.Hour)
	return &model.CreateAppointmentRequest{
		ClinicID:   fx.clinicID.String(),
		PatientID:  fx.patient.ID.String(),
		OwnerID:    fx.patient.OwnerID.String(),
		ProviderID: uuid.New().String(),
		StartsAt:   start,
		EndsAt:     start.Add(30 * time.Minute),
	}
}

func TestCreateAppointmentStartsPending(t *testing.T) {
	fx := newFixture()

	a, err := fx.svc.CreateAppointment(context.Background(), fx.createRequest(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, a.Status)
	assert.Equal(t, model.AppointmentSourceManual, a.Source)

	require.Len(t, fx.outbox.events, 1)
	assert.Equal(t, model.EventAppointmentCreated, fx.outbox.events[0].EventType)
}

func TestCreateAppointmentRejectsProviderOverlap(t *testing.T) {
	fx := newFixture()
	fx.repo.overlap = true

	_, err := fx.svc.CreateAppointment(context.Background(), fx.createRequest(), uuid.New())
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestCreateAppointmentRejectsForeignPatient(t *testing.T) {
	fx := newFixture()
	req := fx.createRequest()
	req.ClinicID = uuid.New().String()

	_, err := fx.svc.CreateAppointment(context.Background(), req, uuid.New())
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestCreateAppointmentRejectsMismatchedOwner(t *testing.T) {
	fx := newFixture()
	req := fx.createRequest()
	req.OwnerID = uuid.New().String()

	_, err := fx.svc.CreateAppointment(context.Background(), req, uuid.New())
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestTransitionFollowsLifecycle(t *testing.T) {
	fx := newFixture()
	a, err := fx.svc.CreateAppointment(context.Background(), fx.createRequest(), uuid.New())
	require.NoError(t, err)

	confirmed, err := fx.svc.TransitionAppointment(context.Background(), a.ID, model.AppointmentStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, confirmed.Status)

	completed, err := fx.svc.TransitionAppointment(context.Background(), a.ID, model.AppointmentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, completed.Status)
}

func TestTransitionRejectsIllegalMove(t *testing.T) {
	fx := newFixture()
	a, err := fx.svc.CreateAppointment(context.Background(), fx.createRequest(), uuid.New())
	require.NoError(t, err)

	_, err = fx.svc.TransitionAppointment(context.Background(), a.ID, model.AppointmentStatusCompleted)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestTransitionOutOfTerminalStateFails(t *testing.T) {
	fx := newFixture()
	a, err := fx.svc.CreateAppointment(context.Background(), fx.createRequest(), uuid.New())
	require.NoError(t, err)

	_, err = fx.svc.TransitionAppointment(context.Background(), a.ID, model.AppointmentStatusCancelled)
	require.NoError(t, err)

	_, err = fx.svc.TransitionAppointment(context.Background(), a.ID, model.AppointmentStatusConfirmed)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestDeleteRequiresCancelledWithoutEncounter(t *testing.T) {
	fx := newFixture()
	a, err := fx.svc.CreateAppointment(context.Background(), fx.createRequest(), uuid.New())
	require.NoError(t, err)

	err = fx.svc.DeleteAppointment(context.Background(), a.ID)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)

	_, err = fx.svc.TransitionAppointment(context.Background(), a.ID, model.AppointmentStatusCancelled)
	require.NoError(t, err)

	fx.encounters.hasEncounter = true
	err = fx.svc.DeleteAppointment(context.Background(), a.ID)
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)

	fx.encounters.hasEncounter = false
	require.NoError(t, fx.svc.DeleteAppointment(context.Background(), a.ID))
	assert.Len(t, fx.repo.deleted, 1)
}

func TestRescheduleRejectsClosedAppointment(t *testing.T) {
	fx := newFixture()
	a, err := fx.svc.CreateAppointment(context.Background(), fx.createRequest(), uuid.New())
	require.NoError(t, err)

	_, err = fx.svc.TransitionAppointment(context.Background(), a.ID, model.AppointmentStatusCancelled)
	require.NoError(t, err)

	newStart := time.Now().Add(2 * time.Hour)
	newEnd := newStart.Add(30 * time.Minute)
	_, err = fx.svc.RescheduleAppointment(context.Background(), a.ID, &model.UpdateAppointmentRequest{
		StartsAt: &newStart,
		EndsAt:   &newEnd,
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}
