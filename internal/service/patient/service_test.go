package patient

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

type fakePatientRepo struct {
	repository.PatientRepository
	patients map[uuid.UUID]*model.Patient
	deleted  []uuid.UUID
}

func (f *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	f.patients[p.ID] = p
	return nil
}

func (f *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	copied := *p
	return &copied, nil
}

func (f *fakePatientRepo) Update(_ context.Context, p *model.Patient) error {
	f.patients[p.ID] = p
	return nil
}

func (f *fakePatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.patients, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeOwnerRepo struct {
	repository.OwnerRepository
	owners map[uuid.UUID]*model.Owner
}

func (f *fakeOwnerRepo) Get(_ context.Context, id uuid.UUID) (*model.Owner, error) {
	o, ok := f.owners[id]
	if !ok {
		return nil, apperrors.NotFound("owner", nil)
	}
	return o, nil
}

type fakeAppointmentRepo struct {
	repository.AppointmentRepository
	counts map[uuid.UUID]int
}

func (f *fakeAppointmentRepo) CountByPatient(_ context.Context, patientID uuid.UUID) (int, error) {
	return f.counts[patientID], nil
}

type fakeEncounterRepo struct {
	repository.EncounterRepository
	counts map[uuid.UUID]int
}

func (f *fakeEncounterRepo) CountByPatient(_ context.Context, patientID uuid.UUID) (int, error) {
	return f.counts[patientID], nil
}

type fixture struct {
	svc          *Service
	repo         *fakePatientRepo
	appointments *fakeAppointmentRepo
	encounters   *fakeEncounterRepo
	clinicID     uuid.UUID
	owner        *model.Owner
}

func newFixture() *fixture {
	clinicID := uuid.New()
	owner := &model.Owner{Base: model.Base{ID: uuid.New()}, ClinicID: clinicID, Name: "Maria Souza"}

	repo := &fakePatientRepo{patients: map[uuid.UUID]*model.Patient{}}
	owners := &fakeOwnerRepo{owners: map[uuid.UUID]*model.Owner{owner.ID: owner}}
	appointments := &fakeAppointmentRepo{counts: map[uuid.UUID]int{}}
	encounters := &fakeEncounterRepo{counts: map[uuid.UUID]int{}}

	svc := NewService(repo, owners, appointments, encounters)
	return &fixture{svc: svc, repo: repo, appointments: appointments, encounters: encounters, clinicID: clinicID, owner: owner}
}

func (fx *fixture) create(t *testing.T) *model.Patient {
	t.Helper()
	p, err := fx.svc.CreatePatient(context.Background(), &model.CreatePatientRequest{
		ClinicID: fx.clinicID.String(),
		OwnerID:  fx.owner.ID.String(),
		Name:     "Rex",
		Species:  "dog",
	})
	require.NoError(t, err)
	return p
}

func TestCreatePatientDefaultsSexUnknown(t *testing.T) {
	fx := newFixture()
	p := fx.create(t)

	assert.Equal(t, model.SexUnknown, p.Sex)
	assert.Equal(t, fx.owner.ID, p.OwnerID)
}

func TestCreatePatientRejectsForeignOwner(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.CreatePatient(context.Background(), &model.CreatePatientRequest{
		ClinicID: uuid.New().String(),
		OwnerID:  fx.owner.ID.String(),
		Name:     "Rex",
		Species:  "dog",
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestUpdatePatientRejectsOwnerFromAnotherClinic(t *testing.T) {
	fx := newFixture()
	p := fx.create(t)

	foreign := &model.Owner{Base: model.Base{ID: uuid.New()}, ClinicID: uuid.New(), Name: "Other"}
	fx.svc.owners.(*fakeOwnerRepo).owners[foreign.ID] = foreign

	foreignID := foreign.ID.String()
	_, err := fx.svc.UpdatePatient(context.Background(), p.ID, &model.UpdatePatientRequest{OwnerID: &foreignID})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestDeletePatientBlockedByHistory(t *testing.T) {
	fx := newFixture()
	p := fx.create(t)

	fx.appointments.counts[p.ID] = 1
	err := fx.svc.DeletePatient(context.Background(), p.ID)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)

	fx.appointments.counts[p.ID] = 0
	fx.encounters.counts[p.ID] = 1
	err = fx.svc.DeletePatient(context.Background(), p.ID)
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)

	fx.encounters.counts[p.ID] = 0
	require.NoError(t, fx.svc.DeletePatient(context.Background(), p.ID))
	assert.Len(t, fx.repo.deleted, 1)
}
