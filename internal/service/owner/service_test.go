package owner

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

type fakeOwnerRepo struct {
	repository.OwnerRepository
	owners  map[uuid.UUID]*model.Owner
	deleted []uuid.UUID
}

func (f *fakeOwnerRepo) Create(_ context.Context, o *model.Owner) error {
	f.owners[o.ID] = o
	return nil
}

func (f *fakeOwnerRepo) Get(_ context.Context, id uuid.UUID) (*model.Owner, error) {
	o, ok := f.owners[id]
	if !ok {
		return nil, apperrors.NotFound("owner", nil)
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOwnerRepo) Update(_ context.Context, o *model.Owner) error {
	f.owners[o.ID] = o
	return nil
}

func (f *fakeOwnerRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.owners, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakePatientRepo struct {
	repository.PatientRepository
	countByOwner map[uuid.UUID]int
}

func (f *fakePatientRepo) CountByOwner(_ context.Context, ownerID uuid.UUID) (int, error) {
	return f.countByOwner[ownerID], nil
}

func (f *fakePatientRepo) ListByOwner(_ context.Context, _ uuid.UUID) ([]*model.Patient, error) {
	return nil, nil
}

func newFixture() (*Service, *fakeOwnerRepo, *fakePatientRepo) {
	owners := &fakeOwnerRepo{owners: map[uuid.UUID]*model.Owner{}}
	patients := &fakePatientRepo{countByOwner: map[uuid.UUID]int{}}
	return NewService(owners, patients), owners, patients
}

func TestCreateOwnerDefaults(t *testing.T) {
	svc, _, _ := newFixture()

	o, err := svc.CreateOwner(context.Background(), &model.CreateOwnerRequest{
		ClinicID: uuid.New().String(),
		Name:     "Maria Souza",
	})
	require.NoError(t, err)
	assert.True(t, o.WhatsappOptIn)
	assert.NotEqual(t, uuid.Nil, o.ID)
}

func TestCreateOwnerHonorsOptOut(t *testing.T) {
	svc, _, _ := newFixture()
	optIn := false

	o, err := svc.CreateOwner(context.Background(), &model.CreateOwnerRequest{
		ClinicID:      uuid.New().String(),
		Name:          "Maria Souza",
		WhatsappOptIn: &optIn,
	})
	require.NoError(t, err)
	assert.False(t, o.WhatsappOptIn)
}

func TestUpdateOwnerMergesFields(t *testing.T) {
	svc, _, _ := newFixture()

	o, err := svc.CreateOwner(context.Background(), &model.CreateOwnerRequest{
		ClinicID: uuid.New().String(),
		Name:     "Maria Souza",
	})
	require.NoError(t, err)

	phone := "+55 11 98888-7777"
	updated, err := svc.UpdateOwner(context.Background(), o.ID, &model.UpdateOwnerRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", updated.Name)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, phone, *updated.Phone)
}

func TestDeleteOwnerBlockedByPatients(t *testing.T) {
	svc, owners, patients := newFixture()

	o, err := svc.CreateOwner(context.Background(), &model.CreateOwnerRequest{
		ClinicID: uuid.New().String(),
		Name:     "Maria Souza",
	})
	require.NoError(t, err)
	patients.countByOwner[o.ID] = 2

	err = svc.DeleteOwner(context.Background(), o.ID)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
	assert.Empty(t, owners.deleted)

	patients.countByOwner[o.ID] = 0
	require.NoError(t, svc.DeleteOwner(context.Background(), o.ID))
	assert.Len(t, owners.deleted, 1)
}

func TestListPatientsRequiresExistingOwner(t *testing.T) {
	svc, _, _ := newFixture()

	_, err := svc.ListPatients(context.Background(), uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}
