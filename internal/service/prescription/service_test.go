package prescription

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/vetdesk-api/internal/model"
	"github.com/vetdesk/vetdesk-api/internal/repository"
	apperrors "github.com/vetdesk/vetdesk-api/pkg/errors"
	"github.com/vetdesk/vetdesk-api/pkg/logger"
	"github.com/vetdesk/vetdesk-api/pkg/security"
)

type fakePrescriptionRepo struct {
	repository.PrescriptionRepository
	prescriptions map[uuid.UUID]*model.Prescription
	items         map[uuid.UUID][]*model.PrescriptionItem
	documents     map[uuid.UUID]string
}

func (f *fakePrescriptionRepo) Create(_ context.Context, p *model.Prescription) error {
	f.prescriptions[p.ID] = p
	f.items[p.ID] = p.Items
	return nil
}

func (f *fakePrescriptionRepo) Get(_ context.Context, id uuid.UUID) (*model.Prescription, error) {
	p, ok := f.prescriptions[id]
	if !ok {
		return nil, apperrors.NotFound("prescription", nil)
	}
	copied := *p
	copied.Items = f.items[id]
	return &copied, nil
}

func (f *fakePrescriptionRepo) AddItem(_ context.Context, item *model.PrescriptionItem) error {
	f.items[item.PrescriptionID] = append(f.items[item.PrescriptionID], item)
	return nil
}

func (f *fakePrescriptionRepo) ListItems(_ context.Context, id uuid.UUID) ([]*model.PrescriptionItem, error) {
	return f.items[id], nil
}

func (f *fakePrescriptionRepo) DeleteItem(_ context.Context, itemID uuid.UUID) error {
	for pid, items := range f.items {
		var kept []*model.PrescriptionItem
		for _, item := range items {
			if item.ID != itemID {
				kept = append(kept, item)
			}
		}
		f.items[pid] = kept
	}
	return nil
}

func (f *fakePrescriptionRepo) SetDocumentURL(_ context.Context, id uuid.UUID, pdfURL string) error {
	f.documents[id] = pdfURL
	return nil
}

type fakeEncounterRepo struct {
	repository.EncounterRepository
	encounters map[uuid.UUID]*model.Encounter
}

func (f *fakeEncounterRepo) Get(_ context.Context, id uuid.UUID) (*model.Encounter, error) {
	e, ok := f.encounters[id]
	if !ok {
		return nil, apperrors.NotFound("encounter", nil)
	}
	return e, nil
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

type fixture struct {
	svc       *Service
	repo      *fakePrescriptionRepo
	outbox    *fakeOutboxRepo
	clinics   *fakeClinicRepo
	clinicID  uuid.UUID
	encounter *model.Encounter
	hasher    security.SecretHasher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clinicID := uuid.New()
	encounter := &model.Encounter{
		Base:      model.Base{ID: uuid.New()},
		ClinicID:  clinicID,
		PatientID: uuid.New(),
	}

	repo := &fakePrescriptionRepo{
		prescriptions: map[uuid.UUID]*model.Prescription{},
		items:         map[uuid.UUID][]*model.PrescriptionItem{},
		documents:     map[uuid.UUID]string{},
	}
	encounters := &fakeEncounterRepo{encounters: map[uuid.UUID]*model.Encounter{encounter.ID: encounter}}
	clinics := &fakeClinicRepo{clinics: map[uuid.UUID]*model.Clinic{
		clinicID: {Base: model.Base{ID: clinicID}, Name: "Happy Paws", Active: true},
	}}
	outbox := &fakeOutboxRepo{}
	hasher := security.NewBcryptHasher(4)

	svc := NewService(repo, encounters, clinics, outbox, hasher, logger.NewLogger(nil))
	return &fixture{
		svc:       svc,
		repo:      repo,
		outbox:    outbox,
		clinics:   clinics,
		clinicID:  clinicID,
		encounter: encounter,
		hasher:    hasher,
	}
}

func (fx *fixture) createRequest() *model.CreatePrescriptionRequest {
	return &model.CreatePrescriptionRequest{
		ClinicID:    fx.clinicID.String(),
		EncounterID: fx.encounter.ID.String(),
		PatientID:   fx.encounter.PatientID.String(),
		ProviderID:  uuid.New().String(),
		Items: []model.CreatePrescriptionItemRequest{
			{DrugName: "Amoxicillin"},
		},
	}
}

func TestCreatePrescriptionDispatchesByDefault(t *testing.T) {
	fx := newFixture(t)

	p, err := fx.svc.CreatePrescription(context.Background(), fx.createRequest())
	require.NoError(t, err)
	assert.Len(t, p.Items, 1)
	assert.True(t, p.SendToWhatsapp)

	require.Len(t, fx.outbox.events, 1)
	assert.Equal(t, model.EventPrescriptionDispatch, fx.outbox.events[0].EventType)
}

func TestCreateWithOptOutSkipsDispatch(t *testing.T) {
	fx := newFixture(t)
	send := false
	req := fx.createRequest()
	req.SendToWhatsapp = &send

	p, err := fx.svc.CreatePrescription(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, p.SendToWhatsapp)
	assert.Empty(t, fx.outbox.events)
}

func TestCreateRejectsBlankDrugNames(t *testing.T) {
	fx := newFixture(t)
	req := fx.createRequest()
	req.Items = []model.CreatePrescriptionItemRequest{{DrugName: "   "}}

	_, err := fx.svc.CreatePrescription(context.Background(), req)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestCreateRejectsMismatchedEncounter(t *testing.T) {
	fx := newFixture(t)
	req := fx.createRequest()
	req.PatientID = uuid.New().String()

	_, err := fx.svc.CreatePrescription(context.Background(), req)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestDeleteItemKeepsAtLeastOne(t *testing.T) {
	fx := newFixture(t)

	p, err := fx.svc.CreatePrescription(context.Background(), fx.createRequest())
	require.NoError(t, err)

	err = fx.svc.DeleteItem(context.Background(), p.ID, p.Items[0].ID)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)

	item, err := fx.svc.AddItem(context.Background(), p.ID, &model.CreatePrescriptionItemRequest{DrugName: "Meloxicam"})
	require.NoError(t, err)

	require.NoError(t, fx.svc.DeleteItem(context.Background(), p.ID, item.ID))
}

func TestAttachDocumentVerifiesWebhookSecret(t *testing.T) {
	fx := newFixture(t)

	hash, err := fx.hasher.Hash("super-secret-webhook-key")
	require.NoError(t, err)
	fx.clinics.clinics[fx.clinicID].WebhookSecretHash = &hash

	p, err := fx.svc.CreatePrescription(context.Background(), fx.createRequest())
	require.NoError(t, err)

	err = fx.svc.AttachDocument(context.Background(), p.ID, &model.AttachDocumentRequest{
		PDFURL: "https://docs.example.com/rx.pdf",
		Secret: "wrong",
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)

	err = fx.svc.AttachDocument(context.Background(), p.ID, &model.AttachDocumentRequest{
		PDFURL: "https://docs.example.com/rx.pdf",
		Secret: "super-secret-webhook-key",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://docs.example.com/rx.pdf", fx.repo.documents[p.ID])
}

func TestAttachDocumentWithoutConfiguredSecretFails(t *testing.T) {
	fx := newFixture(t)

	p, err := fx.svc.CreatePrescription(context.Background(), fx.createRequest())
	require.NoError(t, err)

	err = fx.svc.AttachDocument(context.Background(), p.ID, &model.AttachDocumentRequest{
		PDFURL: "https://docs.example.com/rx.pdf",
		Secret: "anything",
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
}
