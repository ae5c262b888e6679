package prescription

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/vetdesk-api/internal/model"
	"github.com/vetdesk/vetdesk-api/internal/repository"
	apperrors "github.com/vetdesk/vetdesk-api/pkg/errors"
	"github.com/vetdesk/vetdesk-api/pkg/logger"
	"github.com/vetdesk/vetdesk-api/pkg/security"
)

type PrescriptionServicer interface {
	CreatePrescription(ctx context.Context, req *model.CreatePrescriptionRequest) (*model.Prescription, error)
	GetPrescription(ctx context.Context, id uuid.UUID) (*model.Prescription, error)
	ListPrescriptions(ctx context.Context, clinicID uuid.UUID) ([]*model.Prescription, error)
	AddItem(ctx context.Context, prescriptionID uuid.UUID, req *model.CreatePrescriptionItemRequest) (*model.PrescriptionItem, error)
	DeleteItem(ctx context.Context, prescriptionID, itemID uuid.UUID) error
	// AttachDocument stores the rendered PDF location pushed by the
	// document generator. The caller authenticates with the clinic's
	// webhook secret, not a user token.
	AttachDocument(ctx context.Context, id uuid.UUID, req *model.AttachDocumentRequest) error
}

type Service struct {
	repo       repository.PrescriptionRepository
	encounters repository.EncounterRepository
	clinics    repository.ClinicRepository
	outbox     repository.OutboxRepository
	hasher     security.SecretHasher
	logger     *logger.Logger
}

func NewService(
	repo repository.PrescriptionRepository,
	encounters repository.EncounterRepository,
	clinics repository.ClinicRepository,
	outbox repository.OutboxRepository,
	hasher security.SecretHasher,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:       repo,
		encounters: encounters,
		clinics:    clinics,
		outbox:     outbox,
		hasher:     hasher,
		logger:     log,
	}
}

func (s *Service) CreatePrescription(ctx context.Context, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	clinicID, err := uuid.Parse(req.ClinicID)
	if err != nil {
		return nil, fmt.Errorf("invalid clinic id: %w", err)
	}
	encounterID, err := uuid.Parse(req.EncounterID)
	if err != nil {
		return nil, fmt.Errorf("invalid encounter id: %w", err)
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("invalid patient id: %w", err)
	}
	providerID, err := uuid.Parse(req.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("invalid provider id: %w", err)
	}

	encounter, err := s.encounters.Get(ctx, encounterID)
	if err != nil {
		return nil, err
	}
	if encounter.ClinicID != clinicID || encounter.PatientID != patientID {
		return nil, apperrors.Validation("encounter does not match patient and clinic", nil)
	}

	now := time.Now().UTC()
	prescription := &model.Prescription{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClinicID:       clinicID,
		EncounterID:    encounterID,
		PatientID:      patientID,
		ProviderID:     providerID,
		Notes:          req.Notes,
		SendToWhatsapp: true,
	}
	if req.SendToWhatsapp != nil {
		prescription.SendToWhatsapp = *req.SendToWhatsapp
	}
	for _, item := range req.Items {
		prescription.Items = append(prescription.Items, &model.PrescriptionItem{
			ID:             uuid.New(),
			PrescriptionID: prescription.ID,
			DrugName:       item.DrugName,
			Dosage:         item.Dosage,
			Frequency:      item.Frequency,
			Duration:       item.Duration,
			Route:          item.Route,
			Notes:          item.Notes,
		})
	}
	if !prescription.HasDispatchableItem() {
		return nil, apperrors.Validation("prescription needs at least one item with a drug name", nil)
	}

	if err := s.repo.Create(ctx, prescription); err != nil {
		return nil, fmt.Errorf("failed to create prescription: %w", err)
	}

	if prescription.SendToWhatsapp {
		s.emitDispatch(ctx, prescription)
	}

	return prescription, nil
}

func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListPrescriptions(ctx context.Context, clinicID uuid.UUID) ([]*model.Prescription, error) {
	return s.repo.List(ctx, clinicID)
}

func (s *Service) AddItem(ctx context.Context, prescriptionID uuid.UUID, req *model.CreatePrescriptionItemRequest) (*model.PrescriptionItem, error) {
	if _, err := s.repo.Get(ctx, prescriptionID); err != nil {
		return nil, err
	}

	item := &model.PrescriptionItem{
		ID:             uuid.New(),
		PrescriptionID: prescriptionID,
		DrugName:       req.DrugName,
		Dosage:         req.Dosage,
		Frequency:      req.Frequency,
		Duration:       req.Duration,
		Route:          req.Route,
		Notes:          req.Notes,
	}
	if err := s.repo.AddItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item unless it is the last one carrying a drug
// name; a prescription never drops below one dispatchable item.
func (s *Service) DeleteItem(ctx context.Context, prescriptionID, itemID uuid.UUID) error {
	items, err := s.repo.ListItems(ctx, prescriptionID)
	if err != nil {
		return err
	}

	found := false
	remaining := 0
	for _, item := range items {
		if item.ID == itemID {
			found = true
			continue
		}
		remaining++
	}
	if !found {
		return apperrors.NotFound("prescription item", nil)
	}
	if remaining == 0 {
		return apperrors.Conflict("prescription must keep at least one item")
	}

	return s.repo.DeleteItem(ctx, itemID)
}

func (s *Service) AttachDocument(ctx context.Context, id uuid.UUID, req *model.AttachDocumentRequest) error {
	prescription, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	clinic, err := s.clinics.Get(ctx, prescription.ClinicID)
	if err != nil {
		return err
	}
	if clinic.WebhookSecretHash == nil {
		return apperrors.Unauthorized(nil)
	}
	if err := s.hasher.Compare(*clinic.WebhookSecretHash, req.Secret); err != nil {
		return apperrors.Unauthorized(err)
	}

	return s.repo.SetDocumentURL(ctx, id, req.PDFURL)
}

func (s *Service) emitDispatch(ctx context.Context, prescription *model.Prescription) {
	payload, err := json.Marshal(prescription)
	if err != nil {
		s.logger.Error(err, "failed to marshal prescription event")
		return
	}
	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: model.EventPrescriptionDispatch,
		Payload:   payload,
		Status:    model.OutboxStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to record prescription event")
	}
}
