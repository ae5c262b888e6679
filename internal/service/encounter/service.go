package encounter

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
)

type EncounterServicer interface {
	CreateEncounter(ctx context.Context, req *model.CreateEncounterRequest) (*model.Encounter, error)
	GetEncounter(ctx context.Context, id uuid.UUID) (*model.Encounter, error)
	UpdateEncounter(ctx context.Context, id uuid.UUID, req *model.UpdateEncounterRequest) (*model.Encounter, error)
	ConfirmEncounter(ctx context.Context, id uuid.UUID, version int) (*model.Encounter, error)
	AddAddendum(ctx context.Context, id, authorID uuid.UUID, req *model.AddAddendumRequest) (*model.Encounter, error)
	ListEncounters(ctx context.Context, clinicID uuid.UUID) ([]*model.Encounter, error)
	ListByPatient(ctx context.Context, clinicID, patientID uuid.UUID) ([]*model.Encounter, error)
}

type Service struct {
	repo         repository.EncounterRepository
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	outbox       repository.OutboxRepository
	logger       *logger.Logger
}

func NewService(
	repo repository.EncounterRepository,
	patients repository.PatientRepository,
	appointments repository.AppointmentRepository,
	outbox repository.OutboxRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:         repo,
		patients:     patients,
		appointments: appointments,
		outbox:       outbox,
		logger:       log,
	}
}

func (s *Service) CreateEncounter(ctx context.Context, req *model.CreateEncounterRequest) (*model.Encounter, error) {
	clinicID, err := uuid.Parse(req.ClinicID)
	if err != nil {
		return nil, fmt.Errorf("invalid clinic id: %w", err)
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("invalid patient id: %w", err)
	}
	providerID, err := uuid.Parse(req.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("invalid provider id: %w", err)
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.ClinicID != clinicID {
		return nil, apperrors.Validation("patient belongs to a different clinic", nil)
	}

	var appointmentID *uuid.UUID
	if req.AppointmentID != nil {
		id, err := uuid.Parse(*req.AppointmentID)
		if err != nil {
			return nil, fmt.Errorf("invalid appointment id: %w", err)
		}
		appointment, err := s.appointments.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if appointment.ClinicID != clinicID || appointment.PatientID != patientID {
			return nil, apperrors.Validation("appointment does not match patient and clinic", nil)
		}

		exists, err := s.repo.ExistsForAppointment(ctx, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.Conflict("appointment already has a clinical record")
		}
		appointmentID = &id
	}

	now := time.Now().UTC()
	encounter := &model.Encounter{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClinicID:       clinicID,
		AppointmentID:  appointmentID,
		PatientID:      patientID,
		ProviderID:     providerID,
		Status:         model.EncounterStatusDraft,
		Version:        1,
		ChiefComplaint: req.ChiefComplaint,
		HistoryPresent: req.HistoryPresent,
		PhysicalExam:   req.PhysicalExam,
		Diagnosis:      req.Diagnosis,
		Plan:           req.Plan,
		Vitals:         req.Vitals,
		RawText:        req.RawText,
	}

	if err := s.repo.Create(ctx, encounter); err != nil {
		return nil, fmt.Errorf("failed to create encounter: %w", err)
	}
	return encounter, nil
}

func (s *Service) GetEncounter(ctx context.Context, id uuid.UUID) (*model.Encounter, error) {
	return s.repo.Get(ctx, id)
}

// UpdateEncounter rewrites the clinical fields of a draft. The caller
// sends the version it last read; a stale version loses with a
// conflict instead of silently overwriting a colleague's edit.
func (s *Service) UpdateEncounter(ctx context.Context, id uuid.UUID, req *model.UpdateEncounterRequest) (*model.Encounter, error) {
	encounter, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if encounter.Status == model.EncounterStatusConfirmed {
		return nil, apperrors.Conflict("encounter is signed; use an addendum")
	}

	encounter.ChiefComplaint = req.ChiefComplaint
	encounter.HistoryPresent = req.HistoryPresent
	encounter.PhysicalExam = req.PhysicalExam
	encounter.Diagnosis = req.Diagnosis
	encounter.Plan = req.Plan
	encounter.Vitals = req.Vitals
	encounter.RawText = req.RawText
	encounter.Version = req.Version

	ok, err := s.repo.UpdateDraft(ctx, encounter)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Conflict("encounter was modified concurrently")
	}

	return s.repo.Get(ctx, id)
}

// ConfirmEncounter signs the draft. After this the clinical fields are
// immutable; corrections go through addenda.
func (s *Service) ConfirmEncounter(ctx context.Context, id uuid.UUID, version int) (*model.Encounter, error) {
	encounter, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if encounter.Status == model.EncounterStatusConfirmed {
		return nil, apperrors.Conflict("encounter is already signed")
	}

	signedAt := time.Now().UTC()
	ok, err := s.repo.Confirm(ctx, id, version, signedAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Conflict("encounter was modified concurrently")
	}

	signed, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.emitSigned(ctx, signed)
	return signed, nil
}

// AddAddendum appends a dated note to a signed encounter. Drafts take
// edits directly and never carry addenda.
func (s *Service) AddAddendum(ctx context.Context, id, authorID uuid.UUID, req *model.AddAddendumRequest) (*model.Encounter, error) {
	encounter, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if encounter.Status != model.EncounterStatusConfirmed {
		return nil, apperrors.Conflict("addenda only apply to signed encounters")
	}

	addendum := &model.Addendum{
		Text:      req.Text,
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.AppendAddendum(ctx, id, addendum); err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

func (s *Service) ListEncounters(ctx context.Context, clinicID uuid.UUID) ([]*model.Encounter, error) {
	return s.repo.List(ctx, clinicID)
}

// ListByPatient returns the patient's clinical history. The patient
// must belong to the clinic; a foreign patient id reads as not found.
func (s *Service) ListByPatient(ctx context.Context, clinicID, patientID uuid.UUID) ([]*model.Encounter, error) {
	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.ClinicID != clinicID {
		return nil, apperrors.NotFound("patient", nil)
	}
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) emitSigned(ctx context.Context, encounter *model.Encounter) {
	payload, err := json.Marshal(encounter)
	if err != nil {
		s.logger.Error(err, "failed to marshal encounter event")
		return
	}
	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: model.EventEncounterSigned,
		Payload:   payload,
		Status:    model.OutboxStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to record encounter event")
	}
}
