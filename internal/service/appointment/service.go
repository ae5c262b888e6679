package appointment

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

type AppointmentServicer interface {
	CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest, createdBy uuid.UUID) (*model.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	RescheduleAppointment(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error)
	TransitionAppointment(ctx context.Context, id uuid.UUID, to model.AppointmentStatus) (*model.Appointment, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
	ListAppointments(ctx context.Context, clinicID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error)
}

type Service struct {
	repo       repository.AppointmentRepository
	patients   repository.PatientRepository
	encounters repository.EncounterRepository
	outbox     repository.OutboxRepository
	logger     *logger.Logger
}

func NewService(
	repo repository.AppointmentRepository,
	patients repository.PatientRepository,
	encounters repository.EncounterRepository,
	outbox repository.OutboxRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:       repo,
		patients:   patients,
		encounters: encounters,
		outbox:     outbox,
		logger:     log,
	}
}

func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest, createdBy uuid.UUID) (*model.Appointment, error) {
	clinicID, err := uuid.Parse(req.ClinicID)
	if err != nil {
		return nil, fmt.Errorf("invalid clinic id: %w", err)
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("invalid patient id: %w", err)
	}
	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id: %w", err)
	}
	providerID, err := uuid.Parse(req.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("invalid provider id: %w", err)
	}

	if !req.EndsAt.After(req.StartsAt) {
		return nil, apperrors.Validation("appointment must end after it starts", nil)
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.ClinicID != clinicID {
		return nil, apperrors.Validation("patient belongs to a different clinic", nil)
	}
	if patient.OwnerID != ownerID {
		return nil, apperrors.Validation("owner does not match the patient's owner", nil)
	}

	overlap, err := s.repo.HasOverlap(ctx, providerID, req.StartsAt, req.EndsAt, nil)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, apperrors.Conflict("provider already has an appointment in this window")
	}

	source := model.AppointmentSourceManual
	if req.Source != nil {
		source = *req.Source
	}

	now := time.Now().UTC()
	appointment := &model.Appointment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClinicID:    clinicID,
		PatientID:   patientID,
		OwnerID:     ownerID,
		ProviderID:  providerID,
		CreatedByID: &createdBy,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Status:      model.AppointmentStatusPending,
		Source:      source,
		Notes:       req.Notes,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.emit(ctx, model.EventAppointmentCreated, appointment)
	return appointment, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) RescheduleAppointment(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status.IsTerminal() {
		return nil, apperrors.Conflict("appointment is already closed")
	}

	if req.ProviderID != nil {
		providerID, err := uuid.Parse(*req.ProviderID)
		if err != nil {
			return nil, fmt.Errorf("invalid provider id: %w", err)
		}
		appointment.ProviderID = providerID
	}
	if req.StartsAt != nil {
		appointment.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		appointment.EndsAt = *req.EndsAt
	}
	if req.Notes != nil {
		appointment.Notes = req.Notes
	}

	if !appointment.EndsAt.After(appointment.StartsAt) {
		return nil, apperrors.Validation("appointment must end after it starts", nil)
	}

	overlap, err := s.repo.HasOverlap(ctx, appointment.ProviderID, appointment.StartsAt, appointment.EndsAt, &appointment.ID)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, apperrors.Conflict("provider already has an appointment in this window")
	}

	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

// TransitionAppointment moves the appointment along its lifecycle. The
// status change is conditional on the row still holding the status the
// caller saw, so concurrent transitions lose cleanly.
func (s *Service) TransitionAppointment(ctx context.Context, id uuid.UUID, to model.AppointmentStatus) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !appointment.Status.CanTransitionTo(to) {
		return nil, apperrors.Conflict(
			fmt.Sprintf("cannot move appointment from %s to %s", appointment.Status, to),
		)
	}

	ok, err := s.repo.UpdateStatus(ctx, id, appointment.Status, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Conflict("appointment was modified concurrently")
	}

	appointment.Status = to
	s.emit(ctx, model.EventAppointmentStatus, appointment)
	return appointment, nil
}

// DeleteAppointment physically removes an appointment. Only cancelled
// appointments with no clinical record attached qualify; everything
// else stays for the audit trail.
func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if appointment.Status != model.AppointmentStatusCancelled {
		return apperrors.Conflict("only cancelled appointments can be deleted")
	}

	hasEncounter, err := s.encounters.ExistsForAppointment(ctx, id)
	if err != nil {
		return err
	}
	if hasEncounter {
		return apperrors.Conflict("appointment has a clinical record")
	}

	return s.repo.Delete(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, clinicID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.repo.List(ctx, clinicID, filters)
}

func (s *Service) emit(ctx context.Context, eventType string, appointment *model.Appointment) {
	payload, err := json.Marshal(appointment)
	if err != nil {
		s.logger.Error(err, "failed to marshal appointment event")
		return
	}
	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payload,
		Status:    model.OutboxStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to record appointment event")
	}
}
