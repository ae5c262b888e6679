package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/vetdesk-api/internal/model"
	"github.com/vetdesk/vetdesk-api/internal/repository"
	apperrors "github.com/vetdesk/vetdesk-api/pkg/errors"
)

type PatientServicer interface {
	CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error)
	DeletePatient(ctx context.Context, id uuid.UUID) error
	ListPatients(ctx context.Context, clinicID uuid.UUID, search string) ([]*model.Patient, error)
}

type Service struct {
	repo         repository.PatientRepository
	owners       repository.OwnerRepository
	appointments repository.AppointmentRepository
	encounters   repository.EncounterRepository
}

func NewService(
	repo repository.PatientRepository,
	owners repository.OwnerRepository,
	appointments repository.AppointmentRepository,
	encounters repository.EncounterRepository,
) *Service {
	return &Service{
		repo:         repo,
		owners:       owners,
		appointments: appointments,
		encounters:   encounters,
	}
}

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	clinicID, err := uuid.Parse(req.ClinicID)
	if err != nil {
		return nil, fmt.Errorf("invalid clinic id: %w", err)
	}
	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id: %w", err)
	}

	owner, err := s.owners.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner.ClinicID != clinicID {
		return nil, apperrors.Validation("owner belongs to a different clinic", nil)
	}

	now := time.Now().UTC()
	patient := &model.Patient{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClinicID:  clinicID,
		OwnerID:   ownerID,
		Name:      req.Name,
		Species:   req.Species,
		Sex:       model.SexUnknown,
		Breed:     req.Breed,
		Color:     req.Color,
		BirthDate: req.BirthDate,
		Microchip: req.Microchip,
		Notes:     req.Notes,
	}
	if req.Sex != nil {
		patient.Sex = *req.Sex
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.OwnerID != nil {
		ownerID, err := uuid.Parse(*req.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("invalid owner id: %w", err)
		}
		owner, err := s.owners.Get(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if owner.ClinicID != patient.ClinicID {
			return nil, apperrors.Validation("owner belongs to a different clinic", nil)
		}
		patient.OwnerID = ownerID
	}
	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Species != nil {
		patient.Species = *req.Species
	}
	if req.Sex != nil {
		patient.Sex = *req.Sex
	}
	if req.Breed != nil {
		patient.Breed = req.Breed
	}
	if req.Color != nil {
		patient.Color = req.Color
	}
	if req.BirthDate != nil {
		patient.BirthDate = req.BirthDate
	}
	if req.Microchip != nil {
		patient.Microchip = req.Microchip
	}
	if req.Notes != nil {
		patient.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// DeletePatient removes a patient only while no clinical history
// references it.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	appointments, err := s.appointments.CountByPatient(ctx, id)
	if err != nil {
		return err
	}
	if appointments > 0 {
		return apperrors.Conflict("patient has appointment history")
	}

	encounters, err := s.encounters.CountByPatient(ctx, id)
	if err != nil {
		return err
	}
	if encounters > 0 {
		return apperrors.Conflict("patient has clinical records")
	}

	return s.repo.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, clinicID uuid.UUID, search string) ([]*model.Patient, error) {
	if search != "" {
		return s.repo.Search(ctx, clinicID, search)
	}
	return s.repo.List(ctx, clinicID)
}
