package owner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/vetdesk-api/internal/model"
	"github.com/vetdesk/vetdesk-api/internal/repository"
	apperrors "github.com/vetdesk/vetdesk-api/pkg/errors"
)

type OwnerServicer interface {
	CreateOwner(ctx context.Context, req *model.CreateOwnerRequest) (*model.Owner, error)
	GetOwner(ctx context.Context, id uuid.UUID) (*model.Owner, error)
	UpdateOwner(ctx context.Context, id uuid.UUID, req *model.UpdateOwnerRequest) (*model.Owner, error)
	DeleteOwner(ctx context.Context, id uuid.UUID) error
	ListOwners(ctx context.Context, clinicID uuid.UUID, search string) ([]*model.Owner, error)
	ListPatients(ctx context.Context, ownerID uuid.UUID) ([]*model.Patient, error)
}

type Service struct {
	repo     repository.OwnerRepository
	patients repository.PatientRepository
}

func NewService(repo repository.OwnerRepository, patients repository.PatientRepository) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
	}
}

func (s *Service) CreateOwner(ctx context.Context, req *model.CreateOwnerRequest) (*model.Owner, error) {
	clinicID, err := uuid.Parse(req.ClinicID)
	if err != nil {
		return nil, fmt.Errorf("invalid clinic id: %w", err)
	}

	now := time.Now().UTC()
	owner := &model.Owner{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClinicID:      clinicID,
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		Notes:         req.Notes,
		WhatsappOptIn: true,
	}
	if req.WhatsappOptIn != nil {
		owner.WhatsappOptIn = *req.WhatsappOptIn
	}

	if err := s.repo.Create(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to create owner: %w", err)
	}
	return owner, nil
}

func (s *Service) GetOwner(ctx context.Context, id uuid.UUID) (*model.Owner, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateOwner(ctx context.Context, id uuid.UUID, req *model.UpdateOwnerRequest) (*model.Owner, error) {
	owner, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		owner.Name = *req.Name
	}
	if req.Phone != nil {
		owner.Phone = req.Phone
	}
	if req.Email != nil {
		owner.Email = req.Email
	}
	if req.Notes != nil {
		owner.Notes = req.Notes
	}
	if req.WhatsappOptIn != nil {
		owner.WhatsappOptIn = *req.WhatsappOptIn
	}

	if err := s.repo.Update(ctx, owner); err != nil {
		return nil, err
	}
	return owner, nil
}

// DeleteOwner removes an owner only while no patients reference it.
func (s *Service) DeleteOwner(ctx context.Context, id uuid.UUID) error {
	count, err := s.patients.CountByOwner(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Conflict("owner still has registered patients")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListOwners(ctx context.Context, clinicID uuid.UUID, search string) ([]*model.Owner, error) {
	if search != "" {
		return s.repo.Search(ctx, clinicID, search)
	}
	return s.repo.List(ctx, clinicID)
}

func (s *Service) ListPatients(ctx context.Context, ownerID uuid.UUID) ([]*model.Patient, error) {
	if _, err := s.repo.Get(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.patients.ListByOwner(ctx, ownerID)
}
