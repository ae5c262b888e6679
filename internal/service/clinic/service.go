package clinic

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/vetdesk-api/internal/model"
	"github.com/vetdesk/vetdesk-api/internal/repository"
	"github.com/vetdesk/vetdesk-api/pkg/security"
)

type ClinicServicer interface {
	CreateClinic(ctx context.Context, req *model.CreateClinicRequest) (*model.Clinic, error)
	GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
	UpdateClinic(ctx context.Context, id uuid.UUID, req *model.UpdateClinicRequest) (*model.Clinic, error)
	DeactivateClinic(ctx context.Context, id uuid.UUID) error
	ListClinics(ctx context.Context) ([]*model.Clinic, error)
	// RotateWebhookSecret mints a fresh webhook secret for the document
	// generator and stores only its hash. The plaintext is returned once.
	RotateWebhookSecret(ctx context.Context, id uuid.UUID) (string, error)
}

type Service struct {
	repo   repository.ClinicRepository
	hasher security.SecretHasher
}

func NewService(repo repository.ClinicRepository, hasher security.SecretHasher) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
	}
}

func (s *Service) CreateClinic(ctx context.Context, req *model.CreateClinicRequest) (*model.Clinic, error) {
	now := time.Now().UTC()
	clinic := &model.Clinic{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:            req.Name,
		LegalName:       req.LegalName,
		WhatsappNumber:  req.WhatsappNumber,
		FeedbackFormURL: req.FeedbackFormURL,
		Country:         req.Country,
		State:           req.State,
		City:            req.City,
		AddressLine:     req.AddressLine,
		Zip:             req.Zip,
		Active:          true,
	}
	if req.OwnerID != nil {
		ownerID, err := uuid.Parse(*req.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("invalid owner id: %w", err)
		}
		clinic.OwnerID = &ownerID
	}

	if err := s.repo.Create(ctx, clinic); err != nil {
		return nil, fmt.Errorf("failed to create clinic: %w", err)
	}
	return clinic, nil
}

func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateClinic(ctx context.Context, id uuid.UUID, req *model.UpdateClinicRequest) (*model.Clinic, error) {
	clinic, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		clinic.Name = *req.Name
	}
	if req.LegalName != nil {
		clinic.LegalName = req.LegalName
	}
	if req.WhatsappNumber != nil {
		clinic.WhatsappNumber = req.WhatsappNumber
	}
	if req.FeedbackFormURL != nil {
		clinic.FeedbackFormURL = req.FeedbackFormURL
	}
	if req.Country != nil {
		clinic.Country = req.Country
	}
	if req.State != nil {
		clinic.State = req.State
	}
	if req.City != nil {
		clinic.City = req.City
	}
	if req.AddressLine != nil {
		clinic.AddressLine = req.AddressLine
	}
	if req.Zip != nil {
		clinic.Zip = req.Zip
	}

	if err := s.repo.Update(ctx, clinic); err != nil {
		return nil, err
	}
	return clinic, nil
}

// DeactivateClinic hides the clinic without removing rows; historical
// records keep a valid clinic reference.
func (s *Service) DeactivateClinic(ctx context.Context, id uuid.UUID) error {
	return s.repo.Deactivate(ctx, id)
}

func (s *Service) ListClinics(ctx context.Context) ([]*model.Clinic, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) RotateWebhookSecret(ctx context.Context, id uuid.UUID) (string, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return "", err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	secret := hex.EncodeToString(buf)

	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}

	if err := s.repo.SetWebhookSecretHash(ctx, id, hash); err != nil {
		return "", err
	}
	return secret, nil
}
