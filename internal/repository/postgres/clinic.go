package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/vetdesk-api/internal/model"
	apperrors "github.com/vetdesk/vetdesk-api/pkg/errors"
)

func (r *clinicRepository) Create(ctx context.Context, clinic *model.Clinic) error {
	query := `
		INSERT INTO clinics (
			id, name, legal_name, whatsapp_number, feedback_form_url,
			country, state, city, address_line, zip, active, owner_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.ExecContext(ctx, query,
		clinic.ID,
		clinic.Name,
		clinic.LegalName,
		clinic.WhatsappNumber,
		clinic.FeedbackFormURL,
		clinic.Country,
		clinic.State,
		clinic.City,
		clinic.AddressLine,
		clinic.Zip,
		clinic.Active,
		clinic.OwnerID,
		clinic.CreatedAt,
		clinic.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create clinic: %w", err)
	}
	return nil
}

func (r *clinicRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	query := `
		SELECT id, name, legal_name, whatsapp_number, feedback_form_url,
			country, state, city, address_line, zip, active, owner_id,
			webhook_secret_hash, created_at, updated_at
		FROM clinics
		WHERE id = $1
	`
	var clinic model.Clinic
	err := r.db.GetContext(ctx, &clinic, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("clinic", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return &clinic, nil
}

func (r *clinicRepository) Update(ctx context.Context, clinic *model.Clinic) error {
	query := `
		UPDATE clinics
		SET name = $1, legal_name = $2, whatsapp_number = $3,
			feedback_form_url = $4, country = $5, state = $6, city = $7,
			address_line = $8, zip = $9, active = $10, updated_at = $11
		WHERE id = $12
	`
	clinic.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		clinic.Name,
		clinic.LegalName,
		clinic.WhatsappNumber,
		clinic.FeedbackFormURL,
		clinic.Country,
		clinic.State,
		clinic.City,
		clinic.AddressLine,
		clinic.Zip,
		clinic.Active,
		clinic.UpdatedAt,
		clinic.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update clinic: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("clinic", nil)
	}

	return nil
}

func (r *clinicRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE clinics SET active = false, updated_at = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate clinic: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("clinic", nil)
	}

	return nil
}

func (r *clinicRepository) ListActive(ctx context.Context) ([]*model.Clinic, error) {
	query := `
		SELECT id, name, legal_name, whatsapp_number, feedback_form_url,
			country, state, city, address_line, zip, active, owner_id,
			webhook_secret_hash, created_at, updated_at
		FROM clinics
		WHERE active = true
		ORDER BY name ASC
	`
	var clinics []*model.Clinic
	if err := r.db.SelectContext(ctx, &clinics, query); err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}

func (r *clinicRepository) SetWebhookSecretHash(ctx context.Context, id uuid.UUID, hash string) error {
	query := `UPDATE clinics SET webhook_secret_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, hash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set webhook secret: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("clinic", nil)
	}

	return nil
}
