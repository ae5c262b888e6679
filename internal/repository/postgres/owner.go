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

func (r *ownerRepository) Create(ctx context.Context, owner *model.Owner) error {
	query := `
		INSERT INTO owners (
			id, clinic_id, name, phone, email, notes, whatsapp_opt_in,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		owner.ID,
		owner.ClinicID,
		owner.Name,
		owner.Phone,
		owner.Email,
		owner.Notes,
		owner.WhatsappOptIn,
		owner.CreatedAt,
		owner.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create owner: %w", err)
	}
	return nil
}

func (r *ownerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Owner, error) {
	query := `
		SELECT id, clinic_id, name, phone, email, notes, whatsapp_opt_in,
			created_at, updated_at
		FROM owners
		WHERE id = $1
	`
	var owner model.Owner
	err := r.db.GetContext(ctx, &owner, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("owner", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	return &owner, nil
}

func (r *ownerRepository) Update(ctx context.Context, owner *model.Owner) error {
	query := `
		UPDATE owners
		SET name = $1, phone = $2, email = $3, notes = $4,
			whatsapp_opt_in = $5, updated_at = $6
		WHERE id = $7
	`
	owner.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		owner.Name,
		owner.Phone,
		owner.Email,
		owner.Notes,
		owner.WhatsappOptIn,
		owner.UpdatedAt,
		owner.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update owner: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("owner", nil)
	}

	return nil
}

func (r *ownerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM owners WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete owner: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("owner", nil)
	}

	return nil
}

func (r *ownerRepository) List(ctx context.Context, clinicID uuid.UUID) ([]*model.Owner, error) {
	query := `
		SELECT id, clinic_id, name, phone, email, notes, whatsapp_opt_in,
			created_at, updated_at
		FROM owners
		WHERE clinic_id = $1
		ORDER BY name ASC
	`
	var owners []*model.Owner
	if err := r.db.SelectContext(ctx, &owners, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	return owners, nil
}

func (r *ownerRepository) Search(ctx context.Context, clinicID uuid.UUID, search string) ([]*model.Owner, error) {
	query := `
		SELECT id, clinic_id, name, phone, email, notes, whatsapp_opt_in,
			created_at, updated_at
		FROM owners
		WHERE clinic_id = $1
			AND (name ILIKE '%' || $2 || '%'
				OR phone ILIKE '%' || $2 || '%'
				OR email ILIKE '%' || $2 || '%')
		ORDER BY name ASC
	`
	var owners []*model.Owner
	if err := r.db.SelectContext(ctx, &owners, query, clinicID, search); err != nil {
		return nil, fmt.Errorf("failed to search owners: %w", err)
	}
	return owners, nil
}
