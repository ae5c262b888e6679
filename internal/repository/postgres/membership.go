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

func (r *membershipRepository) Create(ctx context.Context, membership *model.ClinicMembership) error {
	query := `
		INSERT INTO clinic_memberships (
			id, clinic_id, user_id, role, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		membership.ID,
		membership.ClinicID,
		membership.UserID,
		membership.Role,
		membership.Active,
		membership.CreatedAt,
		membership.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

func (r *membershipRepository) Get(ctx context.Context, id uuid.UUID) (*model.ClinicMembership, error) {
	query := `
		SELECT id, clinic_id, user_id, role, active, created_at, updated_at
		FROM clinic_memberships
		WHERE id = $1
	`
	var membership model.ClinicMembership
	err := r.db.GetContext(ctx, &membership, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("membership", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return &membership, nil
}

func (r *membershipRepository) Find(ctx context.Context, clinicID, userID uuid.UUID) (*model.ClinicMembership, error) {
	query := `
		SELECT id, clinic_id, user_id, role, active, created_at, updated_at
		FROM clinic_memberships
		WHERE clinic_id = $1 AND user_id = $2
	`
	var membership model.ClinicMembership
	err := r.db.GetContext(ctx, &membership, query, clinicID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("membership", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}
	return &membership, nil
}

func (r *membershipRepository) Update(ctx context.Context, membership *model.ClinicMembership) error {
	query := `
		UPDATE clinic_memberships
		SET role = $1, active = $2, updated_at = $3
		WHERE id = $4
	`
	membership.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		membership.Role,
		membership.Active,
		membership.UpdatedAt,
		membership.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("membership", nil)
	}

	return nil
}

func (r *membershipRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE clinic_memberships SET active = false, updated_at = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate membership: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("membership", nil)
	}

	return nil
}

func (r *membershipRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.ClinicMembership, error) {
	query := `
		SELECT id, clinic_id, user_id, role, active, created_at, updated_at
		FROM clinic_memberships
		WHERE clinic_id = $1
		ORDER BY created_at ASC
	`
	var memberships []*model.ClinicMembership
	if err := r.db.SelectContext(ctx, &memberships, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return memberships, nil
}

func (r *membershipRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*model.ClinicMembership, error) {
	query := `
		SELECT id, clinic_id, user_id, role, active, created_at, updated_at
		FROM clinic_memberships
		WHERE user_id = $1 AND active = true
		ORDER BY created_at ASC
	`
	var memberships []*model.ClinicMembership
	if err := r.db.SelectContext(ctx, &memberships, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list memberships by user: %w", err)
	}
	return memberships, nil
}
