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

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, clinic_id, owner_id, name, species, sex, breed, color,
			birth_date, microchip, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.ClinicID,
		patient.OwnerID,
		patient.Name,
		patient.Species,
		patient.Sex,
		patient.Breed,
		patient.Color,
		patient.BirthDate,
		patient.Microchip,
		patient.Notes,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT id, clinic_id, owner_id, name, species, sex, breed, color,
			birth_date, microchip, notes, created_at, updated_at
		FROM patients
		WHERE id = $1
	`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET owner_id = $1, name = $2, species = $3, sex = $4, breed = $5,
			color = $6, birth_date = $7, microchip = $8, notes = $9,
			updated_at = $10
		WHERE id = $11
	`
	patient.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		patient.OwnerID,
		patient.Name,
		patient.Species,
		patient.Sex,
		patient.Breed,
		patient.Color,
		patient.BirthDate,
		patient.Microchip,
		patient.Notes,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient", nil)
	}

	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM patients WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient", nil)
	}

	return nil
}

func (r *patientRepository) List(ctx context.Context, clinicID uuid.UUID) ([]*model.Patient, error) {
	query := `
		SELECT id, clinic_id, owner_id, name, species, sex, breed, color,
			birth_date, microchip, notes, created_at, updated_at
		FROM patients
		WHERE clinic_id = $1
		ORDER BY name ASC
	`
	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Patient, error) {
	query := `
		SELECT id, clinic_id, owner_id, name, species, sex, breed, color,
			birth_date, microchip, notes, created_at, updated_at
		FROM patients
		WHERE owner_id = $1
		ORDER BY name ASC
	`
	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list patients by owner: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) Search(ctx context.Context, clinicID uuid.UUID, search string) ([]*model.Patient, error) {
	query := `
		SELECT id, clinic_id, owner_id, name, species, sex, breed, color,
			birth_date, microchip, notes, created_at, updated_at
		FROM patients
		WHERE clinic_id = $1
			AND (name ILIKE '%' || $2 || '%'
				OR breed ILIKE '%' || $2 || '%'
				OR microchip ILIKE '%' || $2 || '%')
		ORDER BY name ASC
	`
	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, clinicID, search); err != nil {
		return nil, fmt.Errorf("failed to search patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM patients WHERE owner_id = $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, ownerID); err != nil {
		return 0, fmt.Errorf("failed to count patients by owner: %w", err)
	}
	return count, nil
}
