package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/vetdesk-api/internal/model"
	apperrors "github.com/vetdesk/vetdesk-api/pkg/errors"
)

const encounterColumns = `id, clinic_id, appointment_id, patient_id, provider_id,
	status, signed_at, version, chief_complaint, history_present,
	physical_exam, diagnosis, plan, vitals, raw_text, addenda,
	created_at, updated_at`

func (r *encounterRepository) Create(ctx context.Context, encounter *model.Encounter) error {
	query := `
		INSERT INTO encounters (
			id, clinic_id, appointment_id, patient_id, provider_id,
			status, version, chief_complaint, history_present, physical_exam,
			diagnosis, plan, vitals, raw_text, addenda, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.db.ExecContext(ctx, query,
		encounter.ID,
		encounter.ClinicID,
		encounter.AppointmentID,
		encounter.PatientID,
		encounter.ProviderID,
		encounter.Status,
		encounter.Version,
		encounter.ChiefComplaint,
		encounter.HistoryPresent,
		encounter.PhysicalExam,
		encounter.Diagnosis,
		encounter.Plan,
		encounter.Vitals,
		encounter.RawText,
		encounter.Addenda,
		encounter.CreatedAt,
		encounter.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create encounter: %w", err)
	}
	return nil
}

func (r *encounterRepository) Get(ctx context.Context, id uuid.UUID) (*model.Encounter, error) {
	query := `SELECT ` + encounterColumns + ` FROM encounters WHERE id = $1`

	var encounter model.Encounter
	err := r.db.GetContext(ctx, &encounter, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("encounter", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get encounter: %w", err)
	}
	return &encounter, nil
}

func (r *encounterRepository) UpdateDraft(ctx context.Context, encounter *model.Encounter) (bool, error) {
	query := `
		UPDATE encounters
		SET chief_complaint = $1, history_present = $2, physical_exam = $3,
			diagnosis = $4, plan = $5, vitals = $6, raw_text = $7,
			version = version + 1, updated_at = $8
		WHERE id = $9 AND status = 'DRAFT' AND version = $10
	`
	encounter.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		encounter.ChiefComplaint,
		encounter.HistoryPresent,
		encounter.PhysicalExam,
		encounter.Diagnosis,
		encounter.Plan,
		encounter.Vitals,
		encounter.RawText,
		encounter.UpdatedAt,
		encounter.ID,
		encounter.Version,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update encounter: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *encounterRepository) Confirm(ctx context.Context, id uuid.UUID, version int, signedAt time.Time) (bool, error) {
	query := `
		UPDATE encounters
		SET status = 'CONFIRMED', signed_at = $1, version = version + 1,
			updated_at = $2
		WHERE id = $3 AND status = 'DRAFT' AND version = $4
	`
	result, err := r.db.ExecContext(ctx, query, signedAt, time.Now().UTC(), id, version)
	if err != nil {
		return false, fmt.Errorf("failed to confirm encounter: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *encounterRepository) AppendAddendum(ctx context.Context, id uuid.UUID, addendum *model.Addendum) error {
	raw, err := json.Marshal(addendum)
	if err != nil {
		return fmt.Errorf("failed to marshal addendum: %w", err)
	}

	query := `
		UPDATE encounters
		SET addenda = COALESCE(addenda, '[]'::jsonb) || $1::jsonb,
			updated_at = $2
		WHERE id = $3 AND status = 'CONFIRMED'
	`
	result, err := r.db.ExecContext(ctx, query, raw, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to append addendum: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("encounter", nil)
	}

	return nil
}

func (r *encounterRepository) List(ctx context.Context, clinicID uuid.UUID) ([]*model.Encounter, error) {
	query := `SELECT ` + encounterColumns + ` FROM encounters WHERE clinic_id = $1 ORDER BY created_at DESC`

	var encounters []*model.Encounter
	if err := r.db.SelectContext(ctx, &encounters, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list encounters: %w", err)
	}
	return encounters, nil
}

func (r *encounterRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Encounter, error) {
	query := `SELECT ` + encounterColumns + ` FROM encounters WHERE patient_id = $1 ORDER BY created_at DESC`

	var encounters []*model.Encounter
	if err := r.db.SelectContext(ctx, &encounters, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list encounters by patient: %w", err)
	}
	return encounters, nil
}

func (r *encounterRepository) ExistsForAppointment(ctx context.Context, appointmentID uuid.UUID) (bool, error) {
	query := `SELECT COUNT(*) FROM encounters WHERE appointment_id = $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, appointmentID); err != nil {
		return false, fmt.Errorf("failed to check encounter for appointment: %w", err)
	}
	return count > 0, nil
}

func (r *encounterRepository) CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM encounters WHERE patient_id = $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, patientID); err != nil {
		return 0, fmt.Errorf("failed to count encounters by patient: %w", err)
	}
	return count, nil
}
