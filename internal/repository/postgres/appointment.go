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

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, clinic_id, patient_id, owner_id, provider_id, created_by_id,
			starts_at, ends_at, status, source, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.ClinicID,
		appointment.PatientID,
		appointment.OwnerID,
		appointment.ProviderID,
		appointment.CreatedByID,
		appointment.StartsAt,
		appointment.EndsAt,
		appointment.Status,
		appointment.Source,
		appointment.Notes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, clinic_id, patient_id, owner_id, provider_id, created_by_id,
			starts_at, ends_at, status, source, notes, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET provider_id = $1, starts_at = $2, ends_at = $3, notes = $4,
			updated_at = $5
		WHERE id = $6
	`
	appointment.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		appointment.ProviderID,
		appointment.StartsAt,
		appointment.EndsAt,
		appointment.Notes,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}

	return nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus) (bool, error) {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update appointment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM appointments WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}

	return nil
}

func (r *appointmentRepository) List(ctx context.Context, clinicID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, clinic_id, patient_id, owner_id, provider_id, created_by_id,
			starts_at, ends_at, status, source, notes, created_at, updated_at
		FROM appointments
		WHERE clinic_id = $1
	`
	args := []interface{}{clinicID}
	argCount := 1

	if filters != nil {
		if filters.ProviderID != uuid.Nil {
			argCount++
			query += fmt.Sprintf(" AND provider_id = $%d", argCount)
			args = append(args, filters.ProviderID)
		}
		if filters.PatientID != uuid.Nil {
			argCount++
			query += fmt.Sprintf(" AND patient_id = $%d", argCount)
			args = append(args, filters.PatientID)
		}
		if filters.Status != "" {
			argCount++
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
		}
		if !filters.From.IsZero() {
			argCount++
			query += fmt.Sprintf(" AND starts_at >= $%d", argCount)
			args = append(args, filters.From)
		}
		if !filters.To.IsZero() {
			argCount++
			query += fmt.Sprintf(" AND starts_at < $%d", argCount)
			args = append(args, filters.To)
		}
	}

	query += " ORDER BY starts_at ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT id, clinic_id, patient_id, owner_id, provider_id, created_by_id,
			starts_at, ends_at, status, source, notes, created_at, updated_at
		FROM appointments
		WHERE provider_id = $1
		ORDER BY starts_at ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, providerID); err != nil {
		return nil, fmt.Errorf("failed to list appointments by provider: %w", err)
	}
	return appointments, nil
}

// HasOverlap checks the provider's calendar for a live appointment that
// intersects the [startsAt, endsAt) window. Cancelled and finished
// appointments do not block the slot.
func (r *appointmentRepository) HasOverlap(ctx context.Context, providerID uuid.UUID, startsAt, endsAt time.Time, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM appointments
		WHERE provider_id = $1
			AND status NOT IN ('CANCELLED', 'COMPLETED', 'NO_SHOW')
			AND starts_at < $3
			AND ends_at > $2
	`
	args := []interface{}{providerID, startsAt, endsAt}
	if excludeID != nil {
		query += " AND id != $4"
		args = append(args, *excludeID)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("failed to check appointment overlap: %w", err)
	}
	return count > 0, nil
}

func (r *appointmentRepository) CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM appointments WHERE patient_id = $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, patientID); err != nil {
		return 0, fmt.Errorf("failed to count appointments by patient: %w", err)
	}
	return count, nil
}
