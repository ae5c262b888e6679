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

func (r *prescriptionRepository) Create(ctx context.Context, prescription *model.Prescription) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO prescriptions (
			id, clinic_id, encounter_id, patient_id, provider_id,
			notes, pdf_url, send_to_whatsapp, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.ExecContext(ctx, query,
		prescription.ID,
		prescription.ClinicID,
		prescription.EncounterID,
		prescription.PatientID,
		prescription.ProviderID,
		prescription.Notes,
		prescription.PDFURL,
		prescription.SendToWhatsapp,
		prescription.CreatedAt,
		prescription.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create prescription: %w", err)
	}

	itemQuery := `
		INSERT INTO prescription_items (
			id, prescription_id, drug_name, dosage, frequency, duration,
			route, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, item := range prescription.Items {
		_, err = tx.ExecContext(ctx, itemQuery,
			item.ID,
			prescription.ID,
			item.DrugName,
			item.Dosage,
			item.Frequency,
			item.Duration,
			item.Route,
			item.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to create prescription item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	query := `
		SELECT id, clinic_id, encounter_id, patient_id, provider_id,
			notes, pdf_url, send_to_whatsapp, created_at, updated_at
		FROM prescriptions
		WHERE id = $1
	`
	var prescription model.Prescription
	err := r.db.GetContext(ctx, &prescription, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("prescription", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}

	items, err := r.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	prescription.Items = items

	return &prescription, nil
}

func (r *prescriptionRepository) List(ctx context.Context, clinicID uuid.UUID) ([]*model.Prescription, error) {
	query := `
		SELECT id, clinic_id, encounter_id, patient_id, provider_id,
			notes, pdf_url, send_to_whatsapp, created_at, updated_at
		FROM prescriptions
		WHERE clinic_id = $1
		ORDER BY created_at DESC
	`
	var prescriptions []*model.Prescription
	if err := r.db.SelectContext(ctx, &prescriptions, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}

func (r *prescriptionRepository) AddItem(ctx context.Context, item *model.PrescriptionItem) error {
	query := `
		INSERT INTO prescription_items (
			id, prescription_id, drug_name, dosage, frequency, duration,
			route, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.PrescriptionID,
		item.DrugName,
		item.Dosage,
		item.Frequency,
		item.Duration,
		item.Route,
		item.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to add prescription item: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) ListItems(ctx context.Context, prescriptionID uuid.UUID) ([]*model.PrescriptionItem, error) {
	query := `
		SELECT id, prescription_id, drug_name, dosage, frequency, duration,
			route, notes
		FROM prescription_items
		WHERE prescription_id = $1
		ORDER BY drug_name ASC
	`
	var items []*model.PrescriptionItem
	if err := r.db.SelectContext(ctx, &items, query, prescriptionID); err != nil {
		return nil, fmt.Errorf("failed to list prescription items: %w", err)
	}
	return items, nil
}

func (r *prescriptionRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM prescription_items WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete prescription item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("prescription item", nil)
	}

	return nil
}

func (r *prescriptionRepository) SetDocumentURL(ctx context.Context, id uuid.UUID, pdfURL string) error {
	query := `UPDATE prescriptions SET pdf_url = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, pdfURL, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set document url: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("prescription", nil)
	}

	return nil
}
