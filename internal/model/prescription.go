package model

import (
	"strings"

	"github.com/google/uuid"
)

// Prescription is issued from a confirmed or draft encounter. A
// prescription without at least one item carrying a drug name is not
// valid for dispatch; that rule is enforced at the boundary, not by the
// storage layer.
type Prescription struct {
	Base
	ClinicID       uuid.UUID           `db:"clinic_id" json:"clinic_id"`
	EncounterID    uuid.UUID           `db:"encounter_id" json:"encounter_id"`
	PatientID      uuid.UUID           `db:"patient_id" json:"patient_id"`
	ProviderID     uuid.UUID           `db:"provider_id" json:"provider_id"`
	Notes          *string             `db:"notes" json:"notes"`
	PDFURL         *string             `db:"pdf_url" json:"pdf_url"`
	SendToWhatsapp bool                `db:"send_to_whatsapp" json:"send_to_whatsapp"`
	Items          []*PrescriptionItem `db:"-" json:"items,omitempty"`
}

type PrescriptionItem struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PrescriptionID uuid.UUID `db:"prescription_id" json:"prescription_id"`
	DrugName       string    `db:"drug_name" json:"drug_name"`
	Dosage         *string   `db:"dosage" json:"dosage"`
	Frequency      *string   `db:"frequency" json:"frequency"`
	Duration       *string   `db:"duration" json:"duration"`
	Route          *string   `db:"route" json:"route"`
	Notes          *string   `db:"notes" json:"notes"`
}

type CreatePrescriptionRequest struct {
	ClinicID       string                          `json:"clinic_id" binding:"required,uuid"`
	EncounterID    string                          `json:"encounter_id" binding:"required,uuid"`
	PatientID      string                          `json:"patient_id" binding:"required,uuid"`
	ProviderID     string                          `json:"provider_id" binding:"required,uuid"`
	Notes          *string                         `json:"notes"`
	SendToWhatsapp *bool                           `json:"send_to_whatsapp"`
	Items          []CreatePrescriptionItemRequest `json:"items" binding:"required,min=1,dive"`
}

type CreatePrescriptionItemRequest struct {
	DrugName  string  `json:"drug_name" binding:"required"`
	Dosage    *string `json:"dosage"`
	Frequency *string `json:"frequency"`
	Duration  *string `json:"duration"`
	Route     *string `json:"route"`
	Notes     *string `json:"notes"`
}

// HasDispatchableItem reports whether at least one item carries a
// non-empty drug name.
func (p *Prescription) HasDispatchableItem() bool {
	for _, item := range p.Items {
		if strings.TrimSpace(item.DrugName) != "" {
			return true
		}
	}
	return false
}

type AttachDocumentRequest struct {
	PDFURL string `json:"pdf_url" binding:"required,url"`
	Secret string `json:"secret" binding:"required"`
}
