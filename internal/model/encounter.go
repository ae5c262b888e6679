package model

import (
	"time"

	"github.com/google/uuid"
)

type EncounterStatus string

const (
	EncounterStatusDraft     EncounterStatus = "DRAFT"
	EncounterStatusConfirmed EncounterStatus = "CONFIRMED"
)

// Encounter is a clinical visit record. While DRAFT it is freely
// editable; confirming signs it, after which the clinical fields are
// immutable and changes go through addenda.
type Encounter struct {
	Base
	ClinicID       uuid.UUID       `db:"clinic_id" json:"clinic_id"`
	AppointmentID  *uuid.UUID      `db:"appointment_id" json:"appointment_id"`
	PatientID      uuid.UUID       `db:"patient_id" json:"patient_id"`
	ProviderID     uuid.UUID       `db:"provider_id" json:"provider_id"`
	Status         EncounterStatus `db:"status" json:"status"`
	SignedAt       *time.Time      `db:"signed_at" json:"signed_at"`
	Version        int             `db:"version" json:"version"`
	ChiefComplaint JSONMap         `db:"chief_complaint" json:"chief_complaint"`
	HistoryPresent JSONMap         `db:"history_present" json:"history_present"`
	PhysicalExam   JSONMap         `db:"physical_exam" json:"physical_exam"`
	Diagnosis      JSONMap         `db:"diagnosis" json:"diagnosis"`
	Plan           JSONMap         `db:"plan" json:"plan"`
	Vitals         JSONMap         `db:"vitals" json:"vitals"`
	RawText        *string         `db:"raw_text" json:"raw_text"`
	Addenda        JSONList        `db:"addenda" json:"addenda"`
}

// Addendum is an append-only note attached to a signed encounter.
type Addendum struct {
	Text      string    `json:"text"`
	AuthorID  uuid.UUID `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateEncounterRequest struct {
	ClinicID       string  `json:"clinic_id" binding:"required,uuid"`
	AppointmentID  *string `json:"appointment_id" binding:"omitempty,uuid"`
	PatientID      string  `json:"patient_id" binding:"required,uuid"`
	ProviderID     string  `json:"provider_id" binding:"required,uuid"`
	ChiefComplaint JSONMap `json:"chief_complaint"`
	HistoryPresent JSONMap `json:"history_present"`
	PhysicalExam   JSONMap `json:"physical_exam"`
	Diagnosis      JSONMap `json:"diagnosis"`
	Plan           JSONMap `json:"plan"`
	Vitals         JSONMap `json:"vitals"`
	RawText        *string `json:"raw_text"`
}

type UpdateEncounterRequest struct {
	ChiefComplaint JSONMap `json:"chief_complaint"`
	HistoryPresent JSONMap `json:"history_present"`
	PhysicalExam   JSONMap `json:"physical_exam"`
	Diagnosis      JSONMap `json:"diagnosis"`
	Plan           JSONMap `json:"plan"`
	Vitals         JSONMap `json:"vitals"`
	RawText        *string `json:"raw_text"`
	Version        int     `json:"version" binding:"required,min=1"`
}

type AddAddendumRequest struct {
	Text string `json:"text" binding:"required"`
}
