package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusNoShow    AppointmentStatus = "NO_SHOW"
)

// IsTerminal reports whether no further transition is allowed.
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case AppointmentStatusCancelled, AppointmentStatusCompleted, AppointmentStatusNoShow:
		return true
	}
	return false
}

// CanTransitionTo encodes the appointment lifecycle:
// PENDING -> CONFIRMED | CANCELLED, CONFIRMED -> COMPLETED | CANCELLED | NO_SHOW.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	switch s {
	case AppointmentStatusPending:
		return next == AppointmentStatusConfirmed || next == AppointmentStatusCancelled
	case AppointmentStatusConfirmed:
		return next == AppointmentStatusCompleted ||
			next == AppointmentStatusCancelled ||
			next == AppointmentStatusNoShow
	}
	return false
}

type AppointmentSource string

const (
	AppointmentSourceManual   AppointmentSource = "MANUAL"
	AppointmentSourceWhatsapp AppointmentSource = "WHATSAPP"
)

type Appointment struct {
	Base
	ClinicID    uuid.UUID         `db:"clinic_id" json:"clinic_id"`
	PatientID   uuid.UUID         `db:"patient_id" json:"patient_id"`
	OwnerID     uuid.UUID         `db:"owner_id" json:"owner_id"`
	ProviderID  uuid.UUID         `db:"provider_id" json:"provider_id"`
	CreatedByID *uuid.UUID        `db:"created_by_id" json:"created_by_id"`
	StartsAt    time.Time         `db:"starts_at" json:"starts_at"`
	EndsAt      time.Time         `db:"ends_at" json:"ends_at"`
	Status      AppointmentStatus `db:"status" json:"status"`
	Source      AppointmentSource `db:"source" json:"source"`
	Notes       *string           `db:"notes" json:"notes"`
}

type CreateAppointmentRequest struct {
	ClinicID   string             `json:"clinic_id" binding:"required,uuid"`
	PatientID  string             `json:"patient_id" binding:"required,uuid"`
	OwnerID    string             `json:"owner_id" binding:"required,uuid"`
	ProviderID string             `json:"provider_id" binding:"required,uuid"`
	StartsAt   time.Time          `json:"starts_at" binding:"required"`
	EndsAt     time.Time          `json:"ends_at" binding:"required,gtfield=StartsAt"`
	Source     *AppointmentSource `json:"source" binding:"omitempty,oneof=MANUAL WHATSAPP"`
	Notes      *string            `json:"notes"`
}

type UpdateAppointmentRequest struct {
	ProviderID *string    `json:"provider_id" binding:"omitempty,uuid"`
	StartsAt   *time.Time `json:"starts_at"`
	EndsAt     *time.Time `json:"ends_at"`
	Notes      *string    `json:"notes"`
}

type AppointmentFilters struct {
	ProviderID uuid.UUID
	PatientID  uuid.UUID
	Status     AppointmentStatus
	From       time.Time
	To         time.Time
}
