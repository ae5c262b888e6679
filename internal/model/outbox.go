package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusRetry     OutboxStatus = "retry"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// Event types published to the external collaborators. The dispatcher
// owns delivery; the core only records intent.
const (
	EventPrescriptionDispatch = "PRESCRIPTION_DISPATCH"
	EventAppointmentCreated   = "APPOINTMENT_CREATED"
	EventAppointmentStatus    = "APPOINTMENT_STATUS_CHANGED"
	EventEncounterSigned      = "ENCOUNTER_SIGNED"
	EventMembershipInvited    = "MEMBERSHIP_INVITED"
)

type OutboxEvent struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	EventType   string          `db:"event_type" json:"event_type"`
	Payload     json.RawMessage `db:"payload" json:"payload"`
	Status      OutboxStatus    `db:"status" json:"status"`
	Error       *string         `db:"error" json:"error,omitempty"`
	RetryAt     *time.Time      `db:"retry_at" json:"retry_at,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}
