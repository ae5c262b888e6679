package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vetdesk/vetdesk-api/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Upsert(ctx context.Context, user *model.UpsertUser) (*model.User, error)
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		List(ctx context.Context) ([]*model.User, error)
	}

	ClinicRepository interface {
		Create(ctx context.Context, clinic *model.Clinic) error
		Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
		Update(ctx context.Context, clinic *model.Clinic) error
		Deactivate(ctx context.Context, id uuid.UUID) error
		ListActive(ctx context.Context) ([]*model.Clinic, error)
		SetWebhookSecretHash(ctx context.Context, id uuid.UUID, hash string) error
	}

	MembershipRepository interface {
		Create(ctx context.Context, membership *model.ClinicMembership) error
		Get(ctx context.Context, id uuid.UUID) (*model.ClinicMembership, error)
		// Find returns the membership row for the pair regardless of its
		// active flag, so create can reactivate instead of duplicating.
		Find(ctx context.Context, clinicID, userID uuid.UUID) (*model.ClinicMembership, error)
		Update(ctx context.Context, membership *model.ClinicMembership) error
		Deactivate(ctx context.Context, id uuid.UUID) error
		ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.ClinicMembership, error)
		ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*model.ClinicMembership, error)
	}

	OwnerRepository interface {
		Create(ctx context.Context, owner *model.Owner) error
		Get(ctx context.Context, id uuid.UUID) (*model.Owner, error)
		Update(ctx context.Context, owner *model.Owner) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, clinicID uuid.UUID) ([]*model.Owner, error)
		Search(ctx context.Context, clinicID uuid.UUID, query string) ([]*model.Owner, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, clinicID uuid.UUID) ([]*model.Patient, error)
		ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Patient, error)
		Search(ctx context.Context, clinicID uuid.UUID, query string) ([]*model.Patient, error)
		CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		// UpdateStatus transitions the row only if it still holds the
		// expected current status; returns false when the guard failed.
		UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus) (bool, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, clinicID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Appointment, error)
		HasOverlap(ctx context.Context, providerID uuid.UUID, startsAt, endsAt time.Time, excludeID *uuid.UUID) (bool, error)
		CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error)
	}

	EncounterRepository interface {
		Create(ctx context.Context, encounter *model.Encounter) error
		Get(ctx context.Context, id uuid.UUID) (*model.Encounter, error)
		// UpdateDraft writes clinical fields only while the row is still
		// DRAFT at the expected version; returns false on a stale write.
		UpdateDraft(ctx context.Context, encounter *model.Encounter) (bool, error)
		// Confirm signs the encounter; same DRAFT+version guard.
		Confirm(ctx context.Context, id uuid.UUID, version int, signedAt time.Time) (bool, error)
		AppendAddendum(ctx context.Context, id uuid.UUID, addendum *model.Addendum) error
		List(ctx context.Context, clinicID uuid.UUID) ([]*model.Encounter, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Encounter, error)
		ExistsForAppointment(ctx context.Context, appointmentID uuid.UUID) (bool, error)
		CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error)
	}

	PrescriptionRepository interface {
		// Create persists the prescription and its items in one
		// transaction.
		Create(ctx context.Context, prescription *model.Prescription) error
		Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error)
		List(ctx context.Context, clinicID uuid.UUID) ([]*model.Prescription, error)
		AddItem(ctx context.Context, item *model.PrescriptionItem) error
		ListItems(ctx context.Context, prescriptionID uuid.UUID) ([]*model.PrescriptionItem, error)
		DeleteItem(ctx context.Context, id uuid.UUID) error
		SetDocumentURL(ctx context.Context, id uuid.UUID, pdfURL string) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string, retryAt *time.Time) error
		BeginTx(ctx context.Context) (*sqlx.Tx, error)
	}
)
