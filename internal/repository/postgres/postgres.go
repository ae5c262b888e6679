package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/vetdesk/vetdesk-api/internal/repository"
)

type userRepository struct {
	db *sqlx.DB
}

type clinicRepository struct {
	db *sqlx.DB
}

type membershipRepository struct {
	db *sqlx.DB
}

type ownerRepository struct {
	db *sqlx.DB
}

type patientRepository struct {
	db *sqlx.DB
}

type appointmentRepository struct {
	db *sqlx.DB
}

type encounterRepository struct {
	db *sqlx.DB
}

type prescriptionRepository struct {
	db *sqlx.DB
}

type outboxRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func NewClinicRepository(db *sqlx.DB) repository.ClinicRepository {
	return &clinicRepository{db: db}
}

func NewMembershipRepository(db *sqlx.DB) repository.MembershipRepository {
	return &membershipRepository{db: db}
}

func NewOwnerRepository(db *sqlx.DB) repository.OwnerRepository {
	return &ownerRepository{db: db}
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func NewEncounterRepository(db *sqlx.DB) repository.EncounterRepository {
	return &encounterRepository{db: db}
}

func NewPrescriptionRepository(db *sqlx.DB) repository.PrescriptionRepository {
	return &prescriptionRepository{db: db}
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}
