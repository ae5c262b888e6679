package model

import (
	"github.com/google/uuid"
)

// Owner is a pet's responsible human contact, called a tutor by the
// clinics. Owners are scoped to exactly one clinic.
type Owner struct {
	Base
	ClinicID      uuid.UUID `db:"clinic_id" json:"clinic_id"`
	Name          string    `db:"name" json:"name"`
	Phone         *string   `db:"phone" json:"phone"`
	Email         *string   `db:"email" json:"email"`
	Notes         *string   `db:"notes" json:"notes"`
	WhatsappOptIn bool      `db:"whatsapp_opt_in" json:"whatsapp_opt_in"`
}

type CreateOwnerRequest struct {
	ClinicID      string  `json:"clinic_id" binding:"required,uuid"`
	Name          string  `json:"name" binding:"required"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Notes         *string `json:"notes"`
	WhatsappOptIn *bool   `json:"whatsapp_opt_in"`
}

type UpdateOwnerRequest struct {
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Notes         *string `json:"notes"`
	WhatsappOptIn *bool   `json:"whatsapp_opt_in"`
}
