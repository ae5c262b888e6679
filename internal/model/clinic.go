package model

import (
	"github.com/google/uuid"
)

// Clinic is the tenancy root. Clinics are deactivated, never physically
// removed, so historical appointments and encounters keep a valid
// reference.
type Clinic struct {
	Base
	Name              string     `db:"name" json:"name"`
	LegalName         *string    `db:"legal_name" json:"legal_name"`
	WhatsappNumber    *string    `db:"whatsapp_number" json:"whatsapp_number"`
	FeedbackFormURL   *string    `db:"feedback_form_url" json:"feedback_form_url"`
	Country           *string    `db:"country" json:"country"`
	State             *string    `db:"state" json:"state"`
	City              *string    `db:"city" json:"city"`
	AddressLine       *string    `db:"address_line" json:"address_line"`
	Zip               *string    `db:"zip" json:"zip"`
	Active            bool       `db:"active" json:"active"`
	OwnerID           *uuid.UUID `db:"owner_id" json:"owner_id"`
	WebhookSecretHash *string    `db:"webhook_secret_hash" json:"-"`
}

type CreateClinicRequest struct {
	Name            string  `json:"name" binding:"required"`
	LegalName       *string `json:"legal_name"`
	WhatsappNumber  *string `json:"whatsapp_number"`
	FeedbackFormURL *string `json:"feedback_form_url"`
	Country         *string `json:"country" binding:"omitempty,len=2"`
	State           *string `json:"state"`
	City            *string `json:"city"`
	AddressLine     *string `json:"address_line"`
	Zip             *string `json:"zip"`
	OwnerID         *string `json:"owner_id" binding:"omitempty,uuid"`
}

type UpdateClinicRequest struct {
	Name            *string `json:"name"`
	LegalName       *string `json:"legal_name"`
	WhatsappNumber  *string `json:"whatsapp_number"`
	FeedbackFormURL *string `json:"feedback_form_url"`
	Country         *string `json:"country" binding:"omitempty,len=2"`
	State           *string `json:"state"`
	City            *string `json:"city"`
	AddressLine     *string `json:"address_line"`
	Zip             *string `json:"zip"`
}
