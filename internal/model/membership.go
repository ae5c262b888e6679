package model

import (
	"github.com/google/uuid"
)

type ClinicRole string

const (
	ClinicRoleAdmin        ClinicRole = "CLINIC_ADMIN"
	ClinicRoleReceptionist ClinicRole = "RECEPTIONIST"
	ClinicRoleVeterinarian ClinicRole = "VETERINARIAN"
)

// ClinicMembership grants a user a role within one clinic. At most one
// active row exists per (clinic, user) pair; re-inviting a removed user
// reactivates the existing row instead of inserting a duplicate.
type ClinicMembership struct {
	Base
	ClinicID uuid.UUID  `db:"clinic_id" json:"clinic_id"`
	UserID   uuid.UUID  `db:"user_id" json:"user_id"`
	Role     ClinicRole `db:"role" json:"role"`
	Active   bool       `db:"active" json:"active"`
}

type CreateMembershipRequest struct {
	ClinicID string     `json:"clinic_id" binding:"required,uuid"`
	UserID   string     `json:"user_id" binding:"required,uuid"`
	Role     ClinicRole `json:"role" binding:"required,oneof=CLINIC_ADMIN RECEPTIONIST VETERINARIAN"`
}

type UpdateMembershipRequest struct {
	Role *ClinicRole `json:"role" binding:"omitempty,oneof=CLINIC_ADMIN RECEPTIONIST VETERINARIAN"`
}
