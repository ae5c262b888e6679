package model

import (
	"time"

	"github.com/google/uuid"
)

type Species string

const (
	SpeciesDog     Species = "DOG"
	SpeciesCat     Species = "CAT"
	SpeciesBird    Species = "BIRD"
	SpeciesRabbit  Species = "RABBIT"
	SpeciesReptile Species = "REPTILE"
	SpeciesOther   Species = "OTHER"
)

type Sex string

const (
	SexMale    Sex = "MALE"
	SexFemale  Sex = "FEMALE"
	SexUnknown Sex = "UNKNOWN"
)

// Patient is the animal under care. A patient always belongs to an
// owner within the same clinic.
type Patient struct {
	Base
	ClinicID  uuid.UUID  `db:"clinic_id" json:"clinic_id"`
	OwnerID   uuid.UUID  `db:"owner_id" json:"owner_id"`
	Name      string     `db:"name" json:"name"`
	Species   Species    `db:"species" json:"species"`
	Sex       Sex        `db:"sex" json:"sex"`
	Breed     *string    `db:"breed" json:"breed"`
	Color     *string    `db:"color" json:"color"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date"`
	Microchip *string    `db:"microchip" json:"microchip"`
	Notes     *string    `db:"notes" json:"notes"`
}

type CreatePatientRequest struct {
	ClinicID  string     `json:"clinic_id" binding:"required,uuid"`
	OwnerID   string     `json:"owner_id" binding:"required,uuid"`
	Name      string     `json:"name" binding:"required"`
	Species   Species    `json:"species" binding:"required,oneof=DOG CAT BIRD RABBIT REPTILE OTHER"`
	Sex       *Sex       `json:"sex" binding:"omitempty,oneof=MALE FEMALE UNKNOWN"`
	Breed     *string    `json:"breed"`
	Color     *string    `json:"color"`
	BirthDate *time.Time `json:"birth_date"`
	Microchip *string    `json:"microchip"`
	Notes     *string    `json:"notes"`
}

type UpdatePatientRequest struct {
	OwnerID   *string    `json:"owner_id" binding:"omitempty,uuid"`
	Name      *string    `json:"name"`
	Species   *Species   `json:"species" binding:"omitempty,oneof=DOG CAT BIRD RABBIT REPTILE OTHER"`
	Sex       *Sex       `json:"sex" binding:"omitempty,oneof=MALE FEMALE UNKNOWN"`
	Breed     *string    `json:"breed"`
	Color     *string    `json:"color"`
	BirthDate *time.Time `json:"birth_date"`
	Microchip *string    `json:"microchip"`
	Notes     *string    `json:"notes"`
}
