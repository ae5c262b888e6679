package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// JSONMap is an open key-value document stored as jsonb. Clinics extend
// clinical fields through it without a schema migration.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into JSONMap", src)
	}
	return json.Unmarshal(data, m)
}

// JSONList is an append-only jsonb array.
type JSONList []interface{}

func (l JSONList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *JSONList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into JSONList", src)
	}
	return json.Unmarshal(data, l)
}
