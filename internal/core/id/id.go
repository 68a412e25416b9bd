// Package id provides UUIDv7 generation for row keys, marks and queue entries.
// UUIDv7 is time-ordered, so keys generated by one device sort by scan time.
package id

import (
	"github.com/google/uuid"
)

// ID is a type alias for UUID.
type ID = uuid.UUID

// New generates a new UUIDv7 (time-ordered UUID).
func New() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to V4 if V7 fails (should never happen)
		return uuid.New()
	}
	return id
}

// NewKey returns a fresh UUIDv7 in its canonical string form.
// Document row keys are stored as text, so callers use this helper.
func NewKey() string {
	return New().String()
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// IsNil checks if ID is zero-value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
