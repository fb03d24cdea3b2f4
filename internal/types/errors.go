package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrGeocodeExhausted marks a lookup where no tier produced a coordinate
	// and the global fallback city was substituted.
	ErrGeocodeExhausted = errors.New("all geocoding tiers exhausted")
	ErrSessionNotFound  = errors.New("map session not found")
	ErrEntityNotFound   = errors.New("entity not found in session")
	ErrTripNotFound     = errors.New("trip not found")
	ErrUnknownIntent    = errors.New("unknown intent")
)

// ConflictError is raised for an ambiguous place/country pairing. It always
// needs user confirmation.
type ConflictError struct {
	Place    string
	Conflict LocationConflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("location conflict for %q: %s", e.Place, e.Conflict.Message)
}

// MissingFieldError is a non-fatal incomplete validation.
type MissingFieldError struct {
	Intent IntentName
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("intent %s is missing fields: %s", e.Intent, strings.Join(e.Fields, ", "))
}
