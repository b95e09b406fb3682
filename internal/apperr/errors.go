// Package apperr defines the domain errors shared across services so the
// HTTP layer never has to know about gorm or gateway error types.
package apperr

import "errors"

var (
	// ErrNotFound missing service/booking/user row.
	ErrNotFound = errors.New("not found")

	// ErrConflict duplicate slug/email/NID or an invalid state transition.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized wrong role or not the resource owner.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation malformed input.
	ErrValidation = errors.New("invalid input")
)
