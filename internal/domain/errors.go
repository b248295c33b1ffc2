// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidDate is returned when a birth date cannot be parsed as a valid
	// calendar date (wrong format, day 32, Feb 30, ...).
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidDateRange is returned when a birth date is later than the
	// reference date it is evaluated against.
	ErrInvalidDateRange = errors.New("birth date is after reference date")

	// ErrInvalidAge is returned when a negative age reaches age bucketing.
	ErrInvalidAge = errors.New("invalid age")
)

// ValidationError describes a single field that failed validation.
// It wraps a sentinel (usually ErrValidation) so callers can use errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the named field.
// A nil err defaults to ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// IsAgeError reports whether err belongs to the age derivation taxonomy
// (ErrInvalidDate, ErrInvalidDateRange or ErrInvalidAge).
func IsAgeError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrInvalidAge)
}
