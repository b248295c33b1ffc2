package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/registry-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is; the API layer maps them to HTTP
// status codes.
//
// Validation and age errors from the domain package pass through wrapped,
// so errors.Is(err, domain.ErrInvalidDateRange) keeps working on service errors.
var (
	// ErrPersonNotFound indicates that the person does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrPersonNotFound = errors.New("person not found")
)

// PersonServiceError wraps errors from the person and dashboard services
// with the operation that failed.
type PersonServiceError struct {
	// Operation is the operation that failed (e.g., "create_person", "update_person")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for PersonServiceError.
func (e *PersonServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("person service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("person service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *PersonServiceError) Unwrap() error {
	return e.Err
}

// NewPersonServiceError creates a new PersonServiceError.
// It returns ErrPersonNotFound directly for store and service not-found errors.
func NewPersonServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrPersonNotFound) || errors.Is(err, store.ErrPersonNotFound) {
		return ErrPersonNotFound
	}

	return &PersonServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
