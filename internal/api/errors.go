package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/registry-api/internal/api/shared"
	"github.com/phrazzld/registry-api/internal/domain"
	"github.com/phrazzld/registry-api/internal/service"
	"github.com/phrazzld/registry-api/internal/service/photo"
	"github.com/phrazzld/registry-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var maxBytesErr *http.MaxBytesError
	var validationErrs validator.ValidationErrors

	switch {
	// Not found errors
	case errors.Is(err, service.ErrPersonNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Payload size errors
	case errors.Is(err, photo.ErrTooLarge),
		errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge

	// Bad request errors: age derivation, validation and malformed input
	case domain.IsAgeError(err),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, photo.ErrEmpty),
		errors.Is(err, photo.ErrUnsupportedType),
		errors.Is(err, shared.ErrEmptyBody),
		errors.Is(err, shared.ErrInvalidJSON),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var vErr *domain.ValidationError
	var validationErrs validator.ValidationErrors
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.Is(err, service.ErrPersonNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Person not found"

	case errors.Is(err, store.ErrDuplicate):
		return "Person already exists"

	// Domain validation messages are written for clients
	case errors.As(err, &vErr):
		return fmt.Sprintf("Invalid %s: %s", vErr.Field, vErr.Message)

	case errors.Is(err, domain.ErrInvalidDateRange):
		return "Birth date cannot be in the future"

	case errors.Is(err, domain.ErrInvalidDate):
		return "Invalid birth date: expected a valid YYYY-MM-DD date"

	case errors.Is(err, domain.ErrInvalidAge):
		return "Invalid age"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"

	case errors.As(err, &validationErrs):
		return SanitizeValidationError(validationErrs)

	case errors.Is(err, photo.ErrTooLarge):
		return "Photo is too large"

	case errors.As(err, &maxBytesErr):
		return "Request is too large"

	case errors.Is(err, photo.ErrEmpty):
		return "Photo is required"

	case errors.Is(err, photo.ErrUnsupportedType):
		return "Photo must be an image"

	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"

	case errors.Is(err, shared.ErrInvalidJSON):
		return "Invalid request format"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid person data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a short message
// naming the first failing field, e.g. "Invalid phone: too short".
func SanitizeValidationError(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "Validation error"
	}
	fe := errs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "datetime":
		return "expected YYYY-MM-DD"
	default:
		return "validation failed"
	}
}

// writeError maps err to a status and safe message and writes it.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
