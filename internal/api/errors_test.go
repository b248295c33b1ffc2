package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/registry-api/internal/api/shared"
	"github.com/phrazzld/registry-api/internal/domain"
	"github.com/phrazzld/registry-api/internal/service"
	"github.com/phrazzld/registry-api/internal/service/photo"
	"github.com/phrazzld/registry-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"nil error", nil, http.StatusInternalServerError},
		{"person not found", service.ErrPersonNotFound, http.StatusNotFound},
		{"wrapped store not found", fmt.Errorf("get: %w", store.ErrPersonNotFound), http.StatusNotFound},
		{"duplicate", store.ErrDuplicate, http.StatusConflict},
		{"photo too large", fmt.Errorf("encode: %w", photo.ErrTooLarge), http.StatusRequestEntityTooLarge},
		{"body too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"invalid date", fmt.Errorf("parse: %w", domain.ErrInvalidDate), http.StatusBadRequest},
		{"future birth date", domain.ErrInvalidDateRange, http.StatusBadRequest},
		{"negative age", domain.ErrInvalidAge, http.StatusBadRequest},
		{"field validation", domain.NewValidationError("phone", "too short", nil), http.StatusBadRequest},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"empty photo", photo.ErrEmpty, http.StatusBadRequest},
		{"unsupported photo", photo.ErrUnsupportedType, http.StatusBadRequest},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest},
		{"invalid json", fmt.Errorf("%w: unexpected EOF", shared.ErrInvalidJSON), http.StatusBadRequest},
		{"transaction failure", store.ErrTransactionFailed, http.StatusInternalServerError},
		{"update failure", fmt.Errorf("%w: connection reset", store.ErrUpdateFailed), http.StatusInternalServerError},
		{
			"update constraint violation",
			fmt.Errorf("%w: %w", store.ErrUpdateFailed, store.ErrInvalidEntity),
			http.StatusBadRequest,
		},
		{"delete failure", fmt.Errorf("%w: connection reset", store.ErrDeleteFailed), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"not found", service.NewPersonServiceError("get", "lookup failed", store.ErrPersonNotFound), "Person not found"},
		{"validation", domain.NewValidationError("phone", "must be 7 to 20 characters", nil), "Invalid phone: must be 7 to 20 characters"},
		{"future birth date", fmt.Errorf("create: %w", domain.ErrInvalidDateRange), "Birth date cannot be in the future"},
		{"invalid date", domain.ErrInvalidDate, "Invalid birth date: expected a valid YYYY-MM-DD date"},
		{"photo too large", photo.ErrTooLarge, "Photo is too large"},
		{"request too large", &http.MaxBytesError{Limit: 10}, "Request is too large"},
		{"internal detail", errors.New(`pq: relation "persons" does not exist`), "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	assert.Equal(t, "Validation error", SanitizeValidationError(nil))

	err := shared.ValidateRequest(&CreatePersonRequest{
		FirstName:  "Ana",
		LastName:   "García",
		BirthDate:  "1990-05-15",
		Profession: "Ingeniero",
		Address:    "Calle 1",
		Phone:      "123",
	})
	require.Error(t, err)

	var vErrs validator.ValidationErrors
	require.True(t, errors.As(err, &vErrs))
	assert.Equal(t, "Invalid phone: too short", SanitizeValidationError(vErrs))
}

func TestGetValidationTagMessage(t *testing.T) {
	assert.Equal(t, "required field", getValidationTagMessage("required"))
	assert.Equal(t, "too long", getValidationTagMessage("max"))
	assert.Equal(t, "validation failed", getValidationTagMessage("email"))
}
