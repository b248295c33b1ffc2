package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/registry-api/internal/platform/logger"
)

func TestRespondWithJSON(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		data         any
		expectedBody string
	}{
		{
			name:         "object",
			status:       http.StatusOK,
			data:         map[string]any{"total": 3},
			expectedBody: `{"total":3}`,
		},
		{
			name:         "nil",
			status:       http.StatusOK,
			data:         nil,
			expectedBody: `null`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			RespondWithJSON(w, req, tc.status, tc.data)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, w.Body.String())
		})
	}
}

func TestRespondWithMessage(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/api/form/1", nil)
	w := httptest.NewRecorder()

	RespondWithMessage(w, req, http.StatusOK, "Person deleted", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Person deleted"}`, w.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	log, buf := logger.NewTestLogger(t)

	req := httptest.NewRequest(http.MethodGet, "/api/form/1", nil)
	ctx := logger.WithLogger(WithTraceID(req.Context(), "trace-1"), log)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	cause := errors.New("dial tcp: postgres://admin:hunter2@db:5432/registry refused")
	RespondWithErrorAndLog(w, req, http.StatusInternalServerError, "An unexpected error occurred", cause)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "An unexpected error occurred", body["error"])
	assert.Equal(t, "trace-1", body["trace_id"])
	assert.NotContains(t, w.Body.String(), "hunter2")

	logs := buf.String()
	assert.Contains(t, logs, `"level":"ERROR"`)
	assert.Contains(t, logs, "trace-1")
	assert.False(t, strings.Contains(logs, "hunter2"), "credentials must be redacted in logs")
}

func TestRespondWithError_ClientErrorLogsAtDebug(t *testing.T) {
	log, buf := logger.NewTestLogger(t)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(logger.WithLogger(req.Context(), log))
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusNotFound, "Resource not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Resource not found"}`, w.Body.String())
	assert.Contains(t, buf.String(), `"level":"DEBUG"`)
}
