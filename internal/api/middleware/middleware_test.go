package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/registry-api/internal/api/shared"
	"github.com/phrazzld/registry-api/internal/platform/logger"
)

func TestTraceMiddleware(t *testing.T) {
	base, buf := logger.NewTestLogger(t)

	var traceID string
	handler := NewTraceMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/form/all", nil))

	require.Len(t, traceID, 32)
	assert.Equal(t, traceID, w.Header().Get(shared.TraceIDHeader))

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, traceID, e["trace_id"])
	}
}

func TestTraceMiddleware_ReusesRequestID(t *testing.T) {
	var traceID string
	handler := chimiddleware.RequestID(NewTraceMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "client-supplied-id")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "client-supplied-id", traceID)
}
