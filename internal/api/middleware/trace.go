package middleware

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/registry-api/internal/api/shared"
	"github.com/phrazzld/registry-api/internal/platform/logger"
)

// NewTraceMiddleware adds a trace ID to the request context and stores a
// request-scoped logger carrying it. This middleware should be applied
// early in the middleware chain so every handler logs with the trace ID.
//
// The chi request ID is reused as the trace ID when present.
func NewTraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := chimiddleware.GetReqID(r.Context())
			if traceID == "" {
				traceID = shared.NewTraceID()
			}
			ctx := shared.WithTraceID(r.Context(), traceID)

			log := base.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)

			w.Header().Set(shared.TraceIDHeader, traceID)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
