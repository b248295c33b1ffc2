package api

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/phrazzld/registry-api/internal/api/shared"
	"github.com/phrazzld/registry-api/internal/platform/logger"
	"github.com/phrazzld/registry-api/internal/redact"
)

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

const healthCheckTimeout = 2 * time.Second

// HealthHandler reports the status of the process and its dependencies.
type HealthHandler struct {
	checks map[string]HealthCheck
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler. Nil checks are ignored.
func NewHealthHandler(checks map[string]HealthCheck, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	filtered := make(map[string]HealthCheck, len(checks))
	for name, check := range checks {
		if check != nil {
			filtered[name] = check
		}
	}
	return &HealthHandler{
		checks: filtered,
		logger: logger.With(slog.String("component", "health_handler")),
	}
}

// Health handles GET /health. It answers 503 when any check fails.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := HealthResponse{Status: "ok"}
	status := http.StatusOK
	if len(names) > 0 {
		resp.Checks = make(map[string]string, len(names))
	}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			log.Warn("health check failed", slog.String("check", name), redact.ErrorAttr(err))
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	shared.RespondWithJSON(w, r, status, resp)
}
