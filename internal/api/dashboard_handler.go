package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/registry-api/internal/api/shared"
	"github.com/phrazzld/registry-api/internal/domain"
	"github.com/phrazzld/registry-api/internal/service"
)

// SinceQueryParam optionally restricts GET /api/dashboard/month to
// registrations on or after a YYYY-MM-DD date.
const SinceQueryParam = "since"

// DashboardStats is the subset of DashboardService the handler needs.
type DashboardStats interface {
	ByProfession(ctx context.Context) ([]domain.ProfessionStat, error)
	ByAgeRange(ctx context.Context) (domain.AgeRangeHistogram, error)
	ByMonth(ctx context.Context, since time.Time) ([]domain.MonthlyStat, error)
	Summary(ctx context.Context) (*service.DashboardSummary, error)
}

// DashboardHandler serves the aggregate statistics. Responses are the bare
// statistic, without the message envelope used by the form endpoints.
type DashboardHandler struct {
	stats  DashboardStats
	logger *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(stats DashboardStats, logger *slog.Logger) *DashboardHandler {
	if stats == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("stats cannot be nil for DashboardHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for DashboardHandler")
	}
	return &DashboardHandler{
		stats:  stats,
		logger: logger.With(slog.String("component", "dashboard_handler")),
	}
}

// ByProfession handles GET /api/dashboard/profession
func (h *DashboardHandler) ByProfession(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.ByProfession(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// ByAgeRange handles GET /api/dashboard/age-range
func (h *DashboardHandler) ByAgeRange(w http.ResponseWriter, r *http.Request) {
	hist, err := h.stats.ByAgeRange(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, hist)
}

// ByMonth handles GET /api/dashboard/month[?since=YYYY-MM-DD]
func (h *DashboardHandler) ByMonth(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if raw := r.URL.Query().Get(SinceQueryParam); raw != "" {
		d, err := domain.ParseBirthDate(raw)
		if err != nil {
			writeError(w, r, domain.NewValidationError(SinceQueryParam, "expected YYYY-MM-DD", err))
			return
		}
		since = d.Time()
	}

	stats, err := h.stats.ByMonth(r.Context(), since)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, monthlyToResponse(stats))
}

// Summary handles GET /api/dashboard/summary
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.stats.Summary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}
