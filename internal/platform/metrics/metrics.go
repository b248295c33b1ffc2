// Package metrics defines the Prometheus metrics exported by the registry.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/phrazzld/registry-api/internal/domain"
)

// Age rejection kinds, used as the "kind" label.
const (
	RejectInvalidDate      = "invalid_date"
	RejectInvalidDateRange = "invalid_date_range"
	RejectInvalidAge       = "invalid_age"
)

// Cache lookup results, used as the "result" label.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	PersonsCreated    prometheus.Counter
	PersonsUpdated    prometheus.Counter
	PersonsDeleted    prometheus.Counter
	AgeRejections     *prometheus.CounterVec
	DashboardDuration *prometheus.HistogramVec
	CacheLookups      *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
// Passing prometheus.DefaultRegisterer exposes them on the default /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PersonsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "registry_persons_created_total",
			Help: "Total number of persons registered",
		}),
		PersonsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "registry_persons_updated_total",
			Help: "Total number of person updates",
		}),
		PersonsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "registry_persons_deleted_total",
			Help: "Total number of persons deleted",
		}),
		AgeRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_age_rejections_total",
			Help: "Writes rejected because no age could be derived from the birth date",
		}, []string{"kind"}),
		DashboardDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registry_dashboard_stat_duration_seconds",
			Help:    "Latency of dashboard statistic computation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"stat"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_dashboard_cache_lookups_total",
			Help: "Dashboard cache lookups by result",
		}, []string{"stat", "result"}),
	}
}

// IncrementPersonsCreated increments the persons created counter by 1.
func (m *Metrics) IncrementPersonsCreated() {
	if m == nil {
		return
	}
	m.PersonsCreated.Inc()
}

// IncrementPersonsUpdated increments the persons updated counter by 1.
func (m *Metrics) IncrementPersonsUpdated() {
	if m == nil {
		return
	}
	m.PersonsUpdated.Inc()
}

// IncrementPersonsDeleted increments the persons deleted counter by 1.
func (m *Metrics) IncrementPersonsDeleted() {
	if m == nil {
		return
	}
	m.PersonsDeleted.Inc()
}

// RecordAgeRejection counts err if it is an age derivation error.
func (m *Metrics) RecordAgeRejection(err error) {
	if m == nil {
		return
	}
	if kind := RejectionKind(err); kind != "" {
		m.AgeRejections.WithLabelValues(kind).Inc()
	}
}

// ObserveDashboard records how long computing stat took since start.
func (m *Metrics) ObserveDashboard(stat string, start time.Time) {
	if m == nil {
		return
	}
	m.DashboardDuration.WithLabelValues(stat).Observe(time.Since(start).Seconds())
}

// RecordCacheLookup counts a cache hit or miss for stat.
func (m *Metrics) RecordCacheLookup(stat string, hit bool) {
	if m == nil {
		return
	}
	result := CacheMiss
	if hit {
		result = CacheHit
	}
	m.CacheLookups.WithLabelValues(stat, result).Inc()
}

// RejectionKind returns the "kind" label for an age error, or "" if err is
// not one. ErrInvalidDateRange is checked first since it is the most specific.
func RejectionKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidDateRange):
		return RejectInvalidDateRange
	case errors.Is(err, domain.ErrInvalidDate):
		return RejectInvalidDate
	case errors.Is(err, domain.ErrInvalidAge):
		return RejectInvalidAge
	default:
		return ""
	}
}
