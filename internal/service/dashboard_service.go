package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phrazzld/registry-api/internal/domain"
	"github.com/phrazzld/registry-api/internal/platform/logger"
	"github.com/phrazzld/registry-api/internal/platform/metrics"
	"github.com/phrazzld/registry-api/internal/platform/requesttime"
	"github.com/phrazzld/registry-api/internal/redact"
	"github.com/phrazzld/registry-api/internal/store"
)

// Dashboard statistic names, used as cache keys and metric labels.
const (
	StatProfession = "profession"
	StatAgeRange   = "age-range"
	StatMonth      = "month"
	StatSummary    = "summary"
)

// StatsCache stores computed dashboard statistics per reference date.
// Get reports found=false on a miss and returns the cache generation it
// read; Set must drop the write when that generation is no longer current.
type StatsCache interface {
	Get(ctx context.Context, stat string, ref domain.BirthDate, dest any) (generation int64, found bool, err error)
	Set(ctx context.Context, generation int64, stat string, ref domain.BirthDate, value any) error
}

// DashboardSummary combines every dashboard statistic computed for one
// reference date.
type DashboardSummary struct {
	ReferenceDate domain.BirthDate         `json:"reference_date"`
	Total         int                      `json:"total"`
	ByProfession  []domain.ProfessionStat  `json:"by_profession"`
	ByAgeRange    domain.AgeRangeHistogram `json:"by_age_range"`
	ByMonth       []domain.MonthlyStat     `json:"by_month"`
}

// DashboardService computes the aggregate statistics shown on the dashboard.
// Age statistics are always derived from birth dates at the reference date,
// never from the stored age snapshot.
type DashboardService struct {
	stats   store.StatsStore
	cache   StatsCache
	metrics *metrics.Metrics
	clock   requesttime.Clock
	logger  *slog.Logger
}

// NewDashboardService creates a DashboardService. cache and m may be nil.
func NewDashboardService(
	stats store.StatsStore,
	cache StatsCache,
	m *metrics.Metrics,
	clock requesttime.Clock,
	logger *slog.Logger,
) (*DashboardService, error) {
	if stats == nil {
		return nil, &PersonServiceError{
			Operation: "create_service",
			Message:   "stats store cannot be nil",
		}
	}
	if clock == nil {
		clock = requesttime.SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		stats:   stats,
		cache:   cache,
		metrics: m,
		clock:   clock,
		logger:  logger.With(slog.String("component", "dashboard_service")),
	}, nil
}

// ByProfession returns the number of persons per profession, largest first.
func (s *DashboardService) ByProfession(ctx context.Context) ([]domain.ProfessionStat, error) {
	ref := requesttime.ReferenceDate(ctx, s.clock)
	return cached(ctx, s, StatProfession, StatProfession, ref, s.computeByProfession)
}

// ByAgeRange buckets every person by age as of the reference date.
func (s *DashboardService) ByAgeRange(ctx context.Context) (domain.AgeRangeHistogram, error) {
	ref := requesttime.ReferenceDate(ctx, s.clock)
	return cached(ctx, s, StatAgeRange, StatAgeRange, ref, func(ctx context.Context) (domain.AgeRangeHistogram, error) {
		return s.computeByAgeRange(ctx, ref)
	})
}

// ByMonth returns registrations per calendar month, oldest first.
// A zero since includes every month.
func (s *DashboardService) ByMonth(ctx context.Context, since time.Time) ([]domain.MonthlyStat, error) {
	ref := requesttime.ReferenceDate(ctx, s.clock)
	key := StatMonth
	if !since.IsZero() {
		key += "-since-" + domain.DateOf(since.UTC()).String()
	}
	return cached(ctx, s, StatMonth, key, ref, func(ctx context.Context) ([]domain.MonthlyStat, error) {
		return s.computeByMonth(ctx, since)
	})
}

// Summary computes every statistic concurrently for one reference date.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	ref := requesttime.ReferenceDate(ctx, s.clock)
	return cached(ctx, s, StatSummary, StatSummary, ref, func(ctx context.Context) (*DashboardSummary, error) {
		summary := &DashboardSummary{ReferenceDate: ref}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			total, err := s.stats.CountPersons(gctx)
			if err != nil {
				return NewPersonServiceError("dashboard_summary", "failed to count persons", err)
			}
			summary.Total = total
			return nil
		})
		g.Go(func() error {
			var err error
			summary.ByProfession, err = s.computeByProfession(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			summary.ByAgeRange, err = s.computeByAgeRange(gctx, ref)
			return err
		})
		g.Go(func() error {
			var err error
			summary.ByMonth, err = s.computeByMonth(gctx, time.Time{})
			return err
		})

		if err := g.Wait(); err != nil {
			return nil, err
		}
		return summary, nil
	})
}

func (s *DashboardService) computeByProfession(ctx context.Context) ([]domain.ProfessionStat, error) {
	defer s.metrics.ObserveDashboard(StatProfession, time.Now())

	stats, err := s.stats.CountByProfession(ctx)
	if err != nil {
		return nil, NewPersonServiceError("dashboard_profession", "failed to count by profession", err)
	}
	if stats == nil {
		stats = []domain.ProfessionStat{}
	}
	return stats, nil
}

func (s *DashboardService) computeByAgeRange(
	ctx context.Context,
	ref domain.BirthDate,
) (domain.AgeRangeHistogram, error) {
	defer s.metrics.ObserveDashboard(StatAgeRange, time.Now())

	births, err := s.stats.ListBirthDates(ctx)
	if err != nil {
		return domain.AgeRangeHistogram{}, NewPersonServiceError(
			"dashboard_age_range", "failed to list birth dates", err)
	}

	valid := births[:0:0]
	for _, b := range births {
		if b.After(ref) {
			continue
		}
		valid = append(valid, b)
	}
	if skipped := len(births) - len(valid); skipped > 0 {
		logger.FromContextOrDefault(ctx, s.logger).Warn("skipping birth dates after reference date",
			slog.Int("skipped", skipped),
			slog.String("reference_date", ref.String()))
	}

	h, err := domain.BucketBirthDates(valid, ref)
	if err != nil {
		return domain.AgeRangeHistogram{}, NewPersonServiceError(
			"dashboard_age_range", "failed to bucket ages", err)
	}
	return h, nil
}

func (s *DashboardService) computeByMonth(ctx context.Context, since time.Time) ([]domain.MonthlyStat, error) {
	defer s.metrics.ObserveDashboard(StatMonth, time.Now())

	stats, err := s.stats.CountByMonth(ctx, since)
	if err != nil {
		return nil, NewPersonServiceError("dashboard_month", "failed to count by month", err)
	}
	if stats == nil {
		stats = []domain.MonthlyStat{}
	}
	return stats, nil
}

// cached serves stat from the cache entry key when possible and stores
// freshly computed values. Cache failures degrade to computing the value.
func cached[T any](
	ctx context.Context,
	s *DashboardService,
	stat, key string,
	ref domain.BirthDate,
	compute func(context.Context) (T, error),
) (T, error) {
	if s.cache == nil {
		return compute(ctx)
	}

	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("stat", stat))

	var hit T
	gen, found, readErr := s.cache.Get(ctx, key, ref, &hit)
	if readErr != nil {
		log.Warn("dashboard cache read failed", redact.ErrorAttr(readErr))
	}
	s.metrics.RecordCacheLookup(stat, found)
	if found {
		return hit, nil
	}

	// The generation is read before compute so an invalidation that lands
	// mid-computation leaves the result unstored.
	value, err := compute(ctx)
	if err != nil {
		return value, err
	}
	if readErr != nil {
		return value, nil
	}

	if err := s.cache.Set(ctx, gen, key, ref, value); err != nil {
		log.Warn("dashboard cache write failed", redact.ErrorAttr(err))
	}
	return value, nil
}
