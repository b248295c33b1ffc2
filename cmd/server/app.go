package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/phrazzld/registry-api/internal/config"
	"github.com/phrazzld/registry-api/internal/events"
	"github.com/phrazzld/registry-api/internal/platform/cache"
	"github.com/phrazzld/registry-api/internal/platform/metrics"
	"github.com/phrazzld/registry-api/internal/platform/postgres"
	"github.com/phrazzld/registry-api/internal/platform/requesttime"
	"github.com/phrazzld/registry-api/internal/service"
	"github.com/phrazzld/registry-api/internal/service/photo"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// Infrastructure; db and cache are nil in router tests
	db       *sql.DB
	cache    *cache.DashboardCache
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	clock    requesttime.Clock

	// Services
	personService    service.PersonService
	dashboardService *service.DashboardService
	photos           *photo.Encoder
}

// newApplication connects to the database and the optional cache, applies
// pending migrations and builds the services.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := postgres.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	if err := postgres.Migrate(ctx, db, postgres.MigrateUp, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	dashCache, err := cache.New(ctx, cfg.Cache, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to dashboard cache: %w", err)
	}

	app := &application{
		config:   cfg,
		logger:   logger,
		db:       db,
		cache:    dashCache,
		metrics:  metrics.New(prometheus.DefaultRegisterer),
		gatherer: prometheus.DefaultGatherer,
		clock:    requesttime.SystemClock,
		photos:   photo.NewEncoder(cfg.Photo.MaxBytes),
	}

	if err := app.initServices(); err != nil {
		app.cleanup()
		return nil, err
	}
	return app, nil
}

// initServices wires stores, the event emitter and the services.
func (app *application) initServices() error {
	personStore := postgres.NewPostgresPersonStore(app.db, app.logger)
	personRepo := service.NewPersonRepositoryAdapter(personStore, app.db)

	emitter := events.NewInMemoryEventEmitter(app.logger)

	// A nil *DashboardCache must not reach the interface-typed parameters.
	var statsCache service.StatsCache
	if app.cache != nil {
		statsCache = app.cache
		emitter.RegisterHandler(events.NewCacheInvalidator(app.cache))
	}

	personService, err := service.NewPersonService(personRepo, emitter, app.metrics, app.clock, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create person service: %w", err)
	}

	dashboardService, err := service.NewDashboardService(
		personStore,
		statsCache,
		app.metrics,
		app.clock,
		app.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create dashboard service: %w", err)
	}

	app.personService = personService
	app.dashboardService = dashboardService
	return nil
}

// cleanup releases the database and cache connections.
func (app *application) cleanup() {
	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			app.logger.Error("failed to close dashboard cache", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", slog.String("error", err.Error()))
		}
	}
}
