package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phrazzld/registry-api/internal/api"
	apiMiddleware "github.com/phrazzld/registry-api/internal/api/middleware"
	"github.com/phrazzld/registry-api/internal/api/shared"
	"github.com/phrazzld/registry-api/internal/platform/requesttime"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.config.Server.CORSAllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:       []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:       []string{shared.TraceIDHeader},
		AllowCredentials:     false,
		MaxAge:               600,
		OptionsSuccessStatus: http.StatusNoContent,
	}))
	r.Use(requesttime.Middleware(app.clock))

	personHandler := api.NewPersonHandler(app.personService, app.photos, app.logger)
	dashboardHandler := api.NewDashboardHandler(app.dashboardService, app.logger)
	healthHandler := api.NewHealthHandler(app.healthChecks(), app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/form", func(r chi.Router) {
			r.Post("/create", personHandler.CreatePerson)
			r.Get("/all", personHandler.ListPersons)
			r.Get("/{id}", personHandler.GetPerson)
			r.Put("/{id}", personHandler.UpdatePerson)
			r.Delete("/{id}", personHandler.DeletePerson)
			r.Put("/{id}/photo", personHandler.UploadPhoto)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/profession", dashboardHandler.ByProfession)
			r.Get("/age-range", dashboardHandler.ByAgeRange)
			r.Get("/month", dashboardHandler.ByMonth)
			r.Get("/summary", dashboardHandler.Summary)
		})
	})

	r.Get("/health", healthHandler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(app.gatherer, promhttp.HandlerOpts{}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

// healthChecks returns a probe per configured dependency.
func (app *application) healthChecks() map[string]api.HealthCheck {
	checks := make(map[string]api.HealthCheck, 2)
	if app.db != nil {
		checks["database"] = app.db.PingContext
	}
	if app.cache != nil {
		checks["cache"] = app.cache.Health
	}
	return checks
}
