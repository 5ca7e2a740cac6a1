// Package api provides the HTTP API for the map service.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/milequest/mapservice/internal/api/handler"
	"github.com/milequest/mapservice/internal/api/middleware"
	"github.com/milequest/mapservice/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	MapService  handler.MapService
	Registry    *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "mapservice-api"
	}

	// Global middleware, order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry)
	geocodeHandler := handler.NewGeocodeHandler(cfg.MapService)
	routeHandler := handler.NewRouteHandler(cfg.MapService)

	lookupRateLimit := middleware.RateLimitByIP(middleware.LookupRateLimit)   // 120 req/min
	computeRateLimit := middleware.RateLimitByIP(middleware.ComputeRateLimit) // 30 req/min, shared by compute and optimize

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		r.Route("/geocode", func(r chi.Router) {
			r.Use(lookupRateLimit)
			r.Get("/search", geocodeHandler.Search)
			r.Get("/reverse", geocodeHandler.Reverse)
		})

		r.Group(func(r chi.Router) {
			r.Use(computeRateLimit)
			r.Use(middleware.RequireJSON)
			r.Post("/routes:compute", routeHandler.ComputeRoute)
			r.Post("/waypoints:optimize", routeHandler.OptimizeWaypoints)
		})
	})

	return r
}
