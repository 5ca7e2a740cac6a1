// Package main provides the entrypoint for the map service API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/milequest/mapservice/internal/api"
	"github.com/milequest/mapservice/internal/api/middleware"
	"github.com/milequest/mapservice/internal/config"
	"github.com/milequest/mapservice/internal/mapping"
	"github.com/milequest/mapservice/internal/mapping/mapbox"
	"github.com/milequest/mapservice/internal/provider/resilience"
	"github.com/milequest/mapservice/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "mapservice-api"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if cfg.Environment == "development" {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	log.Info().
		Str("build_time", BuildTime).
		Str("environment", cfg.Environment).
		Msg("starting map service API")

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	registry := resilience.NewRegistry()

	provider, err := mapbox.NewClient(mapbox.ClientConfig{
		AccessToken: cfg.AccessToken,
		BaseURL:     cfg.BaseURL,
		Timeout:     cfg.ProviderTimeout,
		MaxRetries:  cfg.MaxRetries,
		Registry:    registry,
		Logger:      log.With().Str("component", "mapbox").Logger(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create mapbox client")
	}

	mapService, err := mapping.NewService(mapping.ServiceConfig{
		AccessToken:    cfg.AccessToken,
		DefaultProfile: cfg.DefaultProfile,
		Language:       cfg.Language,
		Country:        cfg.Country,
		MaxWaypoints:   cfg.MaxWaypoints,
		Provider:       provider,
		Logger:         log.With().Str("component", "mapping").Logger(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create map service")
	}

	log.Info().
		Str("provider", provider.Name()).
		Str("profile", string(cfg.DefaultProfile)).
		Int("max_waypoints", cfg.MaxWaypoints).
		Msg("map service initialized")

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		MapService:  mapService,
		Registry:    registry,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second + cfg.ProviderTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
