// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/milequest/mapservice/internal/mapping"
)

// Config holds the service configuration.
type Config struct {
	// Mapbox
	AccessToken     string
	BaseURL         string
	DefaultProfile  mapping.Profile
	Language        string
	Country         string
	MaxWaypoints    int
	ProviderTimeout time.Duration
	MaxRetries      uint64

	// Server
	Port        string
	Environment string

	// Telemetry
	TelemetryEnabled bool
	OTLPEndpoint     string
}

// Load reads the configuration from environment variables, applies defaults
// and validates the result.
func Load() (Config, error) {
	var errs []error

	maxWaypoints, err := strconv.Atoi(getEnvOrDefault("MAP_MAX_WAYPOINTS", "20"))
	if err != nil {
		errs = append(errs, fmt.Errorf("MAP_MAX_WAYPOINTS: %w", err))
	}

	timeout, err := time.ParseDuration(getEnvOrDefault("MAP_PROVIDER_TIMEOUT", "10s"))
	if err != nil {
		errs = append(errs, fmt.Errorf("MAP_PROVIDER_TIMEOUT: %w", err))
	}

	retries, err := strconv.ParseUint(getEnvOrDefault("MAP_PROVIDER_MAX_RETRIES", "0"), 10, 64)
	if err != nil {
		errs = append(errs, fmt.Errorf("MAP_PROVIDER_MAX_RETRIES: %w", err))
	}

	cfg := Config{
		AccessToken:      os.Getenv("MAPBOX_ACCESS_TOKEN"),
		BaseURL:          getEnvOrDefault("MAPBOX_BASE_URL", "https://api.mapbox.com"),
		DefaultProfile:   mapping.Profile(getEnvOrDefault("MAP_DEFAULT_PROFILE", string(mapping.ProfileWalking))),
		Language:         os.Getenv("MAP_LANGUAGE"),
		Country:          strings.ToLower(os.Getenv("MAP_COUNTRY")),
		MaxWaypoints:     maxWaypoints,
		ProviderTimeout:  timeout,
		MaxRetries:       retries,
		Port:             getEnvOrDefault("APP_PORT", "8080"),
		Environment:      getEnvOrDefault("APP_ENV", "development"),
		TelemetryEnabled: os.Getenv("OTEL_ENABLED") == "true",
		OTLPEndpoint:     getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges. A missing access token is reported here so
// the service refuses to start rather than failing every request.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.AccessToken) == "" {
		errs = append(errs, errors.New("MAPBOX_ACCESS_TOKEN is required"))
	}
	if !c.DefaultProfile.Valid() {
		errs = append(errs, fmt.Errorf("MAP_DEFAULT_PROFILE %q must be walking, cycling or driving", c.DefaultProfile))
	}
	if c.MaxWaypoints < 2 {
		errs = append(errs, fmt.Errorf("MAP_MAX_WAYPOINTS must be at least 2, got %d", c.MaxWaypoints))
	}
	if c.ProviderTimeout <= 0 {
		errs = append(errs, fmt.Errorf("MAP_PROVIDER_TIMEOUT must be positive, got %s", c.ProviderTimeout))
	}
	if c.Country != "" && len(c.Country) != 2 {
		errs = append(errs, fmt.Errorf("MAP_COUNTRY %q must be an ISO 3166 alpha-2 code", c.Country))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
