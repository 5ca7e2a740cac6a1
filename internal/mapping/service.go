package mapping

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/milequest/mapservice/pkg/geo"
	"github.com/milequest/mapservice/pkg/maperr"
)

const tracerName = "github.com/milequest/mapservice/internal/mapping"

const (
	// DefaultMaxWaypoints bounds CalculateRoute input.
	DefaultMaxWaypoints = 20

	// DefaultSearchLimit is the number of search results requested.
	DefaultSearchLimit = 5
)

// ServiceConfig holds configuration for the map service. It is fixed at
// construction.
type ServiceConfig struct {
	// AccessToken is the provider access token (required). It must match the
	// token the Provider was built with; the Provider sends its own copy.
	AccessToken string

	// DefaultProfile is used when a call does not name one (default: walking).
	DefaultProfile Profile

	// Language is the preferred result language, e.g. "en" (optional).
	Language string

	// Country restricts searches to an ISO 3166 alpha-2 country (optional).
	Country string

	// MaxWaypoints bounds route calculation (default: 20).
	MaxWaypoints int

	// Provider performs the network calls.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// NewID generates route identifiers. Defaults to "route_" + UUIDv4.
	NewID func() string
}

// Service is the map service facade. It holds no mutable state and is safe
// for concurrent use.
type Service struct {
	provider       Provider
	logger         zerolog.Logger
	defaultProfile Profile
	language       string
	country        string
	maxWaypoints   int
	newID          func() string
	tracer         trace.Tracer
}

// NewService validates cfg and creates a Service. An empty access token fails
// with INVALID_TOKEN before any provider is contacted.
func NewService(cfg ServiceConfig) (*Service, error) {
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, maperr.New(maperr.CodeInvalidToken, "mapping access token is required")
	}
	if cfg.Provider == nil {
		return nil, maperr.New(maperr.CodeUnknown, "mapping provider is required")
	}

	profile := cfg.DefaultProfile
	if profile == "" {
		profile = ProfileWalking
	}
	if !profile.Valid() {
		return nil, maperr.New(maperr.CodeUnknown, fmt.Sprintf("unsupported default profile %q", profile))
	}

	maxWaypoints := cfg.MaxWaypoints
	if maxWaypoints <= 0 {
		maxWaypoints = DefaultMaxWaypoints
	}

	newID := cfg.NewID
	if newID == nil {
		newID = func() string { return "route_" + uuid.NewString() }
	}

	return &Service{
		provider:       cfg.Provider,
		logger:         cfg.Logger,
		defaultProfile: profile,
		language:       cfg.Language,
		country:        cfg.Country,
		maxWaypoints:   maxWaypoints,
		newID:          newID,
		tracer:         otel.Tracer(tracerName),
	}, nil
}

// SearchAddress geocodes free text. Results keep the provider's relevance
// ordering. An empty query is passed through to the provider.
func (s *Service) SearchAddress(ctx context.Context, query string, opts *SearchOptions) ([]SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "mapping.SearchAddress")
	defer span.End()

	req := GeocodeRequest{
		Query:    query,
		Limit:    DefaultSearchLimit,
		Country:  s.country,
		Language: s.language,
	}
	if opts != nil {
		if opts.Limit > 0 {
			req.Limit = opts.Limit
		}
		if opts.Country != "" {
			req.Country = opts.Country
		}
		if opts.Proximity != nil {
			if !opts.Proximity.Valid() {
				return nil, s.fail(span, "search address", maperr.New(maperr.CodeInvalidCoordinates, "proximity position is out of range"))
			}
			req.Proximity = opts.Proximity
		}
		req.Types = opts.Types
	}
	span.SetAttributes(attribute.Int("search.limit", req.Limit))

	places, err := s.provider.ForwardGeocode(ctx, req)
	if err != nil {
		return nil, s.fail(span, "search address", err)
	}

	results := make([]SearchResult, 0, len(places))
	for _, p := range places {
		results = append(results, SearchResult{
			ID:        p.ID,
			Address:   p.Address,
			Position:  p.Position,
			Relevance: clampRelevance(p.Relevance),
			Type:      p.Type,
		})
	}

	s.logger.Debug().
		Int("result_count", len(results)).
		Str("provider", s.provider.Name()).
		Msg("address search completed")

	return results, nil
}

// ReverseGeocode returns the best formatted address for pos.
func (s *Service) ReverseGeocode(ctx context.Context, pos geo.Position) (string, error) {
	ctx, span := s.tracer.Start(ctx, "mapping.ReverseGeocode")
	defer span.End()

	if !pos.Valid() {
		return "", s.fail(span, "reverse geocode", maperr.New(maperr.CodeInvalidCoordinates, "position is out of range"))
	}

	places, err := s.provider.ReverseGeocode(ctx, ReverseGeocodeRequest{
		Position: pos,
		Limit:    1,
		Language: s.language,
	})
	if err != nil {
		return "", s.fail(span, "reverse geocode", err)
	}
	if len(places) == 0 {
		return "", s.fail(span, "reverse geocode", maperr.New(maperr.CodeAddressNotFound, maperr.ErrAddressNotFound.Message))
	}

	return places[0].Address, nil
}

// CalculateRoute computes a route through waypoints in the given order.
// Waypoint count and positions are validated before the provider is called.
func (s *Service) CalculateRoute(ctx context.Context, waypoints []Waypoint, opts *RouteOptions) (*Route, error) {
	ctx, span := s.tracer.Start(ctx, "mapping.CalculateRoute",
		trace.WithAttributes(attribute.Int("waypoints.count", len(waypoints))))
	defer span.End()

	if err := s.validateRouteWaypoints(waypoints); err != nil {
		return nil, s.fail(span, "calculate route", err)
	}

	req := DirectionsRequest{
		Coordinates: positionsOf(waypoints),
		Profile:     s.defaultProfile,
		Language:    s.language,
	}
	if opts != nil {
		if opts.Profile != "" {
			if !opts.Profile.Valid() {
				return nil, s.fail(span, "calculate route", maperr.New(maperr.CodeUnknown, fmt.Sprintf("unsupported profile %q", opts.Profile)))
			}
			req.Profile = opts.Profile
		}
		req.Alternatives = opts.Alternatives
		req.Steps = opts.Steps
	}
	span.SetAttributes(attribute.String("route.profile", string(req.Profile)))

	directions, err := s.provider.GetDirections(ctx, req)
	if err != nil {
		return nil, s.fail(span, "calculate route", err)
	}
	if directions == nil || len(directions.Routes) == 0 {
		return nil, s.fail(span, "calculate route", maperr.New(maperr.CodeNoRouteFound, maperr.ErrNoRouteFound.Message))
	}

	route, err := s.assembleRoute(waypoints, directions.Routes[0])
	if err != nil {
		return nil, s.fail(span, "calculate route", err)
	}

	s.logger.Debug().
		Str("route_id", route.ID).
		Int("segment_count", len(route.Segments)).
		Float64("distance_m", route.TotalDistance).
		Str("profile", string(req.Profile)).
		Msg("route calculated")

	return route, nil
}

func (s *Service) validateRouteWaypoints(waypoints []Waypoint) error {
	if len(waypoints) < 2 {
		return maperr.New(maperr.CodeInvalidWaypoints, maperr.ErrInvalidWaypoints.Message)
	}
	if len(waypoints) > s.maxWaypoints {
		return maperr.New(maperr.CodeTooManyWaypoints,
			fmt.Sprintf("at most %d waypoints are allowed, got %d", s.maxWaypoints, len(waypoints)))
	}
	return validatePositions(waypoints)
}

func validatePositions(waypoints []Waypoint) error {
	for i, w := range waypoints {
		if !w.Position.Valid() {
			return maperr.New(maperr.CodeInvalidCoordinates,
				fmt.Sprintf("waypoint %d has an out-of-range position", i+1))
		}
	}
	return nil
}

// fail converts err to a domain error, records it on the span and logs it.
func (s *Service) fail(span trace.Span, op string, err error) error {
	mapped := maperr.FromTransport(err, op)

	span.RecordError(mapped)
	span.SetStatus(codes.Error, string(mapped.Code))

	s.logger.Warn().
		Str("operation", op).
		Object("error", mapped).
		Msg("mapping operation failed")

	return mapped
}

func positionsOf(waypoints []Waypoint) []geo.Position {
	positions := make([]geo.Position, len(waypoints))
	for i, w := range waypoints {
		positions[i] = w.Position
	}
	return positions
}

func clampRelevance(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	default:
		return r
	}
}
