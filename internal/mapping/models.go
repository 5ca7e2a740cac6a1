// Package mapping turns address searches and waypoint lists into validated
// search results, routes and optimized waypoint orders. Network work is
// delegated to a Provider; geometry comes from pkg/geo and every failure is a
// *maperr.Error.
package mapping

import (
	"context"

	"github.com/milequest/mapservice/pkg/geo"
)

// Provider is the raw mapping backend. Implementations translate their own
// payloads into the types below and map every failure with pkg/maperr.
type Provider interface {
	// ForwardGeocode resolves free text to candidate places, best first.
	ForwardGeocode(ctx context.Context, req GeocodeRequest) ([]Place, error)
	// ReverseGeocode resolves a position to candidate places, best first.
	ReverseGeocode(ctx context.Context, req ReverseGeocodeRequest) ([]Place, error)
	// GetDirections computes routes through the coordinates in order.
	GetDirections(ctx context.Context, req DirectionsRequest) (*Directions, error)
	// GetOptimization computes a visiting order for the coordinates.
	GetOptimization(ctx context.Context, req OptimizationRequest) (*Optimization, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// Profile is the travel mode used to compute route cost.
type Profile string

const (
	ProfileWalking Profile = "walking"
	ProfileCycling Profile = "cycling"
	ProfileDriving Profile = "driving"
)

// Valid reports whether p is a supported profile.
func (p Profile) Valid() bool {
	switch p {
	case ProfileWalking, ProfileCycling, ProfileDriving:
		return true
	default:
		return false
	}
}

// Waypoint is a caller-specified stop. Order is its 1-based position in the
// list; a locked waypoint keeps its position during optimization.
type Waypoint struct {
	ID       string
	Position geo.Position
	Address  string
	Order    int
	IsLocked bool
}

// RouteSegment is the part of a route between two consecutive waypoints.
type RouteSegment struct {
	StartWaypoint Waypoint
	EndWaypoint   Waypoint
	Distance      float64 // meters
	Duration      float64 // seconds
	Polyline      string
	Coordinates   []geo.Position
}

// Route is a computed path through an ordered list of waypoints. It is never
// modified after being returned.
type Route struct {
	ID              string
	Waypoints       []Waypoint
	Segments        []RouteSegment
	TotalDistance   float64 // meters, as reported by the provider
	TotalDuration   float64 // seconds, as reported by the provider
	Bounds          geo.Bounds
	EncodedPolyline string
}

// SearchResult is one geocoding match. Results keep the provider's ordering.
type SearchResult struct {
	ID        string
	Address   string
	Position  geo.Position
	Relevance float64
	Type      string
}

// SearchOptions narrows an address search.
type SearchOptions struct {
	Limit     int           // default 5
	Proximity *geo.Position // bias results towards this point
	Country   string        // ISO 3166 alpha-2, overrides the service default
	Types     []string      // e.g. "address", "poi", "place"
}

// RouteOptions tunes route calculation.
type RouteOptions struct {
	Profile      Profile // defaults to the service profile
	Alternatives bool
	Steps        bool
}

// GeocodeRequest is a provider forward geocoding request.
type GeocodeRequest struct {
	Query     string
	Limit     int
	Proximity *geo.Position
	Country   string
	Types     []string
	Language  string
}

// ReverseGeocodeRequest is a provider reverse geocoding request.
type ReverseGeocodeRequest struct {
	Position geo.Position
	Limit    int
	Language string
}

// Place is a provider geocoding result.
type Place struct {
	ID        string
	Address   string
	Type      string
	Position  geo.Position
	Relevance float64
}

// DirectionsRequest asks the provider for routes through Coordinates.
type DirectionsRequest struct {
	Coordinates  []geo.Position
	Profile      Profile
	Alternatives bool
	Steps        bool
	Language     string
}

// Directions holds provider routes, best first.
type Directions struct {
	Routes []ProviderRoute
}

// ProviderRoute is a provider route with one leg per consecutive coordinate pair.
type ProviderRoute struct {
	Distance float64
	Duration float64
	Geometry []geo.Position
	Legs     []ProviderLeg
}

// ProviderLeg is the route between two consecutive request coordinates.
// Geometry may be empty when the provider did not return per-leg shapes.
type ProviderLeg struct {
	Distance float64
	Duration float64
	Summary  string
	Geometry []geo.Position
}

// Endpoint constrains where an optimized trip starts or ends.
type Endpoint string

const (
	EndpointAny   Endpoint = "any"
	EndpointFirst Endpoint = "first"
	EndpointLast  Endpoint = "last"
)

// OptimizationRequest asks the provider for the best visiting order.
type OptimizationRequest struct {
	Coordinates []geo.Position
	Profile     Profile
	Source      Endpoint
	Destination Endpoint
}

// Optimization is the provider's answer: Order[k] is the index into the
// request coordinates visited k-th.
type Optimization struct {
	Order []int
}
