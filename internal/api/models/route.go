package models

import "github.com/milequest/mapservice/internal/mapping"

// Waypoint is a stop in a route request or response.
type Waypoint struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Address  string   `json:"address,omitempty"`
	Order    int      `json:"order"`
	IsLocked bool     `json:"isLocked,omitempty"`
}

// RouteComputeRequest is the body of POST /v1/routes:compute.
type RouteComputeRequest struct {
	Waypoints    []Waypoint `json:"waypoints"`
	Profile      string     `json:"profile,omitempty"`
	Alternatives bool       `json:"alternatives,omitempty"`
	Steps        bool       `json:"steps,omitempty"`
}

// OptimizeRequest is the body of POST /v1/waypoints:optimize.
type OptimizeRequest struct {
	Waypoints []Waypoint `json:"waypoints"`
}

// OptimizeResponse lists the waypoints in optimized order.
type OptimizeResponse struct {
	Waypoints []Waypoint `json:"waypoints"`
}

// RouteSegment is the part of a route between two consecutive waypoints.
type RouteSegment struct {
	StartWaypointID string     `json:"startWaypointId"`
	EndWaypointID   string     `json:"endWaypointId"`
	DistanceMeters  float64    `json:"distanceMeters"`
	DurationSeconds float64    `json:"durationSeconds"`
	Polyline        string     `json:"polyline"`
	Coordinates     []Position `json:"coordinates"`
}

// Route is returned by POST /v1/routes:compute.
type Route struct {
	ID                   string         `json:"id"`
	Waypoints            []Waypoint     `json:"waypoints"`
	Segments             []RouteSegment `json:"segments"`
	TotalDistanceMeters  float64        `json:"totalDistanceMeters"`
	TotalDurationSeconds float64        `json:"totalDurationSeconds"`
	Bounds               Bounds         `json:"bounds"`
	EncodedPolyline      string         `json:"encodedPolyline"`
}

// ToWaypoints converts request waypoints. A missing order defaults to the
// 1-based list position.
func ToWaypoints(in []Waypoint) []mapping.Waypoint {
	out := make([]mapping.Waypoint, len(in))
	for i, w := range in {
		order := w.Order
		if order == 0 {
			order = i + 1
		}
		out[i] = mapping.Waypoint{
			ID:       w.ID,
			Position: w.Position.ToGeo(),
			Address:  w.Address,
			Order:    order,
			IsLocked: w.IsLocked,
		}
	}
	return out
}

// FromWaypoints converts service waypoints.
func FromWaypoints(in []mapping.Waypoint) []Waypoint {
	out := make([]Waypoint, len(in))
	for i, w := range in {
		out[i] = Waypoint{
			ID:       w.ID,
			Position: FromGeoPosition(w.Position),
			Address:  w.Address,
			Order:    w.Order,
			IsLocked: w.IsLocked,
		}
	}
	return out
}

// NewRoute converts a computed route.
func NewRoute(r *mapping.Route) Route {
	segments := make([]RouteSegment, len(r.Segments))
	for i, s := range r.Segments {
		segments[i] = RouteSegment{
			StartWaypointID: s.StartWaypoint.ID,
			EndWaypointID:   s.EndWaypoint.ID,
			DistanceMeters:  s.Distance,
			DurationSeconds: s.Duration,
			Polyline:        s.Polyline,
			Coordinates:     FromGeoPositions(s.Coordinates),
		}
	}

	return Route{
		ID:                   r.ID,
		Waypoints:            FromWaypoints(r.Waypoints),
		Segments:             segments,
		TotalDistanceMeters:  r.TotalDistance,
		TotalDurationSeconds: r.TotalDuration,
		Bounds: Bounds{
			Southwest: FromGeoPosition(r.Bounds.Southwest),
			Northeast: FromGeoPosition(r.Bounds.Northeast),
		},
		EncodedPolyline: r.EncodedPolyline,
	}
}
