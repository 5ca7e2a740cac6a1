package mapping

import (
	"fmt"

	"github.com/milequest/mapservice/pkg/geo"
	"github.com/milequest/mapservice/pkg/maperr"
)

// assembleRoute builds a Route from the first provider route. Legs pair up
// with consecutive waypoints; a leg without geometry falls back to the
// straight line between its two waypoints.
func (s *Service) assembleRoute(waypoints []Waypoint, pr ProviderRoute) (*Route, error) {
	if len(pr.Legs) != len(waypoints)-1 {
		return nil, maperr.New(maperr.CodeUnknown,
			fmt.Sprintf("provider returned %d legs for %d waypoints", len(pr.Legs), len(waypoints)))
	}

	bounds, err := geo.GetBounds(positionsOf(waypoints))
	if err != nil {
		return nil, err
	}
	for _, p := range pr.Geometry {
		bounds = bounds.Extend(p)
	}

	segments := make([]RouteSegment, len(pr.Legs))
	for i, leg := range pr.Legs {
		coords := leg.Geometry
		if len(coords) == 0 {
			coords = []geo.Position{waypoints[i].Position, waypoints[i+1].Position}
		}
		for _, p := range coords {
			bounds = bounds.Extend(p)
		}

		segments[i] = RouteSegment{
			StartWaypoint: waypoints[i],
			EndWaypoint:   waypoints[i+1],
			Distance:      leg.Distance,
			Duration:      leg.Duration,
			Polyline:      geo.EncodePolyline(coords),
			Coordinates:   append([]geo.Position(nil), coords...),
		}
	}

	return &Route{
		ID:              s.newID(),
		Waypoints:       append([]Waypoint(nil), waypoints...),
		Segments:        segments,
		TotalDistance:   pr.Distance,
		TotalDuration:   pr.Duration,
		Bounds:          bounds,
		EncodedPolyline: geo.EncodePolyline(pr.Geometry),
	}, nil
}
