package mapbox

import (
	"context"
	"net/url"
	"strconv"

	"github.com/milequest/mapservice/internal/mapping"
	"github.com/milequest/mapservice/pkg/maperr"
)

// MaxOptimizationCoordinates is the optimization v1 coordinate limit.
const MaxOptimizationCoordinates = 12

// GetOptimization computes a visiting order using the optimization v1 API.
// A round trip is requested unless both endpoints are pinned, which is the
// only combination the API accepts for one-way trips.
func (c *Client) GetOptimization(ctx context.Context, req mapping.OptimizationRequest) (*mapping.Optimization, error) {
	if len(req.Coordinates) < 2 {
		return nil, maperr.New(maperr.CodeInvalidWaypoints, maperr.ErrInvalidWaypoints.Message)
	}
	if len(req.Coordinates) > MaxOptimizationCoordinates {
		return nil, maperr.New(maperr.CodeTooManyWaypoints, "optimization supports at most 12 waypoints")
	}
	if err := validatePositions(req.Coordinates); err != nil {
		return nil, err
	}

	source := req.Source
	if source == "" {
		source = mapping.EndpointAny
	}
	destination := req.Destination
	if destination == "" {
		destination = mapping.EndpointAny
	}
	roundtrip := !(source == mapping.EndpointFirst && destination == mapping.EndpointLast)

	query := url.Values{}
	query.Set("source", string(source))
	query.Set("destination", string(destination))
	query.Set("roundtrip", strconv.FormatBool(roundtrip))
	query.Set("geometries", "geojson")

	c.logger.Debug().
		Str("profile", string(req.Profile)).
		Int("coordinate_count", len(req.Coordinates)).
		Str("source", string(source)).
		Str("destination", string(destination)).
		Msg("requesting optimization from mapbox")

	path := "/optimized-trips/v1/mapbox/" + string(req.Profile) + "/" + formatCoordinates(req.Coordinates)

	var resp optimizationResponse
	if err := c.get(ctx, "optimize waypoints", path, query, &resp); err != nil {
		return nil, err
	}
	if err := checkResponseCode(resp.Code, resp.Message, "optimize waypoints"); err != nil {
		return nil, err
	}
	if len(resp.Trips) == 0 {
		return nil, maperr.New(maperr.CodeNoRouteFound, maperr.ErrNoRouteFound.Message)
	}

	return &mapping.Optimization{Order: toOrder(resp.Waypoints)}, nil
}

// toOrder inverts waypoint_index, the trip position of each input coordinate,
// into the list of input indices in visiting order. Out-of-range positions
// leave a -1 that the caller rejects as an invalid permutation.
func toOrder(waypoints []optimizationWaypoint) []int {
	order := make([]int, len(waypoints))
	for i := range order {
		order[i] = -1
	}
	for input, wp := range waypoints {
		if wp.WaypointIndex >= 0 && wp.WaypointIndex < len(order) {
			order[wp.WaypointIndex] = input
		}
	}
	return order
}
