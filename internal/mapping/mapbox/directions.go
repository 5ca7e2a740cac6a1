package mapbox

import (
	"context"
	"net/url"
	"strconv"

	"github.com/milequest/mapservice/internal/mapping"
	"github.com/milequest/mapservice/pkg/geo"
	"github.com/milequest/mapservice/pkg/maperr"
)

// GetDirections computes routes through req.Coordinates in order using the
// directions v5 API.
//
// Step geometries are always requested because per-leg shapes are stitched
// together from them; req.Steps does not change the request.
func (c *Client) GetDirections(ctx context.Context, req mapping.DirectionsRequest) (*mapping.Directions, error) {
	if len(req.Coordinates) < 2 {
		return nil, maperr.New(maperr.CodeInvalidWaypoints, maperr.ErrInvalidWaypoints.Message)
	}
	if err := validatePositions(req.Coordinates); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("alternatives", strconv.FormatBool(req.Alternatives))
	query.Set("geometries", "geojson")
	query.Set("overview", "full")
	query.Set("steps", "true")
	if req.Language != "" {
		query.Set("language", req.Language)
	}

	c.logger.Debug().
		Str("profile", string(req.Profile)).
		Int("coordinate_count", len(req.Coordinates)).
		Bool("alternatives", req.Alternatives).
		Msg("requesting directions from mapbox")

	path := "/directions/v5/mapbox/" + string(req.Profile) + "/" + formatCoordinates(req.Coordinates)

	var resp directionsResponse
	if err := c.get(ctx, "get directions", path, query, &resp); err != nil {
		return nil, err
	}
	if err := checkResponseCode(resp.Code, resp.Message, "get directions"); err != nil {
		return nil, err
	}

	result := toDirections(&resp)

	c.logger.Debug().
		Int("route_count", len(result.Routes)).
		Msg("received directions from mapbox")

	return result, nil
}

func toDirections(resp *directionsResponse) *mapping.Directions {
	routes := make([]mapping.ProviderRoute, 0, len(resp.Routes))
	for i := range resp.Routes {
		routes = append(routes, toProviderRoute(&resp.Routes[i]))
	}
	return &mapping.Directions{Routes: routes}
}

func toProviderRoute(r *directionsRoute) mapping.ProviderRoute {
	route := mapping.ProviderRoute{
		Distance: r.Distance,
		Duration: r.Duration,
		Geometry: toPositions(r.Geometry.Coordinates),
		Legs:     make([]mapping.ProviderLeg, 0, len(r.Legs)),
	}

	for i := range r.Legs {
		leg := &r.Legs[i]
		route.Legs = append(route.Legs, mapping.ProviderLeg{
			Distance: leg.Distance,
			Duration: leg.Duration,
			Summary:  leg.Summary,
			Geometry: legGeometry(leg.Steps),
		})
	}
	return route
}

// legGeometry concatenates step shapes. Consecutive duplicate points, such as
// the one shared by adjacent steps or a zero-length arrival step, are dropped.
func legGeometry(steps []directionsStep) []geo.Position {
	var positions []geo.Position
	for i := range steps {
		for _, p := range toPositions(steps[i].Geometry.Coordinates) {
			if len(positions) > 0 && positions[len(positions)-1] == p {
				continue
			}
			positions = append(positions, p)
		}
	}
	return positions
}
