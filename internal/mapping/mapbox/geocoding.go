package mapbox

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/milequest/mapservice/internal/mapping"
	"github.com/milequest/mapservice/pkg/geo"
	"github.com/milequest/mapservice/pkg/maperr"
)

const geocodingPath = "/geocoding/v5/mapbox.places/"

// ForwardGeocode resolves free text to places using the geocoding v5 API.
func (c *Client) ForwardGeocode(ctx context.Context, req mapping.GeocodeRequest) ([]mapping.Place, error) {
	query := url.Values{}
	if req.Limit > 0 {
		query.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Proximity != nil {
		if !req.Proximity.Valid() {
			return nil, maperr.New(maperr.CodeInvalidCoordinates, "proximity position is out of range")
		}
		query.Set("proximity", formatLngLat(*req.Proximity))
	}
	if req.Country != "" {
		query.Set("country", strings.ToLower(req.Country))
	}
	if len(req.Types) > 0 {
		query.Set("types", strings.Join(req.Types, ","))
	}
	if req.Language != "" {
		query.Set("language", req.Language)
	}

	c.logger.Debug().
		Int("query_length", len(req.Query)).
		Int("limit", req.Limit).
		Msg("requesting forward geocode from mapbox")

	var resp geocodingResponse
	if err := c.get(ctx, "forward geocode", geocodingPath+url.PathEscape(req.Query)+".json", query, &resp); err != nil {
		return nil, err
	}

	places := toPlaces(resp.Features)

	c.logger.Debug().
		Int("result_count", len(places)).
		Msg("received forward geocode from mapbox")

	return places, nil
}

// ReverseGeocode resolves a position to places using the geocoding v5 API.
func (c *Client) ReverseGeocode(ctx context.Context, req mapping.ReverseGeocodeRequest) ([]mapping.Place, error) {
	if !req.Position.Valid() {
		return nil, maperr.New(maperr.CodeInvalidCoordinates, "position is out of range")
	}

	query := url.Values{}
	if req.Limit > 0 {
		query.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Language != "" {
		query.Set("language", req.Language)
	}

	c.logger.Debug().
		Float64("lat", req.Position.Lat).
		Float64("lng", req.Position.Lng).
		Msg("requesting reverse geocode from mapbox")

	var resp geocodingResponse
	if err := c.get(ctx, "reverse geocode", geocodingPath+formatLngLat(req.Position)+".json", query, &resp); err != nil {
		return nil, err
	}

	return toPlaces(resp.Features), nil
}

// toPlaces converts features, keeping the provider ordering. Features without
// a usable center are dropped.
func toPlaces(features []geocodingFeature) []mapping.Place {
	places := make([]mapping.Place, 0, len(features))
	for i := range features {
		f := &features[i]
		if len(f.Center) < 2 {
			continue
		}

		placeType := ""
		if len(f.PlaceType) > 0 {
			placeType = f.PlaceType[0]
		}

		places = append(places, mapping.Place{
			ID:        f.ID,
			Address:   f.PlaceName,
			Type:      placeType,
			Position:  geo.Position{Lat: f.Center[1], Lng: f.Center[0]},
			Relevance: f.Relevance,
		})
	}
	return places
}
