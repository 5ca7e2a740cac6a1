// Package handler provides HTTP handlers for the map service API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/milequest/mapservice/internal/api/response"
	"github.com/milequest/mapservice/internal/mapping"
	"github.com/milequest/mapservice/pkg/geo"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// MapService is the mapping facade the handlers depend on.
type MapService interface {
	SearchAddress(ctx context.Context, query string, opts *mapping.SearchOptions) ([]mapping.SearchResult, error)
	ReverseGeocode(ctx context.Context, pos geo.Position) (string, error)
	CalculateRoute(ctx context.Context, waypoints []mapping.Waypoint, opts *mapping.RouteOptions) (*mapping.Route, error)
	OptimizeWaypoints(ctx context.Context, waypoints []mapping.Waypoint) ([]mapping.Waypoint, error)
}

// decodeJSON reads a size-limited JSON body into dst, writing a 400 problem
// and returning false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.BadRequest(w, r, "request body too large", nil)
			return false
		}
		response.BadRequest(w, r, "invalid JSON body", nil)
		return false
	}
	return true
}
