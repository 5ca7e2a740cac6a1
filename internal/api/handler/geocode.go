package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/milequest/mapservice/internal/api/models"
	"github.com/milequest/mapservice/internal/api/response"
	"github.com/milequest/mapservice/internal/mapping"
	"github.com/milequest/mapservice/pkg/geo"
)

// maxSearchLimit is the largest result count Mapbox geocoding accepts.
const maxSearchLimit = 10

// GeocodeHandler handles address search and reverse geocoding.
type GeocodeHandler struct {
	svc MapService
}

// NewGeocodeHandler creates a new GeocodeHandler.
func NewGeocodeHandler(svc MapService) *GeocodeHandler {
	return &GeocodeHandler{svc: svc}
}

// Search handles GET /v1/geocode/search.
func (h *GeocodeHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := strings.TrimSpace(q.Get("q"))
	if query == "" {
		response.BadRequest(w, r, "query parameter q is required", []models.FieldError{
			{Field: "q", Message: "required", Code: "REQUIRED"},
		})
		return
	}

	opts, fieldErrs := parseSearchOptions(q.Get("limit"), q.Get("proximity"), q.Get("country"), q.Get("types"))
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid search parameters", fieldErrs)
		return
	}

	results, err := h.svc.SearchAddress(r.Context(), query, opts)
	if err != nil {
		response.MappingError(w, r, err)
		return
	}

	response.OK(w, r, models.NewSearchResponse(results))
}

// Reverse handles GET /v1/geocode/reverse.
func (h *GeocodeHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var fieldErrs []models.FieldError
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "lat", Message: "must be a number", Code: "INVALID"})
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "lng", Message: "must be a number", Code: "INVALID"})
	}
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "lat and lng are required", fieldErrs)
		return
	}

	pos := geo.Position{Lat: lat, Lng: lng}
	address, err := h.svc.ReverseGeocode(r.Context(), pos)
	if err != nil {
		response.MappingError(w, r, err)
		return
	}

	response.OK(w, r, models.ReverseGeocodeResponse{
		Address:  address,
		Position: models.FromGeoPosition(pos),
	})
}

func parseSearchOptions(limit, proximity, country, types string) (*mapping.SearchOptions, []models.FieldError) {
	opts := &mapping.SearchOptions{}
	var fieldErrs []models.FieldError

	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 || n > maxSearchLimit {
			fieldErrs = append(fieldErrs, models.FieldError{
				Field: "limit", Message: "must be an integer between 1 and " + strconv.Itoa(maxSearchLimit), Code: "OUT_OF_RANGE",
			})
		} else {
			opts.Limit = n
		}
	}

	if proximity != "" {
		pos, ok := parseLatLng(proximity)
		if !ok {
			fieldErrs = append(fieldErrs, models.FieldError{Field: "proximity", Message: "must be formatted as lat,lng", Code: "INVALID"})
		} else {
			opts.Proximity = &pos
		}
	}

	if country != "" {
		if len(country) != 2 {
			fieldErrs = append(fieldErrs, models.FieldError{Field: "country", Message: "must be an ISO 3166-1 alpha-2 code", Code: "INVALID"})
		} else {
			opts.Country = country
		}
	}

	for _, t := range strings.Split(types, ",") {
		if t = strings.TrimSpace(t); t != "" {
			opts.Types = append(opts.Types, t)
		}
	}

	return opts, fieldErrs
}

// parseLatLng parses "lat,lng". Range checks are left to the service.
func parseLatLng(s string) (geo.Position, bool) {
	latStr, lngStr, found := strings.Cut(s, ",")
	if !found {
		return geo.Position{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return geo.Position{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return geo.Position{}, false
	}
	return geo.Position{Lat: lat, Lng: lng}, true
}
