package handler

import (
	"net/http"

	"github.com/milequest/mapservice/internal/api/models"
	"github.com/milequest/mapservice/internal/api/response"
	"github.com/milequest/mapservice/internal/mapping"
)

// RouteHandler handles route calculation and waypoint optimization.
type RouteHandler struct {
	svc MapService
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(svc MapService) *RouteHandler {
	return &RouteHandler{svc: svc}
}

// ComputeRoute handles POST /v1/routes:compute.
func (h *RouteHandler) ComputeRoute(w http.ResponseWriter, r *http.Request) {
	var input models.RouteComputeRequest
	if !decodeJSON(w, r, &input) {
		return
	}

	opts := &mapping.RouteOptions{
		Profile:      mapping.Profile(input.Profile),
		Alternatives: input.Alternatives,
		Steps:        input.Steps,
	}
	if opts.Profile != "" && !opts.Profile.Valid() {
		response.BadRequest(w, r, "unsupported profile", []models.FieldError{
			{Field: "profile", Message: "must be one of walking, cycling, driving", Code: "INVALID"},
		})
		return
	}

	route, err := h.svc.CalculateRoute(r.Context(), models.ToWaypoints(input.Waypoints), opts)
	if err != nil {
		response.MappingError(w, r, err)
		return
	}

	response.OK(w, r, models.NewRoute(route))
}

// OptimizeWaypoints handles POST /v1/waypoints:optimize.
func (h *RouteHandler) OptimizeWaypoints(w http.ResponseWriter, r *http.Request) {
	var input models.OptimizeRequest
	if !decodeJSON(w, r, &input) {
		return
	}

	optimized, err := h.svc.OptimizeWaypoints(r.Context(), models.ToWaypoints(input.Waypoints))
	if err != nil {
		response.MappingError(w, r, err)
		return
	}

	response.OK(w, r, models.OptimizeResponse{Waypoints: models.FromWaypoints(optimized)})
}
