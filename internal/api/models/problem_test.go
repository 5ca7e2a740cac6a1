package models_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milequest/mapservice/internal/api/models"
	"github.com/milequest/mapservice/pkg/maperr"
)

func TestProblem_NewProblem(t *testing.T) {
	p := models.NewProblem(
		models.ProblemTypeValidation,
		"Validation error",
		http.StatusBadRequest,
		"req_test123",
	)

	assert.Equal(t, models.ProblemTypeValidation, p.Type)
	assert.Equal(t, "Validation error", p.Title)
	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Equal(t, "req_test123", p.TraceID)
	assert.Empty(t, p.Detail)
	assert.Empty(t, p.Instance)
	assert.Nil(t, p.Errors)
}

func TestProblem_Builders(t *testing.T) {
	p := models.NewProblem(models.ProblemTypeValidation, "Validation error", http.StatusBadRequest, "req_test123").
		WithDetail("waypoints[1].position.lat must be between -90 and 90").
		WithInstance("/v1/routes:compute").
		WithErrors([]models.FieldError{{Field: "waypoints[1].position.lat", Message: "out of range", Code: "OUT_OF_RANGE"}})

	assert.Equal(t, "waypoints[1].position.lat must be between -90 and 90", p.Detail)
	assert.Equal(t, "/v1/routes:compute", p.Instance)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "OUT_OF_RANGE", p.Errors[0].Code)
}

func TestProblem_Write(t *testing.T) {
	p := models.NewBadRequest("req_test123", "invalid input", []models.FieldError{
		{Field: "q", Message: "required"},
	})
	p.Instance = "/v1/geocode/search"

	w := httptest.NewRecorder()
	p.Write(w)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "req_test123", w.Header().Get("X-Request-Id"))

	var result models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	assert.Equal(t, models.ProblemTypeValidation, result.Type)
	assert.Equal(t, "invalid input", result.Detail)
	assert.Equal(t, "/v1/geocode/search", result.Instance)
	assert.Equal(t, "req_test123", result.TraceID)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "q", result.Errors[0].Field)
}

func TestNewMappingProblem_StatusMapping(t *testing.T) {
	tests := []struct {
		code   maperr.Code
		status int
	}{
		{maperr.CodeInvalidWaypoints, http.StatusBadRequest},
		{maperr.CodeTooManyWaypoints, http.StatusBadRequest},
		{maperr.CodeInvalidCoordinates, http.StatusBadRequest},
		{maperr.CodeAddressNotFound, http.StatusNotFound},
		{maperr.CodeNoRouteFound, http.StatusNotFound},
		{maperr.CodeRateLimitExceeded, http.StatusTooManyRequests},
		{maperr.CodeInvalidToken, http.StatusBadGateway},
		{maperr.CodeServiceUnavailable, http.StatusServiceUnavailable},
		{maperr.CodeNetworkError, http.StatusServiceUnavailable},
		{maperr.CodeTimeout, http.StatusGatewayTimeout},
		{maperr.CodeUnknown, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			p := models.NewMappingProblem("req_1", maperr.New(tt.code, "public message"))

			assert.Equal(t, tt.status, p.Status)
			assert.Equal(t, string(tt.code), p.Code)
			assert.Equal(t, "public message", p.Detail)
		})
	}
}

func TestNewMappingProblem_HidesCause(t *testing.T) {
	err := maperr.Wrap(maperr.CodeUnknown, "calculate route failed", errors.New("secret upstream body"))

	p := models.NewMappingProblem("req_1", err)

	assert.Equal(t, "calculate route failed", p.Detail)
	body, jerr := json.Marshal(p)
	require.NoError(t, jerr)
	assert.NotContains(t, string(body), "secret upstream body")
}

func TestNewMappingProblem_ForeignError(t *testing.T) {
	p := models.NewMappingProblem("req_1", errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, p.Status)
	assert.Equal(t, string(maperr.CodeUnknown), p.Code)
	assert.NotContains(t, p.Detail, "boom")
}
