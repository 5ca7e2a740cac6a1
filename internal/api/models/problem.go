package models

import (
	"encoding/json"
	"net/http"

	"github.com/milequest/mapservice/pkg/maperr"
)

// Problem represents an RFC7807 error response.
// This is used for all API error responses with Content-Type: application/problem+json.
type Problem struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence of the problem.
	Status int `json:"status"`

	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`

	// TraceID is the request trace identifier for debugging.
	TraceID string `json:"traceId"`

	// Code is the mapping error code, e.g. NO_ROUTE_FOUND.
	Code string `json:"code,omitempty"`

	// Errors contains structured field validation errors.
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ProblemType constants for standard error types.
const (
	ProblemTypeValidation      = "https://api.milequest.dev/problems/validation-error"
	ProblemTypeNotFound        = "https://api.milequest.dev/problems/not-found"
	ProblemTypeTooManyRequests = "https://api.milequest.dev/problems/too-many-requests"
	ProblemTypeUnsupportedType = "https://api.milequest.dev/problems/unsupported-media-type"
	ProblemTypeInternal        = "https://api.milequest.dev/problems/internal-error"
	ProblemTypeBadGateway      = "https://api.milequest.dev/problems/bad-gateway"
	ProblemTypeUnavailable     = "https://api.milequest.dev/problems/service-unavailable"
	ProblemTypeGatewayTimeout  = "https://api.milequest.dev/problems/gateway-timeout"
)

// NewProblem creates a new Problem with the given parameters.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		TraceID: traceID,
	}
}

// WithDetail adds a detail message to the Problem.
func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	return p
}

// WithInstance adds the request instance URI to the Problem.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithErrors adds field errors to the Problem.
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// Write writes the Problem as JSON to the ResponseWriter.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewBadRequest creates a 400 Bad Request problem.
func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	p := NewProblem(ProblemTypeValidation, "Validation error", http.StatusBadRequest, traceID)
	p.Detail = detail
	p.Errors = errors
	return p
}

// NewNotFound creates a 404 Not Found problem.
func NewNotFound(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeNotFound, "Not found", http.StatusNotFound, traceID).WithDetail(detail)
}

// NewTooManyRequests creates a 429 Too Many Requests problem.
func NewTooManyRequests(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests, traceID).WithDetail(detail)
}

// NewUnsupportedMediaType creates a 415 Unsupported Media Type problem.
func NewUnsupportedMediaType(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUnsupportedType, "Unsupported media type", http.StatusUnsupportedMediaType, traceID).WithDetail(detail)
}

// NewInternalError creates a 500 Internal Server Error problem.
func NewInternalError(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeInternal, "Internal server error", http.StatusInternalServerError, traceID).WithDetail(detail)
}

// NewBadGateway creates a 502 Bad Gateway problem.
func NewBadGateway(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeBadGateway, "Bad gateway", http.StatusBadGateway, traceID).WithDetail(detail)
}

// NewServiceUnavailable creates a 503 Service Unavailable problem.
func NewServiceUnavailable(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable, traceID).WithDetail(detail)
}

// NewGatewayTimeout creates a 504 Gateway Timeout problem.
func NewGatewayTimeout(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeGatewayTimeout, "Gateway timeout", http.StatusGatewayTimeout, traceID).WithDetail(detail)
}

// NewMappingProblem converts a mapping error into a Problem. Only the error's
// public message is exposed; the cause stays in the logs.
func NewMappingProblem(traceID string, err error) *Problem {
	mapped := maperr.FromTransport(err, "request")

	var p *Problem
	switch mapped.Code {
	case maperr.CodeInvalidWaypoints, maperr.CodeTooManyWaypoints, maperr.CodeInvalidCoordinates:
		p = NewBadRequest(traceID, mapped.Message, nil)
	case maperr.CodeAddressNotFound, maperr.CodeNoRouteFound:
		p = NewNotFound(traceID, mapped.Message)
	case maperr.CodeRateLimitExceeded:
		p = NewTooManyRequests(traceID, mapped.Message)
	case maperr.CodeInvalidToken:
		p = NewBadGateway(traceID, mapped.Message)
	case maperr.CodeServiceUnavailable, maperr.CodeNetworkError:
		p = NewServiceUnavailable(traceID, mapped.Message)
	case maperr.CodeTimeout:
		p = NewGatewayTimeout(traceID, mapped.Message)
	default:
		p = NewInternalError(traceID, mapped.Message)
	}

	p.Code = string(mapped.Code)
	return p
}
