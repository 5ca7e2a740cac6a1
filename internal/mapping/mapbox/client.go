// Package mapbox implements mapping.Provider on top of the Mapbox geocoding,
// directions and optimization APIs.
package mapbox

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/milequest/mapservice/internal/provider/resilience"
	"github.com/milequest/mapservice/pkg/geo"
	"github.com/milequest/mapservice/pkg/maperr"
)

const (
	// ProviderName identifies this provider in logs, metrics and the registry.
	ProviderName = "mapbox"

	// DefaultBaseURL is the Mapbox API base URL.
	DefaultBaseURL = "https://api.mapbox.com"

	// DefaultTimeout bounds every provider call.
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 8 << 20
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Mapbox client.
type ClientConfig struct {
	// AccessToken is the Mapbox access token (required).
	AccessToken string

	// BaseURL is the API base URL (optional, defaults to the Mapbox API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with a circuit breaker.
	HTTPClient HTTPDoer

	// Timeout bounds each call including retries (optional, defaults to 10s).
	Timeout time.Duration

	// MaxRetries enables retries in the default resilient client (default 0).
	MaxRetries uint64

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Mapbox API client. It is safe for concurrent use.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  HTTPDoer
	timeout     time.Duration
	logger      zerolog.Logger
	metrics     *providerMetrics
}

// NewClient creates a Mapbox client. An empty access token fails with
// INVALID_TOKEN.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, maperr.New(maperr.CodeInvalidToken, "mapbox access token is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		clientCfg.MaxRetries = cfg.MaxRetries
		clientCfg.Registry = cfg.Registry
		clientCfg.Logger = cfg.Logger
		httpClient = resilience.NewClient(clientCfg)
	}

	metrics, err := newProviderMetrics()
	if err != nil {
		return nil, err
	}

	return &Client{
		accessToken: cfg.AccessToken,
		baseURL:     baseURL,
		httpClient:  httpClient,
		timeout:     timeout,
		logger:      cfg.Logger,
		metrics:     metrics,
	}, nil
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// get performs a GET against path and decodes a 200 response into out.
// Every failure is returned as a *maperr.Error.
func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) (err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		c.metrics.record(op, time.Since(start), err)
	}()

	if query == nil {
		query = url.Values{}
	}
	query.Set("access_token", c.accessToken)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), http.NoBody)
	if err != nil {
		return maperr.Wrap(maperr.CodeUnknown, op+" failed", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return mapTransportError(err, op)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return maperr.FromTransport(err, op)
	}

	if resp.StatusCode != http.StatusOK {
		return handleErrorResponse(resp.StatusCode, body, op)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return maperr.Wrap(maperr.CodeUnknown, op+" returned an unreadable response", err)
	}
	return nil
}

// mapTransportError maps errors from the HTTP client. An open circuit means
// the provider is known to be failing.
func mapTransportError(err error, op string) *maperr.Error {
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return maperr.Wrap(maperr.CodeServiceUnavailable, maperr.ErrServiceUnavailable.Message, err)
	}
	return maperr.FromTransport(err, op)
}

// handleErrorResponse maps Mapbox error responses to domain errors.
func handleErrorResponse(statusCode int, body []byte, op string) error {
	var apiErr errorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		apiErr.Message = http.StatusText(statusCode)
	}

	if isNoRouteCode(apiErr.Code) {
		return maperr.Wrap(maperr.CodeNoRouteFound, maperr.ErrNoRouteFound.Message,
			errors.New(apiErr.Code+": "+apiErr.Message))
	}
	return maperr.FromStatus(statusCode, apiErr.Message, op)
}

func isNoRouteCode(code string) bool {
	switch code {
	case codeNoRoute, codeNoSegment, codeNoTrips:
		return true
	default:
		return false
	}
}

// checkResponseCode maps the "code" field of a 200 directions or
// optimization response.
func checkResponseCode(code, message, op string) error {
	switch {
	case code == "" || code == codeOk:
		return nil
	case isNoRouteCode(code):
		return maperr.Wrap(maperr.CodeNoRouteFound, maperr.ErrNoRouteFound.Message, errors.New(code+": "+message))
	default:
		return maperr.Wrap(maperr.CodeUnknown, op+" failed", errors.New(code+": "+message))
	}
}

// formatCoordinates renders positions as Mapbox "lng,lat;lng,lat".
func formatCoordinates(positions []geo.Position) string {
	parts := make([]string, len(positions))
	for i, p := range positions {
		parts[i] = formatLngLat(p)
	}
	return strings.Join(parts, ";")
}

func formatLngLat(p geo.Position) string {
	return strconv.FormatFloat(p.Lng, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
}

// toPositions converts GeoJSON [lng, lat] pairs. Malformed pairs are skipped.
func toPositions(coords [][]float64) []geo.Position {
	positions := make([]geo.Position, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		positions = append(positions, geo.Position{Lat: c[1], Lng: c[0]})
	}
	return positions
}

func validatePositions(positions []geo.Position) error {
	for _, p := range positions {
		if !p.Valid() {
			return maperr.New(maperr.CodeInvalidCoordinates, maperr.ErrInvalidCoordinates.Message)
		}
	}
	return nil
}
