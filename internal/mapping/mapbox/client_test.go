package mapbox

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milequest/mapservice/internal/mapping"
	"github.com/milequest/mapservice/internal/provider/resilience"
	"github.com/milequest/mapservice/pkg/geo"
	"github.com/milequest/mapservice/pkg/maperr"
)

const testToken = "pk.test-token"

// mockHTTPClient wraps an httptest client without a circuit breaker.
type mockHTTPClient struct {
	client *http.Client
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.client.Do(req)
}

// mockFailingClient fails every request with err.
type mockFailingClient struct {
	err error
}

func (m *mockFailingClient) Do(_ *http.Request) (*http.Response, error) {
	return nil, m.err
}

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	body, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return body
}

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{
		AccessToken: testToken,
		BaseURL:     server.URL,
		HTTPClient:  &mockHTTPClient{client: server.Client()},
		Logger:      zerolog.Nop(),
	})
	require.NoError(t, err)
	return client
}

func jsonHandler(status int, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}
}

var routeCoordinates = []geo.Position{
	{Lat: 40.7128, Lng: -74.0060},
	{Lat: 40.7300, Lng: -74.0020},
	{Lat: 40.7580, Lng: -73.9855},
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := NewClient(ClientConfig{AccessToken: ""})
	assert.ErrorIs(t, err, maperr.ErrInvalidToken)
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(ClientConfig{AccessToken: testToken, BaseURL: "https://example.test/"})
	require.NoError(t, err)

	assert.Equal(t, "https://example.test", client.baseURL)
	assert.Equal(t, DefaultTimeout, client.timeout)
	assert.IsType(t, &resilience.Client{}, client.httpClient)
	assert.Equal(t, ProviderName, client.Name())
}

func TestNewClient_NonPositiveTimeoutUsesDefault(t *testing.T) {
	for _, timeout := range []time.Duration{0, -time.Second} {
		client, err := NewClient(ClientConfig{AccessToken: testToken, Timeout: timeout})
		require.NoError(t, err)
		assert.Equal(t, DefaultTimeout, client.timeout, "timeout %s", timeout)
	}
}

func TestClient_NegativeTimeoutStillServes(t *testing.T) {
	body := loadFixture(t, "geocoding_reverse.json")
	server := httptest.NewServer(jsonHandler(http.StatusOK, body))
	defer server.Close()

	client, err := NewClient(ClientConfig{
		AccessToken: testToken,
		BaseURL:     server.URL,
		Timeout:     -time.Second,
		Logger:      zerolog.Nop(),
	})
	require.NoError(t, err)

	places, err := client.ReverseGeocode(context.Background(), mapping.ReverseGeocodeRequest{Position: geo.Position{Lat: 40.748441, Lng: -73.985664}})
	require.NoError(t, err)
	require.Len(t, places, 1)
}

func TestClient_ForwardGeocode_Success(t *testing.T) {
	body := loadFixture(t, "geocoding_forward.json")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/geocoding/v5/mapbox.places/350%205th%20Ave.json", r.URL.EscapedPath())

		q := r.URL.Query()
		assert.Equal(t, testToken, q.Get("access_token"))
		assert.Equal(t, "3", q.Get("limit"))
		assert.Equal(t, "-73.98,40.75", q.Get("proximity"))
		assert.Equal(t, "us", q.Get("country"))
		assert.Equal(t, "address,poi", q.Get("types"))
		assert.Equal(t, "en", q.Get("language"))

		jsonHandler(http.StatusOK, body)(w, r)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	places, err := client.ForwardGeocode(context.Background(), mapping.GeocodeRequest{
		Query:     "350 5th Ave",
		Limit:     3,
		Proximity: &geo.Position{Lat: 40.75, Lng: -73.98},
		Country:   "US",
		Types:     []string{"address", "poi"},
		Language:  "en",
	})
	require.NoError(t, err)
	require.Len(t, places, 2, "features without a center are dropped")

	assert.Equal(t, "address.4356035406756260", places[0].ID)
	assert.Equal(t, "address", places[0].Type)
	assert.Equal(t, "350 5th Avenue, New York, New York 10118, United States", places[0].Address)
	assert.Equal(t, geo.Position{Lat: 40.748441, Lng: -73.985664}, places[0].Position)
	assert.InDelta(t, 0.99, places[0].Relevance, 1e-9)

	assert.Equal(t, "poi", places[1].Type)
}

func TestClient_ForwardGeocode_EscapesQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocoding/v5/mapbox.places/Main%20St%20%2F%205th.json", r.URL.EscapedPath())
		jsonHandler(http.StatusOK, []byte(`{"type":"FeatureCollection","features":[]}`))(w, r)
	}))
	defer server.Close()

	places, err := newTestClient(t, server).ForwardGeocode(context.Background(), mapping.GeocodeRequest{Query: "Main St / 5th"})
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestClient_ReverseGeocode_Success(t *testing.T) {
	body := loadFixture(t, "geocoding_reverse.json")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocoding/v5/mapbox.places/-73.985664,40.748441.json", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		jsonHandler(http.StatusOK, body)(w, r)
	}))
	defer server.Close()

	places, err := newTestClient(t, server).ReverseGeocode(context.Background(), mapping.ReverseGeocodeRequest{
		Position: geo.Position{Lat: 40.748441, Lng: -73.985664},
		Limit:    1,
	})
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "350 5th Avenue, New York, New York 10118, United States", places[0].Address)
}

func TestClient_ReverseGeocode_InvalidPosition(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := newTestClient(t, server).ReverseGeocode(context.Background(), mapping.ReverseGeocodeRequest{
		Position: geo.Position{Lat: 0, Lng: 200},
	})
	assert.ErrorIs(t, err, maperr.ErrInvalidCoordinates)
	assert.Zero(t, calls.Load())
}

func TestClient_GetDirections_Success(t *testing.T) {
	body := loadFixture(t, "directions.json")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/directions/v5/mapbox/walking/-74.006,40.7128;-74.002,40.73;-73.9855,40.758", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, testToken, q.Get("access_token"))
		assert.Equal(t, "geojson", q.Get("geometries"))
		assert.Equal(t, "full", q.Get("overview"))
		assert.Equal(t, "true", q.Get("steps"))
		assert.Equal(t, "false", q.Get("alternatives"))

		jsonHandler(http.StatusOK, body)(w, r)
	}))
	defer server.Close()

	directions, err := newTestClient(t, server).GetDirections(context.Background(), mapping.DirectionsRequest{
		Coordinates: routeCoordinates,
		Profile:     mapping.ProfileWalking,
	})
	require.NoError(t, err)
	require.Len(t, directions.Routes, 1)

	route := directions.Routes[0]
	assert.InDelta(t, 5890.4, route.Distance, 1e-9)
	assert.InDelta(t, 4312.7, route.Duration, 1e-9)
	assert.Len(t, route.Geometry, 4)
	assert.Equal(t, geo.Position{Lat: 40.7128, Lng: -74.0060}, route.Geometry[0])

	require.Len(t, route.Legs, 2)
	assert.Equal(t, "Broadway", route.Legs[0].Summary)
	assert.Equal(t, []geo.Position{
		{Lat: 40.7128, Lng: -74.0060},
		{Lat: 40.7210, Lng: -74.0040},
		{Lat: 40.7300, Lng: -74.0020},
	}, route.Legs[0].Geometry)
	assert.Len(t, route.Legs[1].Geometry, 3)
}

func TestClient_GetDirections_NoRouteCode(t *testing.T) {
	server := httptest.NewServer(jsonHandler(http.StatusOK, []byte(`{"code":"NoRoute","message":"No route found","routes":[]}`)))
	defer server.Close()

	_, err := newTestClient(t, server).GetDirections(context.Background(), mapping.DirectionsRequest{
		Coordinates: routeCoordinates,
		Profile:     mapping.ProfileDriving,
	})
	assert.ErrorIs(t, err, maperr.ErrNoRouteFound)
}

func TestClient_GetDirections_NoSegmentStatus(t *testing.T) {
	server := httptest.NewServer(jsonHandler(http.StatusUnprocessableEntity,
		[]byte(`{"code":"NoSegment","message":"Could not find a matching segment for input coordinates"}`)))
	defer server.Close()

	_, err := newTestClient(t, server).GetDirections(context.Background(), mapping.DirectionsRequest{
		Coordinates: routeCoordinates,
		Profile:     mapping.ProfileCycling,
	})
	assert.ErrorIs(t, err, maperr.ErrNoRouteFound)
}

func TestClient_GetDirections_Validation(t *testing.T) {
	client, err := NewClient(ClientConfig{
		AccessToken: testToken,
		HTTPClient:  &mockFailingClient{err: net.ErrClosed},
		Logger:      zerolog.Nop(),
	})
	require.NoError(t, err)

	_, err = client.GetDirections(context.Background(), mapping.DirectionsRequest{Coordinates: routeCoordinates[:1]})
	assert.ErrorIs(t, err, maperr.ErrInvalidWaypoints)

	_, err = client.GetDirections(context.Background(), mapping.DirectionsRequest{
		Coordinates: []geo.Position{{Lat: 95, Lng: 0}, {Lat: 0, Lng: 0}},
	})
	assert.ErrorIs(t, err, maperr.ErrInvalidCoordinates)
}

func TestClient_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected maperr.Code
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"Not Authorized - Invalid Token"}`, maperr.CodeInvalidToken},
		{"rate limited", http.StatusTooManyRequests, `{"message":"Too Many Requests"}`, maperr.CodeRateLimitExceeded},
		{"service unavailable", http.StatusServiceUnavailable, `upstream down`, maperr.CodeServiceUnavailable},
		{"internal error", http.StatusInternalServerError, `{"message":"boom"}`, maperr.CodeUnknown},
		{"profile not found", http.StatusNotFound, `{"code":"ProfileNotFound","message":"Profile not found"}`, maperr.CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(jsonHandler(tt.status, []byte(tt.body)))
			defer server.Close()

			_, err := newTestClient(t, server).ForwardGeocode(context.Background(), mapping.GeocodeRequest{Query: "x"})
			require.Error(t, err)
			assert.Equal(t, tt.expected, maperr.CodeOf(err))
			assert.NotContains(t, err.Error(), testToken)
		})
	}
}

func TestClient_MalformedBody(t *testing.T) {
	server := httptest.NewServer(jsonHandler(http.StatusOK, []byte(`{"features": [`)))
	defer server.Close()

	_, err := newTestClient(t, server).ForwardGeocode(context.Background(), mapping.GeocodeRequest{Query: "x"})
	assert.Equal(t, maperr.CodeUnknown, maperr.CodeOf(err))
}

func TestClient_TransportErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected maperr.Code
	}{
		{"connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, maperr.CodeNetworkError},
		{"dns failure", &net.DNSError{Err: "no such host", Name: "api.mapbox.com", IsNotFound: true}, maperr.CodeNetworkError},
		{"deadline", context.DeadlineExceeded, maperr.CodeTimeout},
		{"circuit open", resilience.ErrCircuitOpen, maperr.CodeServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(ClientConfig{
				AccessToken: testToken,
				HTTPClient:  &mockFailingClient{err: tt.err},
				Logger:      zerolog.Nop(),
			})
			require.NoError(t, err)

			_, err = client.GetDirections(context.Background(), mapping.DirectionsRequest{
				Coordinates: routeCoordinates,
				Profile:     mapping.ProfileWalking,
			})
			assert.Equal(t, tt.expected, maperr.CodeOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestClient_ResilientClientNetworkErrors(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	refusedURL := closed.URL
	closed.Close()

	tests := []struct {
		name    string
		baseURL string
	}{
		{"connection refused", refusedURL},
		{"unresolvable host", "http://mapbox.invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(ClientConfig{
				AccessToken: testToken,
				BaseURL:     tt.baseURL,
				Timeout:     5 * time.Second,
				Logger:      zerolog.Nop(),
			})
			require.NoError(t, err)
			require.IsType(t, &resilience.Client{}, client.httpClient)

			_, err = client.ForwardGeocode(context.Background(), mapping.GeocodeRequest{Query: "paris", Limit: 1})
			require.Error(t, err)
			assert.Equal(t, maperr.CodeNetworkError, maperr.CodeOf(err))
			assert.NotContains(t, err.Error(), tt.baseURL)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{
		AccessToken: testToken,
		BaseURL:     server.URL,
		Timeout:     50 * time.Millisecond,
		Logger:      zerolog.Nop(),
	})
	require.NoError(t, err)

	start := time.Now()
	_, err = client.ReverseGeocode(context.Background(), mapping.ReverseGeocodeRequest{Position: geo.Position{Lat: 1, Lng: 1}})
	assert.ErrorIs(t, err, maperr.ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_CircuitBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	registry := resilience.NewRegistry()
	client, err := NewClient(ClientConfig{
		AccessToken: testToken,
		BaseURL:     server.URL,
		Registry:    registry,
		Logger:      zerolog.Nop(),
	})
	require.NoError(t, err)

	req := mapping.GeocodeRequest{Query: "anything"}
	for i := 0; i < 5; i++ {
		_, err := client.ForwardGeocode(context.Background(), req)
		assert.ErrorIs(t, err, maperr.ErrServiceUnavailable)
	}

	_, err = client.ForwardGeocode(context.Background(), req)
	assert.ErrorIs(t, err, maperr.ErrServiceUnavailable)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(5), calls.Load())

	health := registry.GetHealth(ProviderName)
	require.NotNil(t, health)
	assert.Equal(t, "unhealthy", health.Status())
}

func TestClient_GetOptimization_Success(t *testing.T) {
	body := loadFixture(t, "optimization.json")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/optimized-trips/v1/mapbox/driving/-74.006,40.7128;-73.9855,40.758;-74,40.7282;-74.002,40.739", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "first", q.Get("source"))
		assert.Equal(t, "last", q.Get("destination"))
		assert.Equal(t, "false", q.Get("roundtrip"))

		jsonHandler(http.StatusOK, body)(w, r)
	}))
	defer server.Close()

	opt, err := newTestClient(t, server).GetOptimization(context.Background(), mapping.OptimizationRequest{
		Coordinates: []geo.Position{
			{Lat: 40.7128, Lng: -74.0060},
			{Lat: 40.7580, Lng: -73.9855},
			{Lat: 40.7282, Lng: -74.0000},
			{Lat: 40.7390, Lng: -74.0020},
		},
		Profile:     mapping.ProfileDriving,
		Source:      mapping.EndpointFirst,
		Destination: mapping.EndpointLast,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3, 1}, opt.Order)
}

func TestClient_GetOptimization_RoundtripUnlessBothPinned(t *testing.T) {
	tests := []struct {
		source      mapping.Endpoint
		destination mapping.Endpoint
		roundtrip   string
	}{
		{"", "", "true"},
		{mapping.EndpointFirst, mapping.EndpointAny, "true"},
		{mapping.EndpointAny, mapping.EndpointLast, "true"},
		{mapping.EndpointFirst, mapping.EndpointLast, "false"},
	}

	for _, tt := range tests {
		t.Run(string(tt.source)+"-"+string(tt.destination), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.roundtrip, r.URL.Query().Get("roundtrip"))
				jsonHandler(http.StatusOK, loadFixture(t, "optimization.json"))(w, r)
			}))
			defer server.Close()

			_, err := newTestClient(t, server).GetOptimization(context.Background(), mapping.OptimizationRequest{
				Coordinates: routeCoordinates,
				Profile:     mapping.ProfileWalking,
				Source:      tt.source,
				Destination: tt.destination,
			})
			require.NoError(t, err)
		})
	}
}

func TestClient_GetOptimization_NoTrips(t *testing.T) {
	server := httptest.NewServer(jsonHandler(http.StatusOK, []byte(`{"code":"NoTrips","message":"No trips found","waypoints":[],"trips":[]}`)))
	defer server.Close()

	_, err := newTestClient(t, server).GetOptimization(context.Background(), mapping.OptimizationRequest{
		Coordinates: routeCoordinates,
		Profile:     mapping.ProfileWalking,
	})
	assert.ErrorIs(t, err, maperr.ErrNoRouteFound)
}

func TestClient_GetOptimization_TooManyCoordinates(t *testing.T) {
	client, err := NewClient(ClientConfig{AccessToken: testToken, HTTPClient: &mockFailingClient{}, Logger: zerolog.Nop()})
	require.NoError(t, err)

	coords := make([]geo.Position, MaxOptimizationCoordinates+1)
	_, err = client.GetOptimization(context.Background(), mapping.OptimizationRequest{Coordinates: coords})
	assert.ErrorIs(t, err, maperr.ErrTooManyWaypoints)
}

func TestToOrder(t *testing.T) {
	order := toOrder([]optimizationWaypoint{
		{WaypointIndex: 2},
		{WaypointIndex: 0},
		{WaypointIndex: 1},
	})
	assert.Equal(t, []int{1, 2, 0}, order)

	broken := toOrder([]optimizationWaypoint{{WaypointIndex: 0}, {WaypointIndex: 7}})
	assert.Equal(t, []int{0, -1}, broken)
}
