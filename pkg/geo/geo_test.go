package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milequest/mapservice/pkg/geo"
	"github.com/milequest/mapservice/pkg/maperr"
)

var (
	lowerManhattan = geo.Position{Lat: 40.7128, Lng: -74.0060}
	timesSquare    = geo.Position{Lat: 40.7580, Lng: -73.9855}
	hudsonPier     = geo.Position{Lat: 40.7300, Lng: -74.0200}
)

func TestDistance_SamePointIsZero(t *testing.T) {
	points := []geo.Position{
		lowerManhattan,
		{Lat: 0, Lng: 0},
		{Lat: 90, Lng: 180},
		{Lat: -90, Lng: -180},
		{Lat: 52.3676, Lng: 4.9041},
	}

	for _, p := range points {
		assert.Zero(t, geo.Distance(p, p), "distance of %+v to itself", p)
	}
}

func TestDistance_NewYorkScenario(t *testing.T) {
	d := geo.Distance(lowerManhattan, timesSquare)

	assert.Greater(t, d, 5000.0)
	assert.Less(t, d, 6000.0)
}

func TestDistance_IsSymmetric(t *testing.T) {
	assert.InDelta(t, geo.Distance(lowerManhattan, hudsonPier), geo.Distance(hudsonPier, lowerManhattan), 1e-9)
}

func TestDistance_KnownCityPair(t *testing.T) {
	amsterdam := geo.Position{Lat: 52.3676, Lng: 4.9041}
	utrecht := geo.Position{Lat: 52.0907, Lng: 5.1214}

	// ~34 km great-circle
	assert.InDelta(t, 34000, geo.Distance(amsterdam, utrecht), 1000)
}

func TestRouteDistance(t *testing.T) {
	assert.Zero(t, geo.RouteDistance(nil))
	assert.Zero(t, geo.RouteDistance([]geo.Position{}))
	assert.Zero(t, geo.RouteDistance([]geo.Position{lowerManhattan}))

	path := []geo.Position{lowerManhattan, hudsonPier, timesSquare}
	expected := geo.Distance(lowerManhattan, hudsonPier) + geo.Distance(hudsonPier, timesSquare)
	assert.InDelta(t, expected, geo.RouteDistance(path), 1e-6)
}

func TestGetBounds_Scenario(t *testing.T) {
	b, err := geo.GetBounds([]geo.Position{lowerManhattan, timesSquare, hudsonPier})
	require.NoError(t, err)

	assert.Equal(t, geo.Position{Lat: 40.7128, Lng: -74.0200}, b.Southwest)
	assert.Equal(t, geo.Position{Lat: 40.7580, Lng: -73.9855}, b.Northeast)

	for _, p := range []geo.Position{lowerManhattan, timesSquare, hudsonPier} {
		assert.True(t, b.Contains(p))
	}
}

func TestGetBounds_SinglePointIsDegenerate(t *testing.T) {
	b, err := geo.GetBounds([]geo.Position{timesSquare})
	require.NoError(t, err)

	assert.Equal(t, timesSquare, b.Southwest)
	assert.Equal(t, timesSquare, b.Northeast)
}

func TestGetBounds_Empty(t *testing.T) {
	_, err := geo.GetBounds(nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, maperr.ErrInvalidCoordinates)
}

func TestPosition_Valid(t *testing.T) {
	tests := []struct {
		name     string
		pos      geo.Position
		expected bool
	}{
		{"origin", geo.Position{}, true},
		{"corners", geo.Position{Lat: -90, Lng: 180}, true},
		{"latitude too high", geo.Position{Lat: 90.0001, Lng: 0}, false},
		{"latitude too low", geo.Position{Lat: -91, Lng: 0}, false},
		{"longitude too high", geo.Position{Lat: 0, Lng: 181}, false},
		{"longitude too low", geo.Position{Lat: 0, Lng: -180.5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.pos.Valid())
		})
	}
}

func TestBounds_Extend(t *testing.T) {
	b := geo.Bounds{Southwest: lowerManhattan, Northeast: lowerManhattan}
	b = b.Extend(timesSquare)

	assert.True(t, b.Contains(lowerManhattan))
	assert.True(t, b.Contains(timesSquare))
	assert.False(t, b.Contains(geo.Position{Lat: 41, Lng: -74}))
}
