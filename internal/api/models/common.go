// Package models provides request and response models for the map service API.
package models

import (
	"time"

	"github.com/milequest/mapservice/pkg/geo"
)

// Position is a geographic coordinate in decimal degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ToGeo converts to the geometry type.
func (p Position) ToGeo() geo.Position {
	return geo.Position{Lat: p.Lat, Lng: p.Lng}
}

// FromGeoPosition converts from the geometry type.
func FromGeoPosition(p geo.Position) Position {
	return Position{Lat: p.Lat, Lng: p.Lng}
}

// FromGeoPositions converts a list of positions.
func FromGeoPositions(positions []geo.Position) []Position {
	out := make([]Position, len(positions))
	for i, p := range positions {
		out[i] = FromGeoPosition(p)
	}
	return out
}

// Bounds is a southwest/northeast bounding box.
type Bounds struct {
	Southwest Position `json:"southwest"`
	Northeast Position `json:"northeast"`
}

// HealthStatus represents the health status of a service.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

// Timestamp is a helper type for time.Time with custom JSON formatting.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler for Timestamp.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(time.RFC3339) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Timestamp.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	parsed, err := time.Parse(`"`+time.RFC3339+`"`, string(data))
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}
