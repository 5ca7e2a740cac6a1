// Package geo provides pure geometry helpers for routes: great-circle
// distance, bounding boxes and the encoded polyline format.
//
// All functions are side-effect free and safe for concurrent use.
package geo

import (
	"math"

	"github.com/milequest/mapservice/pkg/maperr"
)

// EarthRadiusMeters is the mean Earth radius used for haversine distances.
const EarthRadiusMeters = 6371000

// Position is a geographic point in decimal degrees.
type Position struct {
	Lat float64
	Lng float64
}

// Valid reports whether the position lies within latitude [-90, 90] and
// longitude [-180, 180].
func (p Position) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Bounds is an axis-aligned lat/lng rectangle.
type Bounds struct {
	Southwest Position
	Northeast Position
}

// Contains reports whether p lies inside the box, edges included.
func (b Bounds) Contains(p Position) bool {
	return p.Lat >= b.Southwest.Lat && p.Lat <= b.Northeast.Lat &&
		p.Lng >= b.Southwest.Lng && p.Lng <= b.Northeast.Lng
}

// Extend returns the smallest box enclosing both b and p.
func (b Bounds) Extend(p Position) Bounds {
	return Bounds{
		Southwest: Position{Lat: math.Min(b.Southwest.Lat, p.Lat), Lng: math.Min(b.Southwest.Lng, p.Lng)},
		Northeast: Position{Lat: math.Max(b.Northeast.Lat, p.Lat), Lng: math.Max(b.Northeast.Lng, p.Lng)},
	}
}

// Distance returns the haversine distance between a and b in meters.
func Distance(a, b Position) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinDLat := math.Sin(dLat / 2)
	sinDLng := math.Sin(dLng / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLng*sinDLng
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// RouteDistance sums the distances between consecutive positions.
// Fewer than two positions yield 0.
func RouteDistance(positions []Position) float64 {
	var total float64
	for i := 1; i < len(positions); i++ {
		total += Distance(positions[i-1], positions[i])
	}
	return total
}

// GetBounds returns the bounding box of positions. A single position yields a
// degenerate box where southwest equals northeast.
func GetBounds(positions []Position) (Bounds, error) {
	if len(positions) == 0 {
		return Bounds{}, maperr.New(maperr.CodeInvalidCoordinates, "cannot compute bounds of an empty position list")
	}

	b := Bounds{Southwest: positions[0], Northeast: positions[0]}
	for _, p := range positions[1:] {
		b = b.Extend(p)
	}
	return b, nil
}
