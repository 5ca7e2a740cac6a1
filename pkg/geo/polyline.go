package geo

import (
	"fmt"
	"math"

	"github.com/milequest/mapservice/pkg/maperr"
)

// Google's Encoded Polyline Algorithm Format with 5 decimal places.
// https://developers.google.com/maps/documentation/utilities/polylinealgorithm
const polylineFactor = 1e5

// EncodePolyline encodes positions into a polyline string. An empty slice
// encodes to the empty string.
func EncodePolyline(positions []Position) string {
	if len(positions) == 0 {
		return ""
	}

	buf := make([]byte, 0, len(positions)*6)
	prevLat, prevLng := 0, 0

	for _, p := range positions {
		lat := int(math.Round(p.Lat * polylineFactor))
		lng := int(math.Round(p.Lng * polylineFactor))

		buf = appendPolylineValue(buf, lat-prevLat)
		buf = appendPolylineValue(buf, lng-prevLng)

		prevLat, prevLng = lat, lng
	}

	return string(buf)
}

// appendPolylineValue appends one zig-zag encoded, 5-bit chunked value.
func appendPolylineValue(buf []byte, value int) []byte {
	if value < 0 {
		value = ^(value << 1)
	} else {
		value <<= 1
	}

	for value >= 0x20 {
		buf = append(buf, byte((value&0x1f)|0x20)+63)
		value >>= 5
	}
	return append(buf, byte(value)+63)
}

// DecodePolyline decodes a polyline string. The empty string decodes to nil.
// Malformed input fails with INVALID_COORDINATES.
func DecodePolyline(encoded string) ([]Position, error) {
	if encoded == "" {
		return nil, nil
	}

	var positions []Position
	index, lat, lng := 0, 0, 0

	for index < len(encoded) {
		latDelta, next, err := readPolylineValue(encoded, index)
		if err != nil {
			return nil, err
		}
		if next >= len(encoded) {
			return nil, maperr.Wrap(maperr.CodeInvalidCoordinates, "malformed polyline",
				fmt.Errorf("missing longitude after offset %d", index))
		}
		lngDelta, next, err := readPolylineValue(encoded, next)
		if err != nil {
			return nil, err
		}
		index = next

		lat += latDelta
		lng += lngDelta
		positions = append(positions, Position{
			Lat: float64(lat) / polylineFactor,
			Lng: float64(lng) / polylineFactor,
		})
	}

	return positions, nil
}

// readPolylineValue reads one value starting at index and returns it with the
// index of the following byte.
func readPolylineValue(encoded string, index int) (int, int, error) {
	result, shift := 0, 0

	for {
		if index >= len(encoded) {
			return 0, 0, maperr.Wrap(maperr.CodeInvalidCoordinates, "malformed polyline",
				fmt.Errorf("truncated value at offset %d", index))
		}
		b := int(encoded[index]) - 63
		if b < 0 || b > 0x3f {
			return 0, 0, maperr.Wrap(maperr.CodeInvalidCoordinates, "malformed polyline",
				fmt.Errorf("invalid character %q at offset %d", encoded[index], index))
		}
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), index, nil
	}
	return result >> 1, index, nil
}
