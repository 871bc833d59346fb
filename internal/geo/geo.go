// Package geo provides great-circle distance math and the geofence check
// used to authorize exceptional tank transitions.
package geo

import "math"

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// Coordinate is a WGS84 latitude/longitude pair in degrees.
//
// An absent location (no GPS fix) is modeled as a nil *Coordinate.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Distance returns the great-circle distance between a and b in meters,
// computed with the haversine formula on a spherical-Earth approximation.
//
// Distance(p, p) is 0 and Distance(a, b) == Distance(b, a).
func Distance(a, b Coordinate) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// WithinRadius reports whether loc is at most radiusMeters from ref.
//
// A nil loc (no fix) is never within any radius - exceptional transitions
// cannot be approved without a location. The boundary is inclusive: a point
// at exactly radiusMeters is accepted.
func WithinRadius(loc *Coordinate, ref Coordinate, radiusMeters float64) bool {
	if loc == nil {
		return false
	}
	return Distance(*loc, ref) <= radiusMeters
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
