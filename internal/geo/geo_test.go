package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_SamePoint(t *testing.T) {
	p := Coordinate{Lat: 35.6812, Lng: 139.7671}
	assert.Equal(t, 0.0, Distance(p, p))
}

func TestDistance_Symmetric(t *testing.T) {
	a := Coordinate{Lat: 35.6812, Lng: 139.7671} // Tokyo Station
	b := Coordinate{Lat: 34.7024, Lng: 135.4959} // Osaka Station
	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
}

func TestDistance_KnownDistance(t *testing.T) {
	// Tokyo Station to Osaka Station is roughly 400 km great-circle.
	a := Coordinate{Lat: 35.6812, Lng: 139.7671}
	b := Coordinate{Lat: 34.7024, Lng: 135.4959}

	d := Distance(a, b)
	assert.Greater(t, d, 390_000.0)
	assert.Less(t, d, 410_000.0)
}

func TestDistance_SmallOffset(t *testing.T) {
	// One degree of latitude is about 111.19 km on the sphere used here.
	a := Coordinate{Lat: 35.0, Lng: 139.0}
	b := Coordinate{Lat: 36.0, Lng: 139.0}

	d := Distance(a, b)
	assert.InDelta(t, 111_195.0, d, 100.0)
}

func TestWithinRadius_NilLocationDenied(t *testing.T) {
	ref := Coordinate{Lat: 35.0, Lng: 139.0}
	assert.False(t, WithinRadius(nil, ref, math.MaxFloat64))
}

func TestWithinRadius_BoundaryInclusive(t *testing.T) {
	ref := Coordinate{Lat: 35.0, Lng: 139.0}
	loc := Coordinate{Lat: 35.0, Lng: 139.001}
	d := Distance(loc, ref)

	// Exactly at the radius is accepted; one meter beyond is not.
	assert.True(t, WithinRadius(&loc, ref, d))
	assert.False(t, WithinRadius(&loc, ref, d-1))
}

func TestWithinRadius_InsideAndOutside(t *testing.T) {
	ref := Coordinate{Lat: 35.0, Lng: 139.0}

	near := Coordinate{Lat: 35.0, Lng: 139.0003} // ~27 m east
	far := Coordinate{Lat: 35.0, Lng: 139.001}   // ~91 m east

	assert.True(t, WithinRadius(&near, ref, 50))
	assert.False(t, WithinRadius(&far, ref, 50))
}
