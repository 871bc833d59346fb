package session

import (
	"context"
	"errors"

	"github.com/fieldscan/tankmove/internal/geo"
)

// ErrNoLocation is returned by providers that have no fix to give.
var ErrNoLocation = errors.New("no location fix available")

// LocationProvider supplies the device's current position. SendPending
// requests a fresh fix at send time (never reusing scan-time coordinates)
// under a bounded timeout, so Current must honor ctx cancellation rather
// than hang.
type LocationProvider interface {
	Current(ctx context.Context) (geo.Coordinate, error)
}

// LocationFunc adapts a function to a LocationProvider.
type LocationFunc func(ctx context.Context) (geo.Coordinate, error)

// Current implements LocationProvider.
func (f LocationFunc) Current(ctx context.Context) (geo.Coordinate, error) {
	return f(ctx)
}

// StaticLocation is a fixed-position provider, used by stationary hosts
// and tests.
type StaticLocation geo.Coordinate

// Current implements LocationProvider.
func (s StaticLocation) Current(ctx context.Context) (geo.Coordinate, error) {
	return geo.Coordinate(s), nil
}

// noLocation is the default provider when the host supplies none.
type noLocation struct{}

func (noLocation) Current(ctx context.Context) (geo.Coordinate, error) {
	return geo.Coordinate{}, ErrNoLocation
}
