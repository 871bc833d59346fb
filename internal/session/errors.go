package session

import (
	"errors"
	"fmt"
)

var (
	// ErrSnapshotNotLoaded means RecordScan was called before a snapshot
	// was successfully fetched. The user must refresh first.
	ErrSnapshotNotLoaded = errors.New("status snapshot not loaded")

	// ErrUnauthenticated means no auth token is available. Fatal to the
	// current attempt; requires re-login.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrSendInProgress rejects a re-entrant SendPending while one is
	// already in flight. The call is rejected, never queued twice.
	ErrSendInProgress = errors.New("send already in progress")

	// ErrNothingToSend means SendPending was called with an empty
	// pending list.
	ErrNothingToSend = errors.New("no scanned tanks to send")
)

// UnknownTankError reports a scanned id that is absent from the cached
// snapshot. A precondition failure: the user must refresh.
type UnknownTankError struct {
	TankID string
}

func (e *UnknownTankError) Error() string {
	return fmt.Sprintf("tank %q not found in current snapshot", e.TankID)
}

// GeofenceDeniedError reports an exceptional transition attempted outside
// the allowed radius (or with no location fix). A policy violation; the
// user must move closer, nothing is retried automatically.
type GeofenceDeniedError struct {
	TankID string

	// ExceptionKind is the "From→To" pair that required authorization.
	ExceptionKind string

	// DistanceMeters is the measured distance, negative when no fix was
	// available.
	DistanceMeters float64
}

func (e *GeofenceDeniedError) Error() string {
	if e.DistanceMeters < 0 {
		return fmt.Sprintf("exceptional transition %s for tank %s denied: no location fix", e.ExceptionKind, e.TankID)
	}
	return fmt.Sprintf("exceptional transition %s for tank %s denied: %.0fm from reference point", e.ExceptionKind, e.TankID, e.DistanceMeters)
}

// IsGeofenceDenied reports whether err is (or wraps) a GeofenceDeniedError.
func IsGeofenceDenied(err error) bool {
	var ge *GeofenceDeniedError
	return errors.As(err, &ge)
}
