package session

import (
	"github.com/fieldscan/tankmove/internal/geo"
	"github.com/fieldscan/tankmove/internal/lifecycle"
	"github.com/fieldscan/tankmove/internal/tankid"
)

// RecordScan classifies one scanned tank under the currently selected
// operation and, if accepted, adds it to the in-session pending list.
// Nothing is submitted yet; SendPending ships the batch.
//
// location is the device position at scan time, nil when no fix is
// available. It gates exceptional transitions only - normal transitions
// never consult it.
//
// Every rejection is resolved locally, before any network call:
//
//   - ErrSnapshotNotLoaded: no Ready snapshot to look the tank up in
//   - *UnknownTankError: id absent from the snapshot
//   - *lifecycle.TransitionError: the (state, operation) pair is forbidden
//   - *GeofenceDeniedError: exceptional transition outside the radius
//
// On rejection no cached state changes and the log is untouched.
func (s *Session) RecordScan(rawID string, location *geo.Coordinate) error {
	id, err := tankid.Normalize(rawID)
	if err != nil {
		s.setStatus(err.Error())
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseReady || s.snapshot == nil {
		s.statusMsg = ErrSnapshotNotLoaded.Error()
		return ErrSnapshotNotLoaded
	}

	current, ok := s.snapshot.StateOf(id)
	if !ok {
		err := &UnknownTankError{TankID: id}
		s.statusMsg = err.Error()
		return err
	}

	out, err := lifecycle.Classify(current, s.operation)
	if err != nil {
		s.statusMsg = err.Error()
		return err
	}

	if !out.Normal {
		if !geo.WithinRadius(location, s.geofence.Reference, s.geofence.RadiusMeters) {
			ge := &GeofenceDeniedError{
				TankID:         id,
				ExceptionKind:  out.ExceptionKind,
				DistanceMeters: -1,
			}
			if location != nil {
				ge.DistanceMeters = geo.Distance(*location, s.geofence.Reference)
			}
			s.statusMsg = ge.Error()
			return ge
		}
	}

	for _, p := range s.pending {
		if p == id {
			// Double scan of the same label in one batch; the first
			// one already covers it.
			return nil
		}
	}

	entry := LogEntry{
		TankID:        id,
		From:          current,
		To:            out.Next,
		Op:            s.operation,
		Time:          s.now(),
		Normal:        out.Normal,
		ExceptionKind: out.ExceptionKind,
	}

	s.pending = append(s.pending, id)
	s.log.Add(entry)
	s.lastScan = &entry
	s.statusMsg = ""

	s.logger.Info("scan recorded",
		"tank", id,
		"from", entry.From,
		"to", entry.To,
		"normal", entry.Normal,
	)
	return nil
}
