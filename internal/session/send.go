package session

import (
	"context"
	"fmt"

	"github.com/fieldscan/tankmove/internal/api"
	"github.com/fieldscan/tankmove/internal/geo"
	"github.com/fieldscan/tankmove/internal/lifecycle"
	"github.com/fieldscan/tankmove/internal/queue"
)

// SendPending submits the pending batch under the current operation.
//
// Guarded by the sending flag: a call while another send is in flight
// fails with ErrSendInProgress instead of queueing a duplicate. A fresh
// location fix is requested at send time (bounded by the configured
// timeout) and attached to the batch payload.
//
// Outcomes:
//   - success: pending cleared, snapshot refreshed, status cleared
//   - transient network failure or device offline: the exact encoded body
//     and token are persisted to the durable queue, pending is cleared,
//     and the status line reports queued-for-later (returned error is nil
//     - the scans are safe, not lost)
//   - queue write failure: surfaced, pending kept; no silent data loss
//   - any other failure: surfaced, pending kept so the user can retry
func (s *Session) SendPending(ctx context.Context) error {
	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return ErrSendInProgress
	}
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return ErrNothingToSend
	}
	if s.token == "" {
		s.statusMsg = ErrUnauthenticated.Error()
		s.mu.Unlock()
		return ErrUnauthenticated
	}
	s.sending = true
	ids := make([]string, len(s.pending))
	copy(ids, s.pending)
	op := s.operation
	token := s.token
	online := s.online
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sending = false
		s.mu.Unlock()
	}()

	location := s.freshLocation(ctx)

	body, err := api.Movement{
		Operation: op,
		TankIDs:   ids,
		Location:  location,
		BatchID:   s.newBatchID(),
	}.Encode()
	if err != nil {
		s.setStatus(err.Error())
		return err
	}

	var postErr error
	if online {
		postErr = s.authority.PostMovement(ctx, body, token)
	}

	if online && postErr == nil {
		s.mu.Lock()
		s.pending = nil
		s.statusMsg = ""
		s.mu.Unlock()

		s.logger.Info("movements submitted", "operation", op, "tanks", len(ids))

		// Pull the authoritative view the submission just changed.
		return s.RefreshSnapshot(ctx)
	}

	if !online || api.IsTransient(postErr) {
		return s.queueForReplay(ctx, op, ids, body, token, postErr)
	}

	// Hard rejection: keep pending so the user can retry deliberately.
	s.setStatus(postErr.Error())
	s.logger.Warn("movement submission rejected", "operation", op, "error", postErr)
	return postErr
}

// queueForReplay diverts a transiently-failed batch into the durable
// queue and registers the background replay trigger.
func (s *Session) queueForReplay(ctx context.Context, op lifecycle.Operation, ids []string, body []byte, token string, cause error) error {
	entry := queue.Entry{
		Payload:  body,
		Token:    token,
		QueuedAt: s.now(),
	}

	id, err := s.queue.Enqueue(ctx, entry)
	if err != nil {
		// The movement could not be sent or stored. Claiming success
		// here would silently lose the scans.
		msg := fmt.Sprintf("failed to queue movements for later delivery: %v", err)
		s.setStatus(msg)
		s.logger.Error("offline queue write failed", "error", err, "cause", cause)
		return err
	}

	s.mu.Lock()
	s.pending = nil
	s.statusMsg = fmt.Sprintf("offline: %d tank(s) queued for later delivery", len(ids))
	s.mu.Unlock()

	s.trigger.Register(ReplayTag)

	s.logger.Info("movements queued for replay",
		"entry_id", id,
		"operation", op,
		"tanks", len(ids),
		"cause", causeString(cause),
	)
	return nil
}

// freshLocation obtains a send-time fix under the configured timeout.
// Returns nil when no fix could be obtained; the batch is then submitted
// without coordinates.
func (s *Session) freshLocation(ctx context.Context) *geo.Coordinate {
	ctx, cancel := context.WithTimeout(ctx, s.locationTimeout)
	defer cancel()

	loc, err := s.locations.Current(ctx)
	if err != nil {
		s.logger.Warn("no location fix for batch", "error", err)
		return nil
	}
	return &loc
}

func causeString(err error) string {
	if err == nil {
		return "device offline"
	}
	return err.Error()
}
