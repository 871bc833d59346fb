package session

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fieldscan/tankmove/internal/api"
)

// DrainQueue replays queued submissions against the authority in
// insertion order.
//
// Guarded by the draining flag: a trigger firing while a drain is in
// flight is a no-op, so racing wake-ups cannot double-submit. Each entry
// is deleted before the next one is attempted. While the device reports
// offline the drain is skipped entirely.
//
// Per-entry policy:
//   - delivered: delete, continue
//   - HTTP >= 500: stop this pass, keep the entry and everything after it
//     (systemic outage - hammering the rest is pointless)
//   - any other HTTP rejection: delete, continue (treated as permanently
//     unprocessable)
//   - network-level failure: stop this pass, keep everything remaining
func (s *Session) DrainQueue(ctx context.Context) error {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return nil
	}
	if !s.online {
		s.mu.Unlock()
		return nil
	}
	s.draining = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.draining = false
		s.mu.Unlock()
	}()

	entries, err := s.queue.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("drain queue: %w", err)
	}

	for _, e := range entries {
		err := s.authority.PostMovement(ctx, e.Payload, e.Token)

		if err == nil {
			if derr := s.queue.DeleteByID(ctx, e.ID); derr != nil {
				// Leaving the entry behind after delivery risks a
				// duplicate on the next trigger; stop and surface.
				return fmt.Errorf("drain queue: delete delivered entry %d: %w", e.ID, derr)
			}
			s.logger.Info("queued movement delivered", "entry_id", e.ID)
			continue
		}

		if api.IsTransient(err) {
			s.logger.Warn("drain stopped: network unavailable", "entry_id", e.ID, "error", err)
			return nil
		}

		if se, ok := api.AsServerError(err); ok && se.StatusCode >= http.StatusInternalServerError {
			s.logger.Warn("drain stopped: server error", "entry_id", e.ID, "status", se.StatusCode)
			return nil
		}

		// Client-level rejection: the entry will never succeed as-is.
		if derr := s.queue.DeleteByID(ctx, e.ID); derr != nil {
			return fmt.Errorf("drain queue: drop rejected entry %d: %w", e.ID, derr)
		}
		s.logger.Warn("queued movement dropped as unprocessable", "entry_id", e.ID, "error", err)
	}

	return nil
}
