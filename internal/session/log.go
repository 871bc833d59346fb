package session

import (
	"time"

	"github.com/fieldscan/tankmove/internal/lifecycle"
)

// LogEntry is one observed transition, recorded optimistically when the
// scan is accepted. The log reflects intent, not confirmed server state,
// and is never replayed.
type LogEntry struct {
	TankID        string
	From          lifecycle.State
	To            lifecycle.State
	Op            lifecycle.Operation
	Time          time.Time
	Normal        bool
	ExceptionKind string
}

// transitionLog is a bounded ring buffer of recent transitions,
// most-recent-first. Not safe for concurrent use; the Session serializes
// access under its own lock.
type transitionLog struct {
	entries []LogEntry
	cap     int
}

func newTransitionLog(capacity int) *transitionLog {
	return &transitionLog{cap: capacity}
}

// Add prepends an entry, dropping the oldest when full.
func (l *transitionLog) Add(e LogEntry) {
	l.entries = append([]LogEntry{e}, l.entries...)
	if len(l.entries) > l.cap {
		l.entries = l.entries[:l.cap]
	}
}

// Entries returns a copy, most recent first.
func (l *transitionLog) Entries() []LogEntry {
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *transitionLog) Len() int {
	return len(l.entries)
}
