package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fieldscan/tankmove/internal/api"
	"github.com/fieldscan/tankmove/internal/geo"
	"github.com/fieldscan/tankmove/internal/lifecycle"
	"github.com/fieldscan/tankmove/internal/queue"
)

// Phase is the orchestrator's snapshot-loading state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseError
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Authority is the remote inventory API surface the session depends on.
// *api.Client satisfies it.
type Authority interface {
	FetchStatuses(ctx context.Context) (*api.Snapshot, error)
	PostMovement(ctx context.Context, body json.RawMessage, token string) error
}

// Geofence is the reference point and radius that authorize exceptional
// transitions.
type Geofence struct {
	Reference    geo.Coordinate
	RadiusMeters float64
}

const (
	defaultLogCap          = 20
	defaultLocationTimeout = 10 * time.Second
)

// Session is one device session's orchestrator state. Create with New;
// zero value is not usable.
//
// All exported methods are safe for concurrent use. Network and queue I/O
// happen outside the internal lock, so accessors never block on a slow
// submission.
type Session struct {
	authority Authority
	queue     *queue.Queue
	locations LocationProvider
	trigger   ReplayTrigger
	logger    *slog.Logger

	geofence        Geofence
	locationTimeout time.Duration
	now             func() time.Time
	newBatchID      func() string

	mu        sync.Mutex
	phase     Phase
	snapshot  *api.Snapshot
	operation lifecycle.Operation
	token     string
	online    bool
	pending   []string
	log       *transitionLog
	lastScan  *LogEntry
	statusMsg string
	sending   bool
	draining  bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithLocationProvider sets the source of send-time location fixes.
func WithLocationProvider(p LocationProvider) Option {
	return func(s *Session) { s.locations = p }
}

// WithReplayTrigger sets the background replay trigger to register with
// once the queue becomes non-empty.
func WithReplayTrigger(t ReplayTrigger) Option {
	return func(s *Session) { s.trigger = t }
}

// WithGeofence sets the reference point and radius for exceptional
// transitions.
func WithGeofence(g Geofence) Option {
	return func(s *Session) { s.geofence = g }
}

// WithLogCap overrides the transition log capacity.
func WithLogCap(n int) Option {
	return func(s *Session) { s.log = newTransitionLog(n) }
}

// WithLocationTimeout bounds how long a send waits for a location fix.
func WithLocationTimeout(d time.Duration) Option {
	return func(s *Session) { s.locationTimeout = d }
}

// WithClock overrides the wall clock. Tests use a fixed clock for
// deterministic log timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithBatchIDFunc overrides batch id generation. Tests pin it.
func WithBatchIDFunc(f func() string) Option {
	return func(s *Session) { s.newBatchID = f }
}

// New creates a session bound to an authority client and a durable queue.
// The session starts Idle, online, with operation "use_tanks" selected.
func New(authority Authority, q *queue.Queue, opts ...Option) *Session {
	s := &Session{
		authority:       authority,
		queue:           q,
		locations:       noLocation{},
		trigger:         nopTrigger{},
		logger:          slog.Default(),
		locationTimeout: defaultLocationTimeout,
		now:             time.Now,
		newBatchID:      uuid.NewString,
		phase:           PhaseIdle,
		operation:       lifecycle.OpUse,
		online:          true,
		log:             newTransitionLog(defaultLogCap),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetToken installs the auth token snapshot used for submissions.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// SetOperation switches the operation mode applied to subsequent scans.
func (s *Session) SetOperation(op lifecycle.Operation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operation = op
}

// Operation returns the currently selected operation mode.
func (s *Session) Operation() lifecycle.Operation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.operation
}

// SetOnline records the device's connectivity hint. While offline,
// submissions queue immediately and drains are skipped.
func (s *Session) SetOnline(online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online = online
}

// Online reports the current connectivity hint.
func (s *Session) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// Phase returns the snapshot-loading phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Snapshot returns the cached snapshot, or nil before the first successful
// refresh. The snapshot may be stale while the phase is Error.
func (s *Session) Snapshot() *api.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// StatusMessage returns the one human-readable status line. Failure paths
// set it; success paths clear it.
func (s *Session) StatusMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusMsg
}

// Pending returns a copy of the in-session pending tank ids.
func (s *Session) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.pending))
	copy(out, s.pending)
	return out
}

// Log returns the recent transition log, most recent first.
func (s *Session) Log() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Entries()
}

// LastTransition returns the most recent accepted scan, or nil.
func (s *Session) LastTransition() *LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastScan == nil {
		return nil
	}
	e := *s.lastScan
	return &e
}

// QueuedCount returns the number of entries in the durable queue.
func (s *Session) QueuedCount(ctx context.Context) (int, error) {
	return s.queue.Count(ctx)
}

// RefreshSnapshot fetches the authoritative status snapshot.
//
// On failure the phase becomes Error with a descriptive message and the
// previous snapshot stays cached: stale-but-available beats unavailable.
func (s *Session) RefreshSnapshot(ctx context.Context) error {
	s.mu.Lock()
	s.phase = PhaseLoading
	s.mu.Unlock()

	snap, err := s.authority.FetchStatuses(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.phase = PhaseError
		s.statusMsg = "failed to fetch tank statuses: " + err.Error()
		s.logger.Warn("snapshot refresh failed", "error", err)
		return err
	}

	s.snapshot = snap
	s.phase = PhaseReady
	s.statusMsg = ""
	s.logger.Info("snapshot refreshed", "tanks", snap.Count(), "updated_at", snap.UpdatedAt)
	return nil
}

func (s *Session) setStatus(msg string) {
	s.mu.Lock()
	s.statusMsg = msg
	s.mu.Unlock()
}
