package session

import (
	"context"
	"log/slog"
	"sync"
)

// ReplayTag is the event name the orchestrator registers once the durable
// queue becomes non-empty.
const ReplayTag = "sync-movements"

// ReplayTrigger is the environment-provided wake-up mechanism that replays
// the durable queue outside the main session lifetime. Register is
// idempotent: re-registering on every enqueue is safe.
//
// The orchestrator assumes nothing about when the trigger fires, only that
// the drain guard makes concurrent wake-ups harmless.
type ReplayTrigger interface {
	Register(tag string)
}

// nopTrigger is used when the host supplies no trigger.
type nopTrigger struct{}

func (nopTrigger) Register(string) {}

// Replayer is the drain entry point a trigger wakes.
type Replayer interface {
	DrainQueue(ctx context.Context) error
}

// ChannelTrigger is an in-process ReplayTrigger for hosts without an OS
// background-sync facility. Register arms it; Fire delivers a wake-up.
// Signals are coalesced: firing twice before the loop runs drains once,
// which is exactly what the drain guard wants.
type ChannelTrigger struct {
	mu     sync.Mutex
	tags   map[string]struct{}
	signal chan struct{}
	logger *slog.Logger
}

// NewChannelTrigger creates an unarmed trigger.
func NewChannelTrigger(logger *slog.Logger) *ChannelTrigger {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChannelTrigger{
		tags:   make(map[string]struct{}),
		signal: make(chan struct{}, 1),
		logger: logger,
	}
}

// Register arms the trigger for the given tag and schedules a wake-up.
// Idempotent.
func (t *ChannelTrigger) Register(tag string) {
	t.mu.Lock()
	t.tags[tag] = struct{}{}
	t.mu.Unlock()
	t.Fire()
}

// Registered reports whether the tag has been registered.
func (t *ChannelTrigger) Registered(tag string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.tags[tag]
	return ok
}

// Fire delivers a wake-up. Non-blocking; multiple fires coalesce.
func (t *ChannelTrigger) Fire() {
	select {
	case t.signal <- struct{}{}:
	default:
	}
}

// Run delivers wake-ups to r until ctx is canceled. Drain errors are
// logged, not fatal: the next wake-up retries.
func (t *ChannelTrigger) Run(ctx context.Context, r Replayer) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.signal:
			if err := r.DrainQueue(ctx); err != nil {
				t.logger.Warn("queue drain failed", "error", err)
			}
		}
	}
}
