// Package session implements the sync orchestrator: the stateful
// coordinator between field scans, the lifecycle classifier, the geofence
// policy, the remote inventory authority and the durable offline queue.
//
// One Session owns one device session's mutable state (snapshot, pending
// scans, transition log, guard flags). Sessions are explicit values, never
// ambient globals, so tests run many of them independently.
//
// # Flow
//
//	scan → classify → (submit now | queue) → [on success] refresh snapshot → log
//
// A scan is first classified locally (Classify + geofence); nothing
// touches the network for an invalid request. SendPending submits the
// whole pending batch; transient network failures divert the exact encoded
// body into the durable queue. DrainQueue replays queued entries in
// insertion order and is safe to trigger at any time: a second trigger
// during a drain is a no-op, and per-entry deletion happens before the
// next entry is attempted.
//
// # Guard flags
//
// The sending flag and the draining flag are independent mutual-exclusion
// guards: sending protects the in-session pending list, draining protects
// the durable queue. A drain may run while a fresh SendPending runs; they
// touch disjoint storage.
package session
