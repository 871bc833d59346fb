// Package api is the HTTP client for the remote inventory authority.
//
// It exposes exactly two operations: fetching the authoritative status
// snapshot and posting a movement submission. Server payloads are
// validated into typed values at this boundary - callers never see a
// partially-parsed snapshot.
//
// The package also owns the transient/permanent classification of network
// failures (IsTransient). That single predicate decides whether a failed
// submission is queued for replay or surfaced as a hard error, so it lives
// here next to the transport instead of being string-matched inline by
// callers.
package api
