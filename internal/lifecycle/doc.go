// Package lifecycle defines the tank lifecycle state machine.
//
// A tank is always in exactly one of five states, and each field operation
// maps deterministically to one target state. Classify decides whether a
// requested operation is a normal transition, an exceptional transition
// (allowed only near a trusted location, enforced by the caller), or
// forbidden outright.
//
// The classifier is pure: no I/O, no clock, total over a fixed allow-list.
// Discarded is terminal - no operation leads out of it.
package lifecycle
