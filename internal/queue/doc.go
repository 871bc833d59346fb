// Package queue provides the SQLite-backed durable queue of movement
// submissions pending delivery.
//
// Entries are created when a submission fails transiently (device offline,
// host unreachable) and destroyed when a later drain delivers them or the
// server rejects them permanently. The queue is insert-and-delete only:
// a payload is immutable once enqueued.
//
// # Invariants
//
//   - Ids are assigned by SQLite AUTOINCREMENT: locally unique and
//     monotonically increasing, so ORDER BY id is insertion order.
//   - Every mutation is a single SQLite statement, so an entry is either
//     fully present or fully absent to a concurrent drain.
//   - DeleteByID of an absent id is a no-op, which makes racing drain
//     triggers safe.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
package queue
