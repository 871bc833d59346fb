package queue

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// ErrPersistenceUnavailable marks queue failures caused by the backing
// store being unusable. Callers must surface it as a user-visible failure:
// a movement that could not be queued is lost from the device's
// perspective, and claiming success would be silent data loss.
var ErrPersistenceUnavailable = errors.New("persistence unavailable")

// Entry is one queued movement submission.
//
// Payload and Token are snapshots taken at enqueue time and never mutated;
// replay sends exactly what the failed submission would have sent.
type Entry struct {
	// ID is assigned by the store on enqueue. Monotonically increasing
	// within one database file.
	ID int64

	// Payload is the JSON movement body, stored verbatim.
	Payload json.RawMessage

	// Token is the auth token snapshot to replay the submission under.
	Token string

	// QueuedAt records when the entry was created.
	QueuedAt time.Time
}

// Queue is a durable FIFO of pending movement submissions.
// Uses SQLite with WAL mode so a background drain can read while the live
// session writes.
type Queue struct {
	db *sql.DB
}

// Open creates or opens the queue database at the given path.
// Applies required pragmas and the schema automatically; idempotent.
func Open(path string) (*Queue, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open queue db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect queue db: %w", err)
	}

	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY between the live session and a drain trigger.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Queue{db: db}, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the underlying database.
func (q *Queue) Close() error {
	if q.db == nil {
		return nil
	}
	return q.db.Close()
}

// Enqueue appends an entry and returns its assigned id.
func (q *Queue) Enqueue(ctx context.Context, e Entry) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO movements_queue (payload, token, queued_at)
		VALUES (?, ?, ?)
	`,
		string(e.Payload),
		e.Token,
		e.QueuedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("enqueue movement: %w: %w", ErrPersistenceUnavailable, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("enqueue movement: %w: %w", ErrPersistenceUnavailable, err)
	}

	return id, nil
}

// ListAll returns every queued entry in insertion order (oldest first).
// Returns an empty slice, not nil, when the queue is empty.
func (q *Queue) ListAll(ctx context.Context) ([]Entry, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, payload, token, queued_at
		FROM movements_queue
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list queue: %w: %w", ErrPersistenceUnavailable, err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e        Entry
			payload  string
			queuedAt string
		)
		if err := rows.Scan(&e.ID, &payload, &e.Token, &queuedAt); err != nil {
			return nil, fmt.Errorf("scan queue entry: %w", err)
		}

		e.Payload = json.RawMessage(payload)
		e.QueuedAt, err = time.Parse(time.RFC3339Nano, queuedAt)
		if err != nil {
			return nil, fmt.Errorf("parse queued_at for entry %d: %w", e.ID, err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queue: %w: %w", ErrPersistenceUnavailable, err)
	}

	return entries, nil
}

// DeleteByID removes the entry with the given id. Deleting an id that is
// already gone is a no-op, which tolerates racing drain triggers.
func (q *Queue) DeleteByID(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM movements_queue WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete queue entry %d: %w: %w", id, ErrPersistenceUnavailable, err)
	}
	return nil
}

// Count returns the number of queued entries.
func (q *Queue) Count(ctx context.Context) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movements_queue`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count queue: %w: %w", ErrPersistenceUnavailable, err)
	}
	return n, nil
}
