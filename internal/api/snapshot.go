package api

import (
	"encoding/json"
	"fmt"

	"github.com/fieldscan/tankmove/internal/lifecycle"
)

// Snapshot is the device's typed view of which tanks are in which state,
// as last reported by the authority.
//
// A tank id appears in at most one state's set; the client trusts the
// server on this and does not re-verify.
type Snapshot struct {
	// Statuses holds the member tank ids per state. Every known state has
	// an entry, possibly empty.
	Statuses map[lifecycle.State][]string

	// UpdatedAt is the server-issued timestamp string, untouched.
	UpdatedAt string
}

// StateOf looks up the state a tank currently belongs to.
func (s *Snapshot) StateOf(tankID string) (lifecycle.State, bool) {
	for state, ids := range s.Statuses {
		for _, id := range ids {
			if id == tankID {
				return state, true
			}
		}
	}
	return "", false
}

// Count returns the total number of tanks across all states.
func (s *Snapshot) Count() int {
	n := 0
	for _, ids := range s.Statuses {
		n += len(ids)
	}
	return n
}

// ParseSnapshot validates a raw statuses response body into a Snapshot.
//
// Validation rules:
//   - top level must be an object with "statuses" (object) and
//     "updated_at" (non-empty string); either missing or malformed is a
//     parse failure, not a partial success
//   - a state whose member list is missing or not an array normalizes to
//     an empty set
//   - non-string members are dropped
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var raw struct {
		Statuses  map[string]json.RawMessage `json:"statuses"`
		UpdatedAt json.RawMessage            `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}

	if raw.Statuses == nil {
		return nil, fmt.Errorf(`invalid response: "statuses" is missing or invalid`)
	}

	var updatedAt string
	if err := json.Unmarshal(raw.UpdatedAt, &updatedAt); err != nil || updatedAt == "" {
		return nil, fmt.Errorf(`invalid response: "updated_at" is missing or invalid`)
	}

	snap := &Snapshot{
		Statuses:  make(map[lifecycle.State][]string, len(lifecycle.States())),
		UpdatedAt: updatedAt,
	}

	for _, state := range lifecycle.States() {
		members := []string{}

		if rawList, ok := raw.Statuses[string(state)]; ok {
			var items []any
			if err := json.Unmarshal(rawList, &items); err == nil {
				for _, item := range items {
					if id, ok := item.(string); ok {
						members = append(members, id)
					}
				}
			}
		}

		snap.Statuses[state] = members
	}

	return snap, nil
}
