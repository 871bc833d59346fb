package api

import (
	"encoding/json"
	"fmt"

	"github.com/fieldscan/tankmove/internal/geo"
	"github.com/fieldscan/tankmove/internal/lifecycle"
)

// Movement is one batched movement submission before encoding.
type Movement struct {
	// Operation keys the submission body; its tank id list is the value.
	Operation lifecycle.Operation

	// TankIDs are the normalized identifiers in the batch.
	TankIDs []string

	// Location is the device fix taken at send time, omitted when absent.
	Location *geo.Coordinate

	// BatchID is a client-generated uuid attached so the server can
	// deduplicate a replayed batch.
	BatchID string
}

// Encode builds the wire body: { "<operation>": [ids...], gps_lat?,
// gps_lng?, batch_id? }. The encoded bytes are what gets posted and, on
// transient failure, what gets queued - replay never re-encodes.
func (m Movement) Encode() (json.RawMessage, error) {
	if !m.Operation.Valid() {
		return nil, fmt.Errorf("encode movement: unknown operation %q", m.Operation)
	}
	if len(m.TankIDs) == 0 {
		return nil, fmt.Errorf("encode movement: no tank ids")
	}

	body := map[string]any{
		string(m.Operation): m.TankIDs,
	}
	if m.Location != nil {
		body["gps_lat"] = m.Location.Lat
		body["gps_lng"] = m.Location.Lng
	}
	if m.BatchID != "" {
		body["batch_id"] = m.BatchID
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode movement: %w", err)
	}
	return data, nil
}
