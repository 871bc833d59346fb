package lifecycle

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// transitionRow is one cell of the full classification table, serialized
// for golden comparison.
type transitionRow struct {
	From          string `json:"from"`
	Op            string `json:"op"`
	Next          string `json:"next,omitempty"`
	Normal        bool   `json:"normal"`
	ExceptionKind string `json:"exception_kind,omitempty"`
	Error         string `json:"error,omitempty"`
}

// TestClassify_GoldenTable pins the complete (state × operation)
// classification table. Any change to the transition sets shows up as a
// golden diff.
//
// To regenerate after an intentional change:
//
//	go test ./internal/lifecycle -run TestClassify_GoldenTable -update
func TestClassify_GoldenTable(t *testing.T) {
	var rows []transitionRow

	for _, from := range States() {
		for _, op := range Operations() {
			row := transitionRow{From: string(from), Op: string(op)}

			out, err := Classify(from, op)
			if err != nil {
				row.Error = err.Error()
			} else {
				row.Next = string(out.Next)
				row.Normal = out.Normal
				row.ExceptionKind = out.ExceptionKind
			}

			rows = append(rows, row)
		}
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "transition_table", data)
}
