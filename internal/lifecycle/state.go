package lifecycle

import "fmt"

// State is a tank lifecycle state. The values are the wire names used by
// the inventory authority's status API.
type State string

const (
	StateAvailable     State = "Available"
	StateInUse         State = "InUse"
	StateRetrieved     State = "Retrieved"
	StateToBeDiscarded State = "ToBeDiscarded"
	StateDiscarded     State = "Discarded"
)

// States lists all lifecycle states in their canonical display order.
// The returned slice is a fresh copy and may be mutated by the caller.
func States() []State {
	return []State{
		StateAvailable,
		StateInUse,
		StateRetrieved,
		StateToBeDiscarded,
		StateDiscarded,
	}
}

// Valid reports whether s is one of the five known states.
func (s State) Valid() bool {
	switch s {
	case StateAvailable, StateInUse, StateRetrieved, StateToBeDiscarded, StateDiscarded:
		return true
	}
	return false
}

// Operation is a field operation scanned against a tank. The values are the
// wire names used as the key of the movement submission body.
type Operation string

const (
	OpUse      Operation = "use_tanks"
	OpRetrieve Operation = "retrieve_tanks"
	OpRefill   Operation = "refill_tanks"
	OpTestFail Operation = "testfail_tanks"
	OpDiscard  Operation = "discard_tanks"
)

// Operations lists all operations in their canonical display order.
func Operations() []Operation {
	return []Operation{OpUse, OpRetrieve, OpRefill, OpTestFail, OpDiscard}
}

// Valid reports whether op is one of the five known operations.
func (op Operation) Valid() bool {
	_, ok := targetState[op]
	return ok
}

// ParseOperation converts a wire or short name ("use", "use_tanks") to an
// Operation. Short names are accepted for CLI convenience.
func ParseOperation(s string) (Operation, error) {
	switch s {
	case "use", string(OpUse):
		return OpUse, nil
	case "retrieve", string(OpRetrieve):
		return OpRetrieve, nil
	case "refill", string(OpRefill):
		return OpRefill, nil
	case "testfail", string(OpTestFail):
		return OpTestFail, nil
	case "discard", string(OpDiscard):
		return OpDiscard, nil
	}
	return "", fmt.Errorf("unknown operation %q", s)
}
