package lifecycle

// targetState maps each operation to the state it moves a tank into,
// regardless of the tank's current state.
var targetState = map[Operation]State{
	OpUse:      StateInUse,
	OpRetrieve: StateRetrieved,
	OpRefill:   StateAvailable,
	OpTestFail: StateToBeDiscarded,
	OpDiscard:  StateDiscarded,
}

// normalTransitions is the allow-list of transitions that belong to the
// regular operational cycle. Everything else is either exceptional or
// forbidden.
var normalTransitions = map[string]struct{}{
	transitionKey(StateAvailable, StateInUse):         {},
	transitionKey(StateInUse, StateRetrieved):         {},
	transitionKey(StateRetrieved, StateAvailable):     {},
	transitionKey(StateToBeDiscarded, StateDiscarded): {},
}

// exceptionTransitions is the allow-list of transitions permitted only near
// a trusted physical location. The key doubles as the exception kind
// reported upward.
var exceptionTransitions = map[string]struct{}{
	transitionKey(StateAvailable, StateRetrieved):     {},
	transitionKey(StateInUse, StateAvailable):         {},
	transitionKey(StateInUse, StateToBeDiscarded):     {},
	transitionKey(StateAvailable, StateToBeDiscarded): {},
	transitionKey(StateRetrieved, StateToBeDiscarded): {},
}

// Outcome is the result of classifying a requested operation against a
// tank's current state.
type Outcome struct {
	// Next is the state the tank moves into.
	Next State

	// Normal is true for transitions in the regular operational cycle.
	// Normal transitions bypass the geofence check entirely.
	Normal bool

	// ExceptionKind names the specific "From→To" pair for exceptional
	// transitions. Empty when Normal is true.
	ExceptionKind string
}

// Classify maps (current state, requested operation) to an Outcome.
//
// The target state depends only on the operation. The (current, target)
// pair is then looked up first in the normal set, then in the exceptional
// set. Pairs in neither set are rejected with *TransitionError: the caller
// must not submit anything and must not mutate cached state.
func Classify(current State, op Operation) (Outcome, error) {
	next, ok := targetState[op]
	if !ok {
		return Outcome{}, &TransitionError{From: current, Op: op}
	}

	key := transitionKey(current, next)

	if _, ok := normalTransitions[key]; ok {
		return Outcome{Next: next, Normal: true}, nil
	}

	if _, ok := exceptionTransitions[key]; ok {
		return Outcome{Next: next, ExceptionKind: key}, nil
	}

	return Outcome{}, &TransitionError{From: current, To: next, Op: op}
}

func transitionKey(from, to State) string {
	return string(from) + "→" + string(to)
}
