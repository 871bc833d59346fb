package lifecycle

import (
	"errors"
	"fmt"
)

// TransitionError reports a forbidden state transition. It is a policy
// violation, never network-related, and must not be retried.
type TransitionError struct {
	// From is the tank's current state.
	From State

	// To is the target state of the requested operation. Zero when the
	// operation itself was unknown.
	To State

	// Op is the requested operation.
	Op Operation
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("forbidden state transition: unknown operation %q from %s", e.Op, e.From)
	}
	return fmt.Sprintf("forbidden state transition: %s→%s (op=%s)", e.From, e.To, e.Op)
}

// IsInvalidTransition reports whether err is (or wraps) a TransitionError.
func IsInvalidTransition(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}
