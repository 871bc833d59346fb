package api

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

// ServerError is a non-2xx response from the authority. It is never
// classified as transient: the host was reached and answered, so retrying
// the same submission blindly would risk duplicates.
type ServerError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

// Error implements the error interface. The response body is included for
// diagnostics, mirroring what the operator sees in the status line.
func (e *ServerError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: server returned %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: server returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// AsServerError extracts a *ServerError from err, if any.
func AsServerError(err error) (*ServerError, bool) {
	var se *ServerError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsTransient classifies a submission failure as transient (worth queueing
// for replay) or permanent.
//
// Transient means the network layer failed before the authority answered:
// DNS failure, unreachable host, reset connection, timeout. A ServerError
// is never transient - the request arrived and was rejected.
//
// This predicate is the single place that decision is made; callers must
// not re-derive it from error strings.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := AsServerError(err); ok {
		return false
	}

	var ue *url.Error
	if errors.As(err, &ue) {
		return true
	}

	var ne net.Error
	return errors.As(err, &ne)
}
