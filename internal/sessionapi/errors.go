package sessionapi

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrNotFound      = errors.New("session service: resource not found")
	ErrUnauthorized  = errors.New("session service: unauthorized")
	ErrUpstreamError = errors.New("session service: internal error (5xx)")
	ErrBadRequest    = errors.New("session service: request rejected")
	ErrBadResponse   = errors.New("session service: invalid response format")
	ErrUnavailable   = errors.New("session service: host unreachable or transport failure")
	ErrTimeout       = errors.New("session service: request timed out")
)

// APIError wraps a sentinel with the failing operation and response detail.
type APIError struct {
	Sentinel  error
	Operation string
	Status    int
	Body      string
	Err       error // lower-level cause, e.g. a net.Error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the sentinel and the lower-level cause to errors.Is.
func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Err}
}

func sentinelForStatus(status int) error {
	switch {
	case status == 404:
		return ErrNotFound
	case status == 401 || status == 403:
		return ErrUnauthorized
	case status >= 500:
		return ErrUpstreamError
	default:
		return ErrBadRequest
	}
}
