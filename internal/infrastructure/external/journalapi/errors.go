package journalapi

import (
	"errors"
	"fmt"
	"net/http"
)

// FetchError is the single failure kind of the gateway: the transport
// failed, the breaker rejected the call, or the backend answered with a
// non-success status.
type FetchError struct {
	// Op is the gateway operation, e.g. "list_students".
	Op string

	Method string
	URL    string

	// StatusCode is zero when no response was received.
	StatusCode int

	// Code and Message come from the backend error body when it has one.
	Code    string
	Message string

	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	msg := fmt.Sprintf("journalapi: %s %s", e.Method, e.URL)
	if e.StatusCode > 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the transport error, if any.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// UserMessage is the short text shown in the error box.
func (e *FetchError) UserMessage() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.StatusCode > 0:
		return http.StatusText(e.StatusCode)
	default:
		return "network error"
	}
}

// Transient reports whether the failure says something about backend health
// (no response or a 5xx) rather than about the request.
func (e *FetchError) Transient() bool {
	return e.StatusCode == 0 || e.StatusCode >= http.StatusInternalServerError
}

// IsFetchError reports whether err is (or wraps) a FetchError.
func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}

// StatusCode extracts the HTTP status of a FetchError, or 0.
func StatusCode(err error) int {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode
	}
	return 0
}
