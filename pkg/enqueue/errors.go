package enqueue

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a non-success HTTP response from the enqueue endpoint.
type Error struct {
	StatusCode int    // HTTP status code
	Status     string // HTTP status line
	URL        string // Requested URL
}

// Error returns the error message.
func (e *Error) Error() string {
	return fmt.Sprintf("enqueue: unexpected status %s for %s", e.Status, e.URL)
}

// Is reports whether target is an *Error with the same status code.
//
// This allows errors.Is(err, &enqueue.Error{StatusCode: 404}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode
}

// Temporary returns true if the request should be retried.
//
// Server errors (5xx) and 429 Too Many Requests are temporary.
func (e *Error) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Predefined errors for common cases.
var (
	// ErrMalformedResponse is returned when the body is not a thread document.
	ErrMalformedResponse = errors.New("enqueue: malformed response")

	// ErrInvalidConfig is returned when client configuration is invalid.
	ErrInvalidConfig = errors.New("enqueue: invalid configuration")

	// ErrInvalidThread is returned when board or thread id is empty.
	ErrInvalidThread = errors.New("enqueue: board and thread id are required")
)
