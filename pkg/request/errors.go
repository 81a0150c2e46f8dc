package request

import (
	"errors"
	"fmt"
)

// ErrClosed is returned for requests issued after Close.
var ErrClosed = errors.New("request client closed")

// StatusError is returned when the upstream answers with a non-success status.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error: status %d", e.Code)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.Code == 429 || (e.Code >= 500 && e.Code < 600)
}

// IsStatus reports whether err carries the given HTTP status.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
