package wikipedia

import "errors"

var (
	// ErrNotFound means the source has no article with the requested title.
	ErrNotFound = errors.New("article not found")
	// ErrSourceUnavailable covers transport failures, exhausted retries and timeouts.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrMalformedResponse means a success status without the expected fields.
	ErrMalformedResponse = errors.New("malformed response")
)
