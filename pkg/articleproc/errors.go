package articleproc

import "errors"

// ErrExtractionFailed means the markup has no article content container.
var ErrExtractionFailed = errors.New("extraction failed: content container not found")
