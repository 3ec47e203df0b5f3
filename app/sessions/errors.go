package sessions

import "errors"

var (
	// ErrInvalidReference is returned before any feed access when the
	// reference code is empty or not all digits.
	ErrInvalidReference = errors.New("missing or invalid ref")

	// ErrUpstreamUnavailable wraps failures to obtain a parseable feed.
	ErrUpstreamUnavailable = errors.New("IMS unavailable")
)
