// Package fault defines the error taxonomy shared by the external-service
// clients. Callers classify failures with errors.Is.
package fault

import "errors"

var (
	// ErrInvalidInput marks a caller error (malformed URL, bad coordinates).
	// Not retryable.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks an empty upstream result (no geocoding match, no
	// postal_code component). Terminal for that lookup.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable marks a transport or service failure. Transient,
	// but not retried automatically.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrPayloadTooLarge marks media exceeding the configured fetch cap.
	ErrPayloadTooLarge = errors.New("payload too large")
)
