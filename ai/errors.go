package ai

import "errors"

var (
	// ErrEmptyInput is returned when blank text is passed to a provider.
	// It is the caller's fault and never worth retrying.
	ErrEmptyInput = errors.New("empty input text")

	// ErrProviderUnavailable wraps transport, authentication and quota failures
	// reported by a backend.
	ErrProviderUnavailable = errors.New("ai provider unavailable")

	// ErrMalformedResponse indicates the backend replied with content that
	// could not be interpreted.
	ErrMalformedResponse = errors.New("malformed provider response")
)
