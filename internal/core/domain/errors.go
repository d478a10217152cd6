package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input text is empty or fails normalization
	ErrInvalidInput = errors.New("invalid input")

	// ErrInputTooLong indicates the input exceeds the configured max_words
	ErrInputTooLong = errors.New("input exceeds maximum word count")

	// ErrSessionNotFound indicates the session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrAnnotationNotFound indicates the strategy_id does not exist in the session
	ErrAnnotationNotFound = errors.New("annotation not found")

	// ErrInvalidOffsets indicates a span's offsets are out of range or end <= start
	ErrInvalidOffsets = errors.New("invalid offsets")

	// ErrUnknownStrategyCode indicates a code outside the 14-tag vocabulary
	ErrUnknownStrategyCode = errors.New("unknown strategy code")

	// ErrIllegalTransition indicates a forbidden annotation status transition
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrInvalidProvider indicates an unknown embedder/linguistic provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates a driven service (embedder, linguistic
	// pipeline, persistence) could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)
