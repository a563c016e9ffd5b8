package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// Stores return it for a cache miss.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	// Queries failing validation are rejected before any network call.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Summaries and follow-up questions are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrWikiUnavailable indicates the wiki connection is not configured.
	ErrWikiUnavailable = errors.New("wiki connection unavailable")

	// ErrStoreUnavailable indicates the persistent store failed.
	// Callers degrade to memory-only operation.
	ErrStoreUnavailable = errors.New("persistent store unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrStaleResponse indicates a response arrived for a superseded query.
	ErrStaleResponse = errors.New("stale response")

	// ErrAuthInvalid indicates the wiki rejected the configured credentials.
	ErrAuthInvalid = errors.New("authentication invalid")
)

// NetworkError wraps a failed call to a remote API.
type NetworkError struct {
	// Op names the failed operation, e.g. "search" or "content body".
	Op string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the request may succeed.
// Transport failures, throttling and 5xx responses are retryable.
func (e *NetworkError) Retryable() bool {
	switch {
	case e.StatusCode == 0:
		return !errors.Is(e.Err, ErrInvalidInput)
	case e.StatusCode == 429:
		return true
	case e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

// IsRetryable reports whether err is a NetworkError that may succeed on retry.
func IsRetryable(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Retryable()
	}
	return false
}
