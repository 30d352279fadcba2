package model

import (
	"errors"
	"fmt"
	"time"
)

// Identity construction failures. These reject a single candidate posting;
// they are never fatal to a cycle.
var (
	ErrEmptyTitle = errors.New("posting has no title")
	ErrNoIdentity = errors.New("posting has no usable identity field")
)

// FetchError marks a per-source, recoverable fetch failure (network, timeout,
// malformed response). The engine retries it, then skips the source for the
// rest of the cycle.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// HTTPError wraps an HTTP status code so callers can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
