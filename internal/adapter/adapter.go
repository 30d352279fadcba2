// Package adapter implements the fetch backends: a plain HTTP client for
// server-rendered pages and headless Chrome for pages that build their
// listings in the browser. Both feed the same heuristic extractor.
package adapter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hirewatch-dev/hirewatch/internal/model"
)

// Backend names accepted in source configuration.
const (
	BackendHTTP   = "http"
	BackendChrome = "chrome"
)

// New builds a fetcher for the named backend.
func New(backend, source, pageURL string, timeout time.Duration) (model.PostingFetcher, error) {
	switch backend {
	case BackendHTTP, "":
		return NewHTTPFetcher(source, pageURL, timeout)
	case BackendChrome:
		return NewChromeFetcher(source, pageURL, timeout)
	default:
		return nil, fmt.Errorf("unknown fetch backend %q", backend)
	}
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
