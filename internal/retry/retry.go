package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hirewatch-dev/hirewatch/internal/model"
)

// Ensure Fetcher implements model.PostingFetcher.
var _ model.PostingFetcher = (*Fetcher)(nil)

// Fetcher is a decorator that retries per-source fetch failures a bounded
// number of times, with a fixed delay between attempts, before giving up on
// the source for this cycle. A source's retry budget never affects other
// sources.
type Fetcher struct {
	inner      model.PostingFetcher
	maxRetries int
	delay      time.Duration
	logger     *slog.Logger
}

// NewFetcher wraps a PostingFetcher with retry logic. maxRetries is the
// number of additional attempts after the first failure; delay is the fixed
// pause between attempts.
func NewFetcher(inner model.PostingFetcher, maxRetries int, delay time.Duration, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		inner:      inner,
		maxRetries: maxRetries,
		delay:      delay,
		logger:     logger,
	}
}

// Fetch attempts the fetch, retrying on fetch errors. Context cancellation
// is never retried.
func (f *Fetcher) Fetch(ctx context.Context) ([]model.RawPosting, error) {
	postings, err := f.inner.Fetch(ctx)
	if err == nil {
		return postings, nil
	}

	lastErr := err
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return nil, lastErr
		}

		f.logger.Warn("retrying fetch",
			"attempt", attempt,
			"max_retries", f.maxRetries,
			"delay", f.delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(f.delay):
		}

		postings, err = f.inner.Fetch(ctx)
		if err == nil {
			return postings, nil
		}
		lastErr = err
	}

	return nil, lastErr
}

// Reset delegates to the wrapped fetcher.
func (f *Fetcher) Reset() error {
	return f.inner.Reset()
}
