// Package engine runs one fetch-parse-diff pass across the configured
// sources, folding results into the posting store and the event feed.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hirewatch-dev/hirewatch/internal/filter"
	"github.com/hirewatch-dev/hirewatch/internal/logbuf"
	"github.com/hirewatch-dev/hirewatch/internal/model"
	"github.com/hirewatch-dev/hirewatch/internal/ratelimit"
	"github.com/hirewatch-dev/hirewatch/internal/store"
)

// Source is one configured location to poll. Sources are processed in slice
// order every cycle so logs and notifications are reproducible.
type Source struct {
	Name    string
	Host    string
	Fetcher model.PostingFetcher
}

// SourceError records one source's failure within a cycle.
type SourceError struct {
	Source string `json:"source"`
	Err    error  `json:"-"`
}

func (e SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

// CycleOutcome summarizes one pass across all sources.
type CycleOutcome struct {
	NewCount        int
	TotalFetched    int
	PerSourceErrors []SourceError
}

// Options carries the engine's collaborators and tuning knobs.
type Options struct {
	Sources   []Source
	Store     *store.Memory
	Quality   *filter.Quality
	Keywords  *filter.Keyword
	Notifier  model.Notifier
	Persister model.Persister
	Limiter   *ratelimit.SourceLimiter
	Stats     *Stats
	Ring      *logbuf.Ring
	Logger    *slog.Logger

	// EvictEvery triggers store eviction every N cycles; Retention is the
	// LastSeen age beyond which postings are dropped.
	EvictEvery int
	Retention  time.Duration
}

// Engine executes poll cycles. It owns no goroutines; the scheduler drives it.
type Engine struct {
	sources    []Source
	store      *store.Memory
	quality    *filter.Quality
	keywords   *filter.Keyword
	notifier   model.Notifier
	persister  model.Persister
	limiter    *ratelimit.SourceLimiter
	stats      *Stats
	ring       *logbuf.Ring
	logger     *slog.Logger
	evictEvery int
	retention  time.Duration
}

// New creates an engine from options.
func New(opts Options) *Engine {
	return &Engine{
		sources:    opts.Sources,
		store:      opts.Store,
		quality:    opts.Quality,
		keywords:   opts.Keywords,
		notifier:   opts.Notifier,
		persister:  opts.Persister,
		limiter:    opts.Limiter,
		stats:      opts.Stats,
		ring:       opts.Ring,
		logger:     opts.Logger,
		evictEvery: opts.EvictEvery,
		retention:  opts.Retention,
	}
}

// RunCycle polls every source once, in order. Fetch failures are converted
// to SourceError records; one source's failure never aborts the cycle. The
// returned error is non-nil only when the cycle as a whole failed (every
// source errored, or the context was cancelled mid-cycle).
func (e *Engine) RunCycle(ctx context.Context) (CycleOutcome, error) {
	var out CycleOutcome

	for _, src := range e.sources {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}

		if err := e.limiter.Wait(ctx, src.Host); err != nil {
			return out, err
		}

		raws, err := src.Fetcher.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			out.PerSourceErrors = append(out.PerSourceErrors, SourceError{Source: src.Name, Err: err})
			e.ring.Append(logbuf.LevelError, fmt.Sprintf("Error checking %s: %v", src.Name, err))
			e.logger.Error("source fetch failed", "source", src.Name, "error", err)
			continue
		}

		out.TotalFetched += len(raws)
		if len(raws) == 0 {
			e.ring.Append(logbuf.LevelInfo, fmt.Sprintf("No postings found on %s", src.Name))
			e.logger.Info("no postings found", "source", src.Name)
			continue
		}

		out.NewCount += e.fold(src, raws)
	}

	if ctx.Err() != nil {
		return out, ctx.Err()
	}

	failed := len(e.sources) > 0 && len(out.PerSourceErrors) == len(e.sources)
	e.stats.RecordCycle(out.TotalFetched, out.NewCount, len(out.PerSourceErrors), failed)
	e.postCycle(ctx, out)

	if failed {
		return out, fmt.Errorf("all %d sources failed", len(e.sources))
	}
	return out, nil
}

// fold constructs postings from raw listings, upserts them, and notifies for
// the new ones. Returns how many were new.
func (e *Engine) fold(src Source, raws []model.RawPosting) int {
	now := time.Now()
	var fresh []model.Posting

	for _, raw := range raws {
		if reason, ok := e.quality.Check(raw); !ok {
			e.logger.Debug("candidate filtered", "source", src.Name, "reason", reason, "title", raw.Title)
			continue
		}

		p, err := model.NewPosting(raw, now)
		if err != nil {
			e.logger.Debug("candidate rejected", "source", src.Name, "error", err, "title", raw.Title)
			continue
		}

		if e.keywords != nil && !e.keywords.Match(p) {
			e.logger.Debug("candidate did not match keywords", "source", src.Name, "title", p.Title)
			continue
		}

		if res := e.store.Upsert(p); res.IsNew {
			fresh = append(fresh, p)
			e.ring.Append(logbuf.LevelSuccess, fmt.Sprintf("New posting: %s - %s", p.Title, p.Location))
			e.logger.Info("new posting", "source", src.Name, "title", p.Title, "location", p.Location, "url", p.URL)
		}
	}

	if len(fresh) > 0 && e.notifier != nil {
		if err := e.notifier.Notify(fresh); err != nil {
			// Notification failures never fail a cycle.
			e.ring.Append(logbuf.LevelWarning, fmt.Sprintf("Notification failed: %v", err))
			e.logger.Warn("notification failed", "error", err)
		}
	}

	return len(fresh)
}

// postCycle handles persistence, eviction, and the summary log line.
func (e *Engine) postCycle(ctx context.Context, out CycleOutcome) {
	if out.NewCount > 0 && e.persister != nil {
		if err := e.persister.Save(ctx, e.store.List(0)); err != nil {
			e.ring.Append(logbuf.LevelWarning, fmt.Sprintf("Persistence failed: %v", err))
			e.logger.Warn("persistence failed", "error", err)
		}
	}

	view := e.stats.View()
	if e.evictEvery > 0 && view.TotalCycles%e.evictEvery == 0 {
		if removed := e.store.EvictOlderThan(e.retention); removed > 0 {
			e.ring.Append(logbuf.LevelInfo, fmt.Sprintf("Evicted %d stale postings", removed))
			e.logger.Info("evicted stale postings", "removed", removed)
		}
		// Prune the persisted copy too, or evicted postings come back
		// through Load at the next startup.
		if c, ok := e.persister.(interface {
			Cleanup(context.Context, time.Duration) error
		}); ok {
			if err := c.Cleanup(ctx, e.retention); err != nil {
				e.logger.Warn("persisted cleanup failed", "error", err)
			}
		}
	}

	level := logbuf.LevelInfo
	if out.NewCount > 0 {
		level = logbuf.LevelSuccess
	}
	e.ring.Append(level, fmt.Sprintf("Cycle #%d complete: %d new, %d fetched, %d source errors",
		view.TotalCycles, out.NewCount, out.TotalFetched, len(out.PerSourceErrors)))
	e.logger.Info("cycle complete",
		"cycle", view.TotalCycles,
		"new", out.NewCount,
		"fetched", out.TotalFetched,
		"source_errors", len(out.PerSourceErrors),
	)
}
