package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hirewatch-dev/hirewatch/internal/adapter"
	"github.com/hirewatch-dev/hirewatch/internal/config"
	"github.com/hirewatch-dev/hirewatch/internal/engine"
	"github.com/hirewatch-dev/hirewatch/internal/filter"
	"github.com/hirewatch-dev/hirewatch/internal/logbuf"
	"github.com/hirewatch-dev/hirewatch/internal/model"
	"github.com/hirewatch-dev/hirewatch/internal/notifier"
	"github.com/hirewatch-dev/hirewatch/internal/ratelimit"
	"github.com/hirewatch-dev/hirewatch/internal/retry"
	"github.com/hirewatch-dev/hirewatch/internal/scheduler"
	"github.com/hirewatch-dev/hirewatch/internal/store"
)

// Build assembles a Monitor from configuration. Assembly failures produce a
// Degraded handle instead of an error so the API server can still come up
// and report what went wrong. The returned cleanup releases fetcher and
// persister resources; it is safe to call on a degraded handle.
func Build(cfg *config.Config, logger *slog.Logger) (Handle, func()) {
	noop := func() {}

	sources, closers, err := buildSources(cfg, logger)
	if err != nil {
		return Degraded(err.Error()), noop
	}

	persister, err := buildPersister(cfg)
	if err != nil {
		closeAll(closers)
		return Degraded(err.Error()), noop
	}

	st := store.NewMemory()
	ring := logbuf.NewRing(cfg.Logs.Capacity)
	stats := engine.NewStats()

	var keywords *filter.Keyword
	if len(cfg.Filters.TitleKeywords) > 0 || len(cfg.Filters.TitleExcludeKeywords) > 0 {
		keywords = filter.NewKeyword(cfg.Filters.TitleKeywords, cfg.Filters.TitleExcludeKeywords)
	}

	eng := engine.New(engine.Options{
		Sources:    sources,
		Store:      st,
		Quality:    filter.NewQuality(),
		Keywords:   keywords,
		Notifier:   buildNotifier(cfg.Notification, logger),
		Persister:  persister,
		Limiter:    ratelimit.NewSourceLimiter(cfg.Pacing.MinDelay),
		Stats:      stats,
		Ring:       ring,
		Logger:     logger,
		EvictEvery: cfg.Eviction.EveryCycles,
		Retention:  cfg.Eviction.Retention,
	})

	sched := scheduler.New(scheduler.Options{
		Cycle: func(ctx context.Context) error {
			_, err := eng.RunCycle(ctx)
			return err
		},
		Recover:        resetAll(sources),
		Interval:       cfg.PollInterval,
		BaseBackoff:    cfg.Backoff.Base,
		MaxBackoff:     cfg.Backoff.Max,
		ErrorThreshold: cfg.Backoff.ErrorThreshold,
		Logger:         logger,
	})

	m := New(Options{
		Store:             st,
		Ring:              ring,
		Stats:             stats,
		Engine:            eng,
		Scheduler:         sched,
		Persister:         persister,
		Logger:            logger,
		StatusTTL:         cfg.Status.TTL,
		DegradedThreshold: cfg.Backoff.ErrorThreshold,
	})

	loadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := m.Load(loadCtx); err != nil {
		logger.Warn("could not load persisted postings", "error", err)
	}

	cleanup := func() {
		m.Stop()
		closeAll(closers)
		if c, ok := persister.(interface{ Close() error }); ok {
			c.Close()
		}
	}
	return Ready(m), cleanup
}

func buildSources(cfg *config.Config, logger *slog.Logger) ([]engine.Source, []func(), error) {
	var sources []engine.Source
	var closers []func()

	for _, sc := range cfg.Sources {
		if !sc.Enabled {
			continue
		}

		backend := sc.Backend
		if backend == "" {
			backend = adapter.BackendHTTP
		}
		fetcher, err := adapter.New(backend, sc.Name, sc.URL, cfg.Fetch.Timeout)
		if err != nil {
			closeAll(closers)
			return nil, nil, fmt.Errorf("source %s: %w", sc.Name, err)
		}
		if c, ok := fetcher.(interface{ Close() }); ok {
			closers = append(closers, c.Close)
		}

		wrapped := retry.NewFetcher(fetcher, cfg.Fetch.MaxRetries, cfg.Fetch.RetryDelay, logger)
		sources = append(sources, engine.Source{
			Name:    sc.Name,
			Host:    hostOf(sc.URL),
			Fetcher: wrapped,
		})
	}
	return sources, closers, nil
}

func buildPersister(cfg *config.Config) (model.Persister, error) {
	if !cfg.Persistence.Enabled {
		return store.NewNopPersister(), nil
	}
	p, err := store.NewSQLitePersister(cfg.Persistence.Path)
	if err != nil {
		return nil, fmt.Errorf("open posting database: %w", err)
	}
	return p, nil
}

func buildNotifier(nc config.NotificationConfig, logger *slog.Logger) model.Notifier {
	switch nc.Type {
	case "slack":
		return notifier.NewSlackNotifier(nc.WebhookURL, &http.Client{Timeout: 10 * time.Second}, logger)
	case "telegram":
		return notifier.NewTelegramNotifier(nc.Telegram.BotToken, nc.Telegram.ChatID, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// resetAll returns the scheduler's recovery hook: reset every fetcher
// session, reporting the first failure.
func resetAll(sources []engine.Source) func() error {
	return func() error {
		var firstErr error
		for _, src := range sources {
			if err := src.Fetcher.Reset(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("reset %s: %w", src.Name, err)
			}
		}
		return firstErr
	}
}

func closeAll(closers []func()) {
	for _, c := range closers {
		c()
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
