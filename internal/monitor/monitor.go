// Package monitor is the facade over the store, event feed, engine, and
// scheduler. The API server and CLI talk to a Monitor, never to the parts.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hirewatch-dev/hirewatch/internal/engine"
	"github.com/hirewatch-dev/hirewatch/internal/logbuf"
	"github.com/hirewatch-dev/hirewatch/internal/model"
	"github.com/hirewatch-dev/hirewatch/internal/scheduler"
	"github.com/hirewatch-dev/hirewatch/internal/store"
)

const (
	defaultStatusTTL         = 5 * time.Second
	defaultDegradedThreshold = 5
)

// StatusSnapshot is one point-in-time view of the whole system. The embedded
// cycle counters flatten into the JSON object.
type StatusSnapshot struct {
	Running       bool   `json:"running"`
	PollInterval  string `json:"poll_interval"`
	TotalPostings int    `json:"total_postings"`
	Degraded      bool   `json:"degraded"`
	engine.StatsView
	GeneratedAt time.Time `json:"generated_at"`
}

// Options carries the assembled parts plus snapshot tuning.
type Options struct {
	Store     *store.Memory
	Ring      *logbuf.Ring
	Stats     *engine.Stats
	Engine    *engine.Engine
	Scheduler *scheduler.Scheduler
	Persister model.Persister
	Logger    *slog.Logger

	// StatusTTL bounds how stale a cached snapshot may be served.
	StatusTTL time.Duration
	// DegradedThreshold is the consecutive-failure count at which Status
	// reports the system degraded.
	DegradedThreshold int
}

// Monitor owns the running system and exposes its operations.
type Monitor struct {
	store     *store.Memory
	ring      *logbuf.Ring
	stats     *engine.Stats
	engine    *engine.Engine
	sched     *scheduler.Scheduler
	persister model.Persister
	logger    *slog.Logger

	statusTTL         time.Duration
	degradedThreshold int

	snapMu   sync.Mutex
	snap     StatusSnapshot
	snapAt   time.Time
	snapGen  uint64
	snapSeen bool
}

func New(opts Options) *Monitor {
	m := &Monitor{
		store:             opts.Store,
		ring:              opts.Ring,
		stats:             opts.Stats,
		engine:            opts.Engine,
		sched:             opts.Scheduler,
		persister:         opts.Persister,
		logger:            opts.Logger,
		statusTTL:         opts.StatusTTL,
		degradedThreshold: opts.DegradedThreshold,
	}
	if m.statusTTL <= 0 {
		m.statusTTL = defaultStatusTTL
	}
	if m.degradedThreshold <= 0 {
		m.degradedThreshold = defaultDegradedThreshold
	}
	return m
}

// Load pre-populates the store from the persister. Call once before Start.
func (m *Monitor) Load(ctx context.Context) error {
	if m.persister == nil {
		return nil
	}
	postings, err := m.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load persisted postings: %w", err)
	}
	for _, p := range postings {
		m.store.Upsert(p)
	}
	if len(postings) > 0 {
		m.logger.Info("loaded persisted postings", "count", len(postings))
		m.stats.Bump()
	}
	return nil
}

// Postings returns up to limit tracked postings, most recently seen first.
// limit <= 0 returns everything.
func (m *Monitor) Postings(limit int) []model.Posting {
	return m.store.List(limit)
}

// Logs returns up to limit recent events, oldest first. limit <= 0 returns
// everything retained.
func (m *Monitor) Logs(limit int) []logbuf.Event {
	return m.ring.Recent(limit)
}

// ClearLogs empties the event feed.
func (m *Monitor) ClearLogs() {
	m.ring.Clear()
	m.ring.Append(logbuf.LevelInfo, "Logs cleared")
	m.stats.Bump()
}

// ClearPostings empties the posting store, and the persisted copy when one
// is backing it. Cleared postings will be rediscovered as new on the next
// cycle.
func (m *Monitor) ClearPostings() error {
	n := m.store.Count()
	m.store.Clear()
	m.stats.Bump()

	if c, ok := m.persister.(interface{ Clear(context.Context) error }); ok {
		if err := c.Clear(context.Background()); err != nil {
			return fmt.Errorf("clear persisted postings: %w", err)
		}
	}

	m.ring.Append(logbuf.LevelInfo, fmt.Sprintf("Cleared %d tracked postings", n))
	m.logger.Info("postings cleared", "count", n)
	return nil
}

// Start launches the polling loop.
func (m *Monitor) Start() {
	m.sched.Start()
	m.ring.Append(logbuf.LevelSuccess, "Monitoring started")
	m.stats.Bump()
}

// Stop halts the polling loop, waiting for any in-flight cycle.
func (m *Monitor) Stop() {
	m.sched.Stop()
	m.ring.Append(logbuf.LevelInfo, "Monitoring stopped")
	m.stats.Bump()
}

// Restart stops and restarts the polling loop.
func (m *Monitor) Restart() {
	m.sched.Restart()
	m.ring.Append(logbuf.LevelInfo, "Monitoring restarted")
	m.stats.Bump()
}

// Running reports whether the polling loop is active.
func (m *Monitor) Running() bool {
	return m.sched.Running()
}

// SetPollInterval changes the poll interval; a running loop picks it up on
// its next wakeup.
func (m *Monitor) SetPollInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", d)
	}
	m.sched.SetInterval(d)
	m.ring.Append(logbuf.LevelInfo, fmt.Sprintf("Poll interval set to %s", d))
	m.logger.Info("poll interval updated", "interval", d.String())
	m.stats.Bump()
	return nil
}

// RunOnce executes a single poll cycle outside the scheduler. Used by the
// one-shot CLI command.
func (m *Monitor) RunOnce(ctx context.Context) (engine.CycleOutcome, error) {
	return m.engine.RunCycle(ctx)
}

// Status returns the current snapshot. Snapshots are cached briefly; a
// cached copy is reused only while it is younger than the TTL and no state
// change has occurred since it was built.
func (m *Monitor) Status() StatusSnapshot {
	m.snapMu.Lock()
	defer m.snapMu.Unlock()

	gen := m.stats.Gen()
	if m.snapSeen && gen == m.snapGen && time.Since(m.snapAt) < m.statusTTL {
		return m.snap
	}

	m.snap = m.buildSnapshot()
	m.snapAt = time.Now()
	m.snapGen = gen
	m.snapSeen = true
	return m.snap
}

func (m *Monitor) buildSnapshot() StatusSnapshot {
	view := m.stats.View()
	running := m.sched.Running()
	interval := m.sched.Interval()

	degraded := view.ConsecutiveErrors >= m.degradedThreshold
	if running && !view.LastSuccess.IsZero() && time.Since(view.LastSuccess) > 3*interval {
		degraded = true
	}

	return StatusSnapshot{
		Running:       running,
		PollInterval:  interval.String(),
		TotalPostings: m.store.Count(),
		Degraded:      degraded,
		StatsView:     view,
		GeneratedAt:   time.Now(),
	}
}
