package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// CycleFunc runs one poll cycle and reports whether it failed outright.
type CycleFunc func(ctx context.Context) error

// RecoverFunc is invoked after errorThreshold consecutive failed cycles,
// typically to reset fetcher sessions. Its error is logged, not fatal.
type RecoverFunc func() error

const restartPause = 200 * time.Millisecond

// Scheduler owns the main loop: it runs one immediate cycle on Start, then
// repeats on the poll interval, backing off exponentially while cycles fail.
type Scheduler struct {
	cycle   CycleFunc
	recover RecoverFunc
	logger  *slog.Logger

	baseBackoff    time.Duration
	maxBackoff     time.Duration
	errorThreshold int

	mu       sync.Mutex
	interval time.Duration
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// Options configures a Scheduler. Zero backoff fields fall back to the
// defaults below.
type Options struct {
	Cycle          CycleFunc
	Recover        RecoverFunc
	Interval       time.Duration
	BaseBackoff    time.Duration
	MaxBackoff     time.Duration
	ErrorThreshold int
	Logger         *slog.Logger
}

func New(opts Options) *Scheduler {
	s := &Scheduler{
		cycle:          opts.Cycle,
		recover:        opts.Recover,
		interval:       opts.Interval,
		baseBackoff:    opts.BaseBackoff,
		maxBackoff:     opts.MaxBackoff,
		errorThreshold: opts.ErrorThreshold,
		logger:         opts.Logger,
	}
	if s.baseBackoff <= 0 {
		s.baseBackoff = 30 * time.Second
	}
	if s.maxBackoff <= 0 {
		s.maxBackoff = 10 * time.Minute
	}
	if s.errorThreshold <= 0 {
		s.errorThreshold = 5
	}
	return s
}

// Running reports whether the polling loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Interval returns the current poll interval.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// SetInterval changes the poll interval. A running loop picks it up on its
// next wakeup.
func (s *Scheduler) SetInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = d
}

// Start launches the polling loop. Starting a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.logger.Warn("scheduler already running")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	s.logger.Info("starting scheduler", "interval", s.interval.String())
	go s.run(ctx, s.done)
}

// Stop cancels the loop and waits for the in-flight cycle to finish.
// Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done

	// The flag flips only after the loop has exited, so a concurrent Start
	// cannot launch a second loop alongside an in-flight cycle.
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	s.logger.Info("scheduler stopped")
}

// Restart stops the loop, pauses briefly, and starts it again.
func (s *Scheduler) Restart() {
	s.Stop()
	time.Sleep(restartPause)
	s.Start()
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	consecutive := 0
	for {
		if err := s.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			consecutive++
			s.logger.Error("poll cycle failed",
				"error", err,
				"consecutive", consecutive,
			)
			if consecutive%s.errorThreshold == 0 && s.recover != nil {
				s.logger.Warn("error threshold reached, resetting sessions",
					"threshold", s.errorThreshold,
				)
				if rerr := s.recover(); rerr != nil {
					s.logger.Error("session reset failed", "error", rerr)
				}
			}
		} else {
			consecutive = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.nextDelay(consecutive)):
		}
	}
}

// nextDelay returns the poll interval after a clean cycle, or the capped
// exponential backoff after consecutive failures: base * 2^consecutive,
// so the first failure already waits twice the base delay.
func (s *Scheduler) nextDelay(consecutive int) time.Duration {
	if consecutive == 0 {
		return s.Interval()
	}
	d := s.baseBackoff
	for i := 0; i < consecutive; i++ {
		d *= 2
		if d >= s.maxBackoff {
			return s.maxBackoff
		}
	}
	return d
}
