package engine

import (
	"sync"
	"time"
)

// Stats holds the cycle counters. All counters are monotonically
// non-decreasing except ConsecutiveErrors, which resets on a successful
// cycle. Written by the poll loop, read by status snapshots.
type Stats struct {
	mu                sync.Mutex
	totalCycles       int
	totalObserved     int
	newSession        int
	consecutiveErrors int
	totalErrors       int
	lastCycle         time.Time
	lastSuccess       time.Time
	gen               uint64
}

// StatsView is a copy-out of the counters at one instant.
type StatsView struct {
	TotalCycles           int       `json:"total_cycles"`
	TotalPostingsObserved int       `json:"total_postings_observed"`
	NewPostingsSession    int       `json:"new_postings_this_session"`
	ConsecutiveErrors     int       `json:"consecutive_errors"`
	TotalErrors           int       `json:"total_errors"`
	LastCycle             time.Time `json:"last_cycle"`
	LastSuccess           time.Time `json:"last_success"`
}

// NewStats returns zeroed counters.
func NewStats() *Stats { return &Stats{} }

// RecordCycle folds one cycle's outcome into the counters.
func (s *Stats) RecordCycle(observed, newCount, sourceErrors int, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalCycles++
	s.totalObserved += observed
	s.newSession += newCount
	s.totalErrors += sourceErrors
	s.lastCycle = time.Now()

	if failed {
		s.consecutiveErrors++
	} else {
		s.consecutiveErrors = 0
		s.lastSuccess = s.lastCycle
	}
	s.gen++
}

// ConsecutiveErrors returns the current run of failed cycles.
func (s *Stats) ConsecutiveErrors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consecutiveErrors
}

// View returns a copy of all counters.
func (s *Stats) View() StatsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsView{
		TotalCycles:           s.totalCycles,
		TotalPostingsObserved: s.totalObserved,
		NewPostingsSession:    s.newSession,
		ConsecutiveErrors:     s.consecutiveErrors,
		TotalErrors:           s.totalErrors,
		LastCycle:             s.lastCycle,
		LastSuccess:           s.lastSuccess,
	}
}

// Gen returns a generation counter that advances on every state change;
// snapshot caches use it to detect staleness.
func (s *Stats) Gen() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Bump advances the generation without touching counters. Called by
// administrative operations (clear postings/logs) that invalidate cached
// snapshots.
func (s *Stats) Bump() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
}
