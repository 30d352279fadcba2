// Package logbuf holds the monitor's in-memory event feed: a fixed-capacity
// ring of structured events the API serves without scraping process logs.
package logbuf

import (
	"sync"
	"time"
)

// Level classifies a ring event. SUCCESS exists alongside the usual levels
// so the feed can highlight new-posting hits.
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
	LevelSuccess Level = "SUCCESS"
)

// Event is one entry in the feed.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
}

// DefaultCapacity matches the feed size the API exposes by default.
const DefaultCapacity = 100

// Ring is a bounded FIFO of events: once full, appending evicts the oldest
// entry. Written by the poll loop, read concurrently by API handlers.
type Ring struct {
	mu     sync.RWMutex
	events []Event
	start  int // index of the oldest event
	count  int
}

// NewRing returns a ring holding at most capacity events. A non-positive
// capacity falls back to DefaultCapacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{events: make([]Event, capacity)}
}

// Append adds an event, evicting the oldest once at capacity.
func (r *Ring) Append(level Level, message string) {
	r.AppendEvent(Event{Timestamp: time.Now(), Level: level, Message: message})
}

// AppendEvent adds a fully formed event.
func (r *Ring) AppendEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count < len(r.events) {
		r.events[(r.start+r.count)%len(r.events)] = e
		r.count++
		return
	}
	r.events[r.start] = e
	r.start = (r.start + 1) % len(r.events)
}

// Recent returns a copy of the most recent limit events, oldest first
// (newest last). limit <= 0 returns everything retained.
func (r *Ring) Recent(limit int) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := r.count
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Event, n)
	// Walk backwards from the newest entry.
	for i := 0; i < n; i++ {
		idx := (r.start + r.count - n + i) % len(r.events)
		out[i] = r.events[idx]
	}
	return out
}

// Len returns the number of retained events.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Clear empties the ring.
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.start = 0
	r.count = 0
}
