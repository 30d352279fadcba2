package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hirewatch-dev/hirewatch/internal/model"
)

// UpsertResult reports whether an upsert inserted a new posting.
type UpsertResult struct {
	IsNew bool
}

// Memory is the deduplicating posting collection. All writes come from the
// poll loop; API handlers read concurrently. Critical sections are pure map
// operations, never I/O.
type Memory struct {
	mu       sync.RWMutex
	postings map[string]model.Posting
}

// NewMemory returns an empty posting store.
func NewMemory() *Memory {
	return &Memory{postings: make(map[string]model.Posting)}
}

// Upsert inserts p if its ID is unknown, otherwise advances LastSeen on the
// stored entry. First-observed content is authoritative: re-observation never
// overwrites title, URL, or description, and never moves FirstSeen.
func (m *Memory) Upsert(p model.Posting) UpsertResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.postings[p.ID]
	if !ok {
		m.postings[p.ID] = p
		return UpsertResult{IsNew: true}
	}

	if existing.ID != p.ID || existing.FirstSeen.IsZero() {
		// Corrupted entry under this key. This is a bug, not a runtime
		// condition; crash loudly instead of silently mending state.
		panic(fmt.Sprintf("store: invariant violated for posting %s", p.ID))
	}

	if p.LastSeen.After(existing.LastSeen) {
		existing.LastSeen = p.LastSeen
		m.postings[p.ID] = existing
	}
	return UpsertResult{IsNew: false}
}

// List returns a copy of up to limit postings ordered by LastSeen descending.
// limit <= 0 means no limit.
func (m *Memory) List(limit int) []model.Posting {
	m.mu.RLock()
	out := make([]model.Posting, 0, len(m.postings))
	for _, p := range m.postings {
		out = append(out, p)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].LastSeen.Equal(out[j].LastSeen) {
			return out[i].ID < out[j].ID
		}
		return out[i].LastSeen.After(out[j].LastSeen)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Count returns the number of stored postings.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.postings)
}

// EvictOlderThan removes postings whose LastSeen predates now-maxAge and
// returns how many were removed.
func (m *Memory) EvictOlderThan(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, p := range m.postings {
		if p.LastSeen.Before(cutoff) {
			delete(m.postings, id)
			removed++
		}
	}
	return removed
}

// Clear empties the store.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postings = make(map[string]model.Posting)
}
