package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hirewatch-dev/hirewatch/internal/model"
)

func makePosting(id string, seen time.Time) model.Posting {
	return model.Posting{
		ID:        id,
		Title:     "Warehouse Associate",
		Location:  "Toronto, ON",
		URL:       "https://hiring.example.ca/jobs/" + id,
		FirstSeen: seen,
		LastSeen:  seen,
	}
}

func TestUpsertNewThenSeen(t *testing.T) {
	m := NewMemory()
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(5 * time.Minute)

	if res := m.Upsert(makePosting("a", t0)); !res.IsNew {
		t.Error("first upsert should be new")
	}

	// Re-observation with a later LastSeen and different content.
	p := makePosting("a", t1)
	p.Description = "changed text"
	if res := m.Upsert(p); res.IsNew {
		t.Error("second upsert should not be new")
	}

	if m.Count() != 1 {
		t.Fatalf("count = %d, want 1", m.Count())
	}

	stored := m.List(0)[0]
	if !stored.FirstSeen.Equal(t0) {
		t.Errorf("FirstSeen changed on re-observation: %v", stored.FirstSeen)
	}
	if !stored.LastSeen.Equal(t1) {
		t.Errorf("LastSeen not advanced: %v", stored.LastSeen)
	}
	if stored.Description != "" {
		t.Errorf("re-observation overwrote content: %q", stored.Description)
	}
}

func TestUpsertLastSeenNeverRegresses(t *testing.T) {
	m := NewMemory()
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	m.Upsert(makePosting("a", t0))
	m.Upsert(makePosting("a", t0.Add(-time.Hour)))

	if got := m.List(0)[0].LastSeen; !got.Equal(t0) {
		t.Errorf("LastSeen regressed to %v", got)
	}
}

func TestListOrderAndLimit(t *testing.T) {
	m := NewMemory()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		m.Upsert(makePosting(fmt.Sprintf("p%d", i), base.Add(time.Duration(i)*time.Minute)))
	}

	got := m.List(3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].ID != "p4" || got[1].ID != "p3" || got[2].ID != "p2" {
		t.Errorf("unexpected order: %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestListReturnsCopy(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	m.Upsert(makePosting("a", now))

	snap := m.List(0)
	snap[0].Title = "mutated"

	if m.List(0)[0].Title == "mutated" {
		t.Error("List returned a live reference into the store")
	}
}

func TestEvictOlderThan(t *testing.T) {
	m := NewMemory()
	m.Upsert(makePosting("old", time.Now().Add(-48*time.Hour)))
	m.Upsert(makePosting("fresh", time.Now()))

	if removed := m.EvictOlderThan(24 * time.Hour); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if m.Count() != 1 {
		t.Errorf("count = %d, want 1", m.Count())
	}
	if m.List(0)[0].ID != "fresh" {
		t.Error("evicted the wrong posting")
	}
}

func TestClear(t *testing.T) {
	m := NewMemory()
	m.Upsert(makePosting("a", time.Now()))
	m.Clear()
	if m.Count() != 0 {
		t.Errorf("count = %d after Clear, want 0", m.Count())
	}
}

func TestConcurrentReadersDuringUpserts(t *testing.T) {
	m := NewMemory()
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
				m.Upsert(makePosting(fmt.Sprintf("p%d", i%100), time.Now()))
			}
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				for range m.List(10) {
				}
				m.Count()
			}
		}()
	}

	// Let readers finish, then stop the writer.
	time.Sleep(50 * time.Millisecond)
	close(done)
	wg.Wait()
}
