package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hirewatch-dev/hirewatch/internal/model"
)

func newTestPersister(t *testing.T) *SQLitePersister {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	p, err := NewSQLitePersister(dbPath)
	if err != nil {
		t.Fatalf("NewSQLitePersister: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestSaveThenLoad(t *testing.T) {
	p := newTestPersister(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	err := p.Save(ctx, []model.Posting{makePosting("a", now), makePosting("b", now)})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d postings, want 2", len(loaded))
	}
}

func TestSaveConflictKeepsFirstSeen(t *testing.T) {
	p := newTestPersister(t)
	ctx := context.Background()
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	if err := p.Save(ctx, []model.Posting{makePosting("a", t0)}); err != nil {
		t.Fatalf("first Save: %v", err)
	}

	again := makePosting("a", t1)
	again.FirstSeen = t1 // would clobber if the upsert were naive
	if err := p.Save(ctx, []model.Posting{again}); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	loaded, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("loaded %d postings, want 1", len(loaded))
	}
	if !loaded[0].FirstSeen.Equal(t0) {
		t.Errorf("FirstSeen = %v, want %v", loaded[0].FirstSeen, t0)
	}
	if !loaded[0].LastSeen.Equal(t1) {
		t.Errorf("LastSeen = %v, want %v", loaded[0].LastSeen, t1)
	}
}

func TestSaveEmptyIsNoop(t *testing.T) {
	p := newTestPersister(t)
	if err := p.Save(context.Background(), nil); err != nil {
		t.Fatalf("Save(nil): %v", err)
	}
}

func TestClearDeletesEverything(t *testing.T) {
	p := newTestPersister(t)
	ctx := context.Background()

	if err := p.Save(ctx, []model.Posting{makePosting("a", time.Now())}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := p.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	loaded, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("loaded %d postings after Clear, want 0", len(loaded))
	}
}

func TestCleanupRemovesStale(t *testing.T) {
	p := newTestPersister(t)
	ctx := context.Background()

	stale := makePosting("old", time.Now().Add(-48*time.Hour))
	fresh := makePosting("new", time.Now())
	if err := p.Save(ctx, []model.Posting{stale, fresh}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := p.Cleanup(ctx, 24*time.Hour); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	loaded, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "new" {
		t.Errorf("cleanup kept wrong rows: %+v", loaded)
	}
}
