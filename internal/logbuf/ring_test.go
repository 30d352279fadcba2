package logbuf

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestAppendBelowCapacity(t *testing.T) {
	r := NewRing(5)
	r.Append(LevelInfo, "one")
	r.Append(LevelSuccess, "two")

	got := r.Recent(0)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Message != "one" || got[1].Message != "two" {
		t.Errorf("order wrong: %q, %q", got[0].Message, got[1].Message)
	}
}

func TestAppendEvictsOldestAtCapacity(t *testing.T) {
	const capacity = 10
	r := NewRing(capacity)

	for i := 0; i < capacity+7; i++ {
		r.Append(LevelInfo, fmt.Sprintf("msg-%d", i))
	}

	if r.Len() != capacity {
		t.Fatalf("Len = %d, want %d", r.Len(), capacity)
	}

	got := r.Recent(capacity)
	if len(got) != capacity {
		t.Fatalf("Recent len = %d, want %d", len(got), capacity)
	}
	// The last `capacity` appends survive, in append order.
	for i, e := range got {
		want := fmt.Sprintf("msg-%d", 7+i)
		if e.Message != want {
			t.Errorf("got[%d] = %q, want %q", i, e.Message, want)
		}
	}
}

func TestRecentLimit(t *testing.T) {
	r := NewRing(10)
	for i := 0; i < 6; i++ {
		r.Append(LevelInfo, fmt.Sprintf("msg-%d", i))
	}

	got := r.Recent(3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Message != "msg-3" || got[2].Message != "msg-5" {
		t.Errorf("limit returned wrong window: %q..%q", got[0].Message, got[2].Message)
	}
}

func TestClear(t *testing.T) {
	r := NewRing(5)
	r.Append(LevelError, "boom")
	r.Clear()

	if r.Len() != 0 {
		t.Errorf("Len = %d after Clear, want 0", r.Len())
	}
	if got := r.Recent(0); len(got) != 0 {
		t.Errorf("Recent returned %d events after Clear", len(got))
	}

	// Ring is reusable after Clear.
	r.Append(LevelInfo, "again")
	if r.Len() != 1 {
		t.Errorf("Len = %d after re-append, want 1", r.Len())
	}
}

func TestNonPositiveCapacityUsesDefault(t *testing.T) {
	r := NewRing(0)
	for i := 0; i < DefaultCapacity+1; i++ {
		r.Append(LevelInfo, "x")
	}
	if r.Len() != DefaultCapacity {
		t.Errorf("Len = %d, want %d", r.Len(), DefaultCapacity)
	}
}

func TestAppendEventKeepsTimestamp(t *testing.T) {
	r := NewRing(5)
	ts := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)
	r.AppendEvent(Event{Timestamp: ts, Level: LevelWarning, Message: "w"})

	got := r.Recent(1)
	if !got[0].Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", got[0].Timestamp, ts)
	}
}

func TestSingleWriterManyReaders(t *testing.T) {
	r := NewRing(50)
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
				r.Append(LevelInfo, fmt.Sprintf("msg-%d", i))
			}
		}
	}()

	for n := 0; n < 4; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				for range r.Recent(20) {
				}
				r.Len()
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(done)
	wg.Wait()
}
