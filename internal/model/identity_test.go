package model

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func TestNewPostingStableIDForSameURL(t *testing.T) {
	a := RawPosting{Title: "Warehouse Associate", Location: "Toronto, ON", URL: "https://hiring.example.ca/jobs/123"}
	b := RawPosting{
		Title:       "Warehouse  Associate", // incidental whitespace differs
		Location:    "Toronto, ON",
		URL:         "https://HIRING.example.ca/jobs/123/",
		Description: "completely different description text",
	}

	pa, err := NewPosting(a, testNow)
	if err != nil {
		t.Fatalf("NewPosting(a): %v", err)
	}
	pb, err := NewPosting(b, testNow)
	if err != nil {
		t.Fatalf("NewPosting(b): %v", err)
	}

	if pa.ID != pb.ID {
		t.Errorf("same canonical URL produced different IDs: %s vs %s", pa.ID, pb.ID)
	}
}

func TestNewPostingDifferentURLsDifferentIDs(t *testing.T) {
	a := RawPosting{Title: "Driver", URL: "https://x/1"}
	b := RawPosting{Title: "Driver", URL: "https://x/2"}

	pa, _ := NewPosting(a, testNow)
	pb, _ := NewPosting(b, testNow)

	if pa.ID == pb.ID {
		t.Errorf("distinct URLs produced colliding ID %s", pa.ID)
	}
}

func TestNewPostingQueryStringIsPartOfIdentity(t *testing.T) {
	a := RawPosting{Title: "Warehouse Associate", URL: "https://hiring.example.ca/job?id=111"}
	b := RawPosting{Title: "Delivery Driver", URL: "https://hiring.example.ca/job?id=222"}

	pa, err := NewPosting(a, testNow)
	if err != nil {
		t.Fatalf("NewPosting(a): %v", err)
	}
	pb, err := NewPosting(b, testNow)
	if err != nil {
		t.Fatalf("NewPosting(b): %v", err)
	}

	if pa.ID == pb.ID {
		t.Errorf("URLs differing only in query produced colliding ID %s", pa.ID)
	}
}

func TestNewPostingQueryOrderAndFragmentNormalized(t *testing.T) {
	a := RawPosting{Title: "Sorter", URL: "https://x/job?b=2&a=1"}
	b := RawPosting{Title: "Sorter", URL: "https://x/job?a=1&b=2#apply"}

	pa, _ := NewPosting(a, testNow)
	pb, _ := NewPosting(b, testNow)

	if pa.ID != pb.ID {
		t.Errorf("reordered query / fragment changed ID: %s vs %s", pa.ID, pb.ID)
	}
}

func TestNewPostingFallsBackToTitleLocation(t *testing.T) {
	a := RawPosting{Title: "Delivery Associate", Location: "Calgary, AB", URL: "not a url"}
	b := RawPosting{Title: "delivery   associate", Location: "calgary, ab"}

	pa, err := NewPosting(a, testNow)
	if err != nil {
		t.Fatalf("NewPosting(a): %v", err)
	}
	pb, err := NewPosting(b, testNow)
	if err != nil {
		t.Fatalf("NewPosting(b): %v", err)
	}

	if pa.ID != pb.ID {
		t.Errorf("normalized title+location produced different IDs: %s vs %s", pa.ID, pb.ID)
	}
}

func TestNewPostingRejectsEmptyTitle(t *testing.T) {
	_, err := NewPosting(RawPosting{Title: "   ", URL: "https://x/1"}, testNow)
	if !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("want ErrEmptyTitle, got %v", err)
	}
}

func TestNewPostingBadURLUsesFallbackKey(t *testing.T) {
	p, err := NewPosting(RawPosting{Title: "Sorter", URL: "://bad"}, testNow)
	if err != nil {
		t.Fatalf("fallback identity should succeed: %v", err)
	}
	if p.ID == "" {
		t.Error("empty ID from fallback identity")
	}
}

func TestNewPostingTruncatesAndSanitizes(t *testing.T) {
	long := strings.Repeat("x", 5000)
	raw := RawPosting{Title: "Associate", URL: "https://x/1", Description: long + "\xff"}

	p, err := NewPosting(raw, testNow)
	if err != nil {
		t.Fatalf("NewPosting: %v", err)
	}
	if n := len([]rune(p.Description)); n > 2048 {
		t.Errorf("description not truncated: %d runes", n)
	}
}

func TestNewPostingTimestamps(t *testing.T) {
	p, err := NewPosting(RawPosting{Title: "Associate", URL: "https://x/1"}, testNow)
	if err != nil {
		t.Fatalf("NewPosting: %v", err)
	}
	if !p.FirstSeen.Equal(testNow) || !p.LastSeen.Equal(testNow) {
		t.Errorf("timestamps not set to now: first=%v last=%v", p.FirstSeen, p.LastSeen)
	}
}
