package model

import (
	"context"
	"time"
)

// Posting is one deduplicated job opening tracked by the monitor.
// Content fields are fixed at first observation; only LastSeen moves afterwards.
type Posting struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	PostedDate  string    `json:"posted_date"` // raw source text, e.g. "2026-08-12" or "Posted Today"
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
}

// RawPosting is a listing as extracted from a page, before identity
// construction and quality filtering.
type RawPosting struct {
	Title       string
	Location    string
	URL         string
	Description string
	PostedDate  string
}

// PostingFetcher fetches raw postings from a single source (hiring page).
type PostingFetcher interface {
	Fetch(ctx context.Context) ([]RawPosting, error)
	// Reset reinitializes the backend (used as the scheduler's recovery hook
	// after repeated cycle failures).
	Reset() error
}

// Notifier delivers alerts for newly discovered postings.
type Notifier interface {
	Notify(postings []Posting) error
}

// Persister writes the accumulated posting set to durable storage and loads
// it back at startup. Invoked outside the store's lock, after cycles that
// found new postings.
type Persister interface {
	Save(ctx context.Context, postings []Posting) error
	Load(ctx context.Context) ([]Posting, error)
}
