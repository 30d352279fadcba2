package model

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// maxFieldRunes bounds every free-text field before hashing and storage.
const maxFieldRunes = 2048

// NewPosting builds a Posting from raw scraped fields, computing a
// deterministic ID so the same real-world posting hashes to the same value
// across cycles and process restarts.
//
// The natural key is the canonical URL when the raw URL parses as http(s);
// otherwise normalized title+location. Construction fails closed: a posting
// with no usable identity field is rejected rather than stored under a
// colliding key.
func NewPosting(raw RawPosting, now time.Time) (Posting, error) {
	title := sanitize(raw.Title)
	if strings.TrimSpace(title) == "" {
		return Posting{}, ErrEmptyTitle
	}
	location := sanitize(raw.Location)

	key := canonicalURLKey(raw.URL)
	if key == "" {
		key = textKey(title, location)
	}
	if key == "" {
		return Posting{}, ErrNoIdentity
	}

	sum := sha256.Sum256([]byte(key))

	return Posting{
		ID:          hex.EncodeToString(sum[:16]),
		Title:       title,
		Location:    location,
		URL:         sanitize(raw.URL),
		Description: sanitize(raw.Description),
		PostedDate:  sanitize(raw.PostedDate),
		FirstSeen:   now,
		LastSeen:    now,
	}, nil
}

// canonicalURLKey reduces a URL to scheme://host/path?query with a
// lowercased host, no trailing slash, and the query parameters sorted.
// The query is part of identity: many career sites address individual
// postings as /job?id=N, so dropping it would collapse distinct postings
// into one ID. Only the fragment is stripped. Returns "" when the URL is
// not a usable natural key.
func canonicalURLKey(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	path := strings.TrimRight(u.EscapedPath(), "/")
	key := "url|" + u.Scheme + "://" + strings.ToLower(u.Host) + path
	if q := u.Query().Encode(); q != "" {
		key += "?" + q
	}
	return key
}

func textKey(title, location string) string {
	t := collapseSpace(strings.ToLower(title))
	if t == "" {
		return ""
	}
	return "txt|" + t + "|" + collapseSpace(strings.ToLower(location))
}

// sanitize coerces malformed text to valid UTF-8 and truncates it to the
// field bound. Truncation happens before hashing so identity stays stable
// for oversized inputs.
func sanitize(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "�")
	}
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) > maxFieldRunes {
		s = string(runes[:maxFieldRunes])
	}
	return s
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
