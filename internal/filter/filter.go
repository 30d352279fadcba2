package filter

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/hirewatch-dev/hirewatch/internal/model"
)

// minTitleRunes is the shortest title considered a plausible job listing.
// Heuristic extraction produces plenty of one- and two-character fragments.
const minTitleRunes = 4

// Quality rejects raw postings that are implausible as job listings: titles
// too short to mean anything, or URLs that are present but not well-formed
// http(s) links. A missing URL is allowed; identity construction falls back
// to title and location. Rejections are quality drops, not errors.
type Quality struct{}

// NewQuality returns the standard quality filter.
func NewQuality() *Quality { return &Quality{} }

// Check returns ok=false and a human-readable reason when the raw posting
// fails a plausibility check.
func (q *Quality) Check(raw model.RawPosting) (reason string, ok bool) {
	if utf8.RuneCountInString(strings.TrimSpace(raw.Title)) < minTitleRunes {
		return "title too short", false
	}
	if strings.TrimSpace(raw.URL) != "" && !wellFormedURL(raw.URL) {
		return "malformed URL", false
	}
	return "", true
}

func wellFormedURL(raw string) bool {
	u, err := url.ParseRequestURI(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Keyword matches postings whose title contains any include keyword and none
// of the exclude keywords. Matching is case-insensitive substring; an empty
// include list matches all.
type Keyword struct {
	include []string
	exclude []string
}

// NewKeyword returns a keyword filter over posting titles.
func NewKeyword(include, exclude []string) *Keyword {
	return &Keyword{include: include, exclude: exclude}
}

// Match reports whether the posting passes the keyword rules.
func (f *Keyword) Match(p model.Posting) bool {
	title := strings.ToLower(p.Title)

	for _, kw := range f.exclude {
		if kw != "" && strings.Contains(title, strings.ToLower(kw)) {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}
	for _, kw := range f.include {
		if strings.Contains(title, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
