// Package notifier delivers new-posting alerts. All notifiers implement
// model.Notifier; the engine treats delivery failures as non-fatal.
package notifier

import (
	"log/slog"

	"github.com/hirewatch-dev/hirewatch/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new postings to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each posting via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each posting with title, location, and URL. Returns nil
// (stdout logging does not fail).
func (n *LogNotifier) Notify(postings []model.Posting) error {
	for _, p := range postings {
		args := []any{"title", p.Title, "location", p.Location, "url", p.URL}
		if p.PostedDate != "" {
			args = append(args, "posted", p.PostedDate)
		}
		n.logger.Info("new posting", args...)
	}
	return nil
}
