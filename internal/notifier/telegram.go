package notifier

import (
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hirewatch-dev/hirewatch/internal/model"
)

// Ensure TelegramNotifier implements model.Notifier.
var _ model.Notifier = (*TelegramNotifier)(nil)

const telegramAPIBase = "https://api.telegram.org"

// TelegramNotifier sends posting alerts to a Telegram chat via the Bot API.
type TelegramNotifier struct {
	client *resty.Client
	token  string
	chatID string
	logger *slog.Logger
}

// NewTelegramNotifier returns a notifier that sends one message per batch of
// new postings to the configured chat.
func NewTelegramNotifier(token, chatID string, logger *slog.Logger) *TelegramNotifier {
	client := resty.New().
		SetBaseURL(telegramAPIBase).
		SetTimeout(10 * time.Second)
	return &TelegramNotifier{
		client: client,
		token:  token,
		chatID: chatID,
		logger: logger,
	}
}

// SetBaseURL overrides the Bot API endpoint. Used by tests.
func (t *TelegramNotifier) SetBaseURL(base string) {
	t.client.SetBaseURL(base)
}

// Notify sends all new postings as a single HTML-formatted message.
func (t *TelegramNotifier) Notify(postings []model.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>%d new posting(s) found</b>\n\n", len(postings))
	for _, p := range postings {
		fmt.Fprintf(&b, "• <b>%s</b>", html.EscapeString(p.Title))
		if p.Location != "" {
			fmt.Fprintf(&b, " — %s", html.EscapeString(p.Location))
		}
		b.WriteString("\n")
		if p.URL != "" {
			fmt.Fprintf(&b, "  %s\n", html.EscapeString(p.URL))
		}
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	resp, err := t.client.R().
		SetFormData(map[string]string{
			"chat_id":                  t.chatID,
			"text":                     b.String(),
			"parse_mode":               "HTML",
			"disable_web_page_preview": "true",
		}).
		SetResult(&result).
		SetError(&result).
		Post(fmt.Sprintf("/bot%s/sendMessage", t.token))
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	if resp.IsError() || !result.OK {
		return fmt.Errorf("telegram API error: status %d: %s", resp.StatusCode(), result.Description)
	}

	t.logger.Info("telegram notification sent", "postings", len(postings))
	return nil
}
