package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
poll_interval: 5m
sources:
  - name: amazon
    url: https://example.com/jobs
    backend: http
    enabled: true
fetch:
  max_retries: 2
  retry_delay: 30s
filters:
  title_keywords:
    - warehouse
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PollInterval != 5*time.Minute {
		t.Errorf("PollInterval = %v, want 5m", cfg.PollInterval)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "amazon" || cfg.Sources[0].Backend != "http" {
		t.Errorf("Sources = %+v", cfg.Sources)
	}
	if cfg.Fetch.MaxRetries != 2 || cfg.Fetch.RetryDelay != 30*time.Second {
		t.Errorf("Fetch = %+v", cfg.Fetch)
	}
	if len(cfg.Filters.TitleKeywords) != 1 || cfg.Filters.TitleKeywords[0] != "warehouse" {
		t.Errorf("TitleKeywords = %v", cfg.Filters.TitleKeywords)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: amazon
    url: https://example.com/jobs
    enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PollInterval != 15*time.Minute {
		t.Errorf("PollInterval = %v, want 15m default", cfg.PollInterval)
	}
	if cfg.Fetch.MaxRetries != 3 {
		t.Errorf("Fetch.MaxRetries = %d, want 3", cfg.Fetch.MaxRetries)
	}
	if cfg.Fetch.RetryDelay != 60*time.Second {
		t.Errorf("Fetch.RetryDelay = %v, want 60s", cfg.Fetch.RetryDelay)
	}
	if cfg.Backoff.Base != 30*time.Second || cfg.Backoff.Max != 10*time.Minute {
		t.Errorf("Backoff = %+v", cfg.Backoff)
	}
	if cfg.Backoff.ErrorThreshold != 5 {
		t.Errorf("Backoff.ErrorThreshold = %d, want 5", cfg.Backoff.ErrorThreshold)
	}
	if cfg.Logs.Capacity != 100 {
		t.Errorf("Logs.Capacity = %d, want 100", cfg.Logs.Capacity)
	}
	if cfg.Status.TTL != 5*time.Second {
		t.Errorf("Status.TTL = %v, want 5s", cfg.Status.TTL)
	}
	if cfg.Eviction.EveryCycles != 100 || cfg.Eviction.Retention != 720*time.Hour {
		t.Errorf("Eviction = %+v", cfg.Eviction)
	}
	if cfg.Server.Addr() != "0.0.0.0:8000" {
		t.Errorf("Server.Addr() = %q, want 0.0.0.0:8000", cfg.Server.Addr())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "poll_interval: [broken")
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_NoEnabledSources(t *testing.T) {
	path := writeConfig(t, `
poll_interval: 5m
sources:
  - name: amazon
    url: https://example.com/jobs
    enabled: false
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error when no source is enabled")
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	path := writeConfig(t, `
poll_interval: 5m
sources:
  - name: amazon
    url: https://example.com/jobs
    backend: firefox
    enabled: true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error for unknown backend")
	}
}

func TestLoad_SlackRequiresWebhook(t *testing.T) {
	path := writeConfig(t, `
poll_interval: 5m
sources:
  - name: amazon
    url: https://example.com/jobs
    enabled: true
notification:
  type: slack
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error for slack without webhook_url")
	}
}

func TestLoad_TelegramRequiresCredentials(t *testing.T) {
	path := writeConfig(t, `
poll_interval: 5m
sources:
  - name: amazon
    url: https://example.com/jobs
    enabled: true
notification:
  type: telegram
  telegram:
    bot_token: abc123
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error for telegram without chat_id")
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("HW_TEST_WEBHOOK", "https://hooks.slack.com/services/T0/B0/x")
	path := writeConfig(t, `
poll_interval: 5m
sources:
  - name: amazon
    url: https://example.com/jobs
    enabled: true
notification:
  type: slack
  webhook_url: ${HW_TEST_WEBHOOK}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notification.WebhookURL != "https://hooks.slack.com/services/T0/B0/x" {
		t.Errorf("WebhookURL = %q, env var not expanded", cfg.Notification.WebhookURL)
	}
}

func TestLoad_PersistenceRequiresPath(t *testing.T) {
	path := writeConfig(t, `
poll_interval: 5m
sources:
  - name: amazon
    url: https://example.com/jobs
    enabled: true
persistence:
  enabled: true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error for persistence without path")
	}
}
