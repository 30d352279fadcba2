package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the HireWatch monitor.
type Config struct {
	PollInterval time.Duration
	Sources      []SourceConfig
	Fetch        FetchConfig
	Pacing       PacingConfig
	Backoff      BackoffConfig
	Logs         LogsConfig
	Status       StatusConfig
	Eviction     EvictionConfig
	Persistence  PersistenceConfig
	Filters      FilterConfig
	Notification NotificationConfig
	Server       ServerConfig
}

// SourceConfig describes one careers page to poll.
type SourceConfig struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Backend string `yaml:"backend"` // "http" or "chrome"
	Enabled bool   `yaml:"enabled"`
}

// FetchConfig controls per-source retry behavior and request timeout.
type FetchConfig struct {
	MaxRetries int
	RetryDelay time.Duration // fixed delay between attempts on the same source
	Timeout    time.Duration // per-request timeout
}

// PacingConfig controls host-level request pacing.
type PacingConfig struct {
	MinDelay time.Duration // minimum gap between requests to the same host
}

// BackoffConfig controls the scheduler's reaction to failed cycles.
type BackoffConfig struct {
	Base           time.Duration
	Max            time.Duration
	ErrorThreshold int // consecutive failed cycles before sessions are reset
}

// LogsConfig sizes the in-memory event feed.
type LogsConfig struct {
	Capacity int
}

// StatusConfig tunes status snapshot caching.
type StatusConfig struct {
	TTL time.Duration
}

// EvictionConfig controls periodic pruning of stale postings.
type EvictionConfig struct {
	EveryCycles int
	Retention   time.Duration
}

// PersistenceConfig controls the SQLite-backed posting store.
type PersistenceConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// FilterConfig holds title keyword filter settings.
type FilterConfig struct {
	TitleKeywords        []string `yaml:"title_keywords"`
	TitleExcludeKeywords []string `yaml:"title_exclude_keywords"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string         `yaml:"type"`        // "log", "slack", or "telegram"
	WebhookURL string         `yaml:"webhook_url"` // required if type is "slack"
	Telegram   TelegramConfig `yaml:"telegram"`    // required if type is "telegram"
}

// TelegramConfig holds Telegram bot credentials.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// ServerConfig controls the HTTP API listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations
// as strings).
type rawConfig struct {
	PollInterval string             `yaml:"poll_interval"`
	Sources      []SourceConfig     `yaml:"sources"`
	Fetch        rawFetchConfig     `yaml:"fetch"`
	Pacing       rawPacingConfig    `yaml:"pacing"`
	Backoff      rawBackoffConfig   `yaml:"backoff"`
	Logs         LogsConfig         `yaml:"logs"`
	Status       rawStatusConfig    `yaml:"status"`
	Eviction     rawEvictionConfig  `yaml:"eviction"`
	Persistence  PersistenceConfig  `yaml:"persistence"`
	Filters      FilterConfig       `yaml:"filters"`
	Notification NotificationConfig `yaml:"notification"`
	Server       ServerConfig       `yaml:"server"`
}

type rawFetchConfig struct {
	MaxRetries int    `yaml:"max_retries"`
	RetryDelay string `yaml:"retry_delay"`
	Timeout    string `yaml:"timeout"`
}

type rawPacingConfig struct {
	MinDelay string `yaml:"min_delay"`
}

type rawBackoffConfig struct {
	Base           string `yaml:"base"`
	Max            string `yaml:"max"`
	ErrorThreshold int    `yaml:"error_threshold"`
}

type rawStatusConfig struct {
	TTL string `yaml:"ttl"`
}

type rawEvictionConfig struct {
	EveryCycles int    `yaml:"every_cycles"`
	Retention   string `yaml:"retention"`
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	interval := 15 * time.Minute // default
	if raw.PollInterval != "" {
		interval, err = time.ParseDuration(raw.PollInterval)
		if err != nil {
			return nil, fmt.Errorf("parse poll_interval %q: %w", raw.PollInterval, err)
		}
	}

	retryDelay, err := durationOr(raw.Fetch.RetryDelay, 60*time.Second, "fetch.retry_delay")
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := durationOr(raw.Fetch.Timeout, 20*time.Second, "fetch.timeout")
	if err != nil {
		return nil, err
	}
	minDelay, err := durationOr(raw.Pacing.MinDelay, 1*time.Second, "pacing.min_delay")
	if err != nil {
		return nil, err
	}
	backoffBase, err := durationOr(raw.Backoff.Base, 30*time.Second, "backoff.base")
	if err != nil {
		return nil, err
	}
	backoffMax, err := durationOr(raw.Backoff.Max, 10*time.Minute, "backoff.max")
	if err != nil {
		return nil, err
	}
	statusTTL, err := durationOr(raw.Status.TTL, 5*time.Second, "status.ttl")
	if err != nil {
		return nil, err
	}
	retention, err := durationOr(raw.Eviction.Retention, 720*time.Hour, "eviction.retention")
	if err != nil {
		return nil, err
	}

	maxRetries := raw.Fetch.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	errorThreshold := raw.Backoff.ErrorThreshold
	if errorThreshold == 0 {
		errorThreshold = 5
	}
	logCapacity := raw.Logs.Capacity
	if logCapacity == 0 {
		logCapacity = 100
	}
	evictEvery := raw.Eviction.EveryCycles
	if evictEvery == 0 {
		evictEvery = 100
	}

	server := raw.Server
	if server.Host == "" {
		server.Host = "0.0.0.0"
	}
	if server.Port == 0 {
		server.Port = 8000
	}

	cfg := &Config{
		PollInterval: interval,
		Sources:      raw.Sources,
		Fetch: FetchConfig{
			MaxRetries: maxRetries,
			RetryDelay: retryDelay,
			Timeout:    fetchTimeout,
		},
		Pacing: PacingConfig{MinDelay: minDelay},
		Backoff: BackoffConfig{
			Base:           backoffBase,
			Max:            backoffMax,
			ErrorThreshold: errorThreshold,
		},
		Logs:         LogsConfig{Capacity: logCapacity},
		Status:       StatusConfig{TTL: statusTTL},
		Eviction:     EvictionConfig{EveryCycles: evictEvery, Retention: retention},
		Persistence:  raw.Persistence,
		Filters:      raw.Filters,
		Notification: raw.Notification,
		Server:       server,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func durationOr(s string, def time.Duration, field string) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return d, nil
}

const slackWebhookPrefix = "https://hooks.slack.com/"

func validate(cfg *Config) error {
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %v", cfg.PollInterval)
	}

	enabled := 0
	for i, s := range cfg.Sources {
		if !s.Enabled {
			continue
		}
		enabled++
		if s.Name == "" {
			return fmt.Errorf("sources[%d].name is required", i)
		}
		if s.URL == "" {
			return fmt.Errorf("sources[%d].url is required", i)
		}
		switch s.Backend {
		case "", "http", "chrome":
		default:
			return fmt.Errorf("sources[%d].backend must be \"http\" or \"chrome\", got %q", i, s.Backend)
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	if cfg.Backoff.Base > cfg.Backoff.Max {
		return fmt.Errorf("backoff.base %v exceeds backoff.max %v", cfg.Backoff.Base, cfg.Backoff.Max)
	}

	if cfg.Persistence.Enabled && cfg.Persistence.Path == "" {
		return fmt.Errorf("persistence.path is required when persistence.enabled is true")
	}

	switch cfg.Notification.Type {
	case "", "log":
	case "slack":
		url := cfg.Notification.WebhookURL
		if url == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if len(url) < len(slackWebhookPrefix) || url[:len(slackWebhookPrefix)] != slackWebhookPrefix {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	case "telegram":
		if cfg.Notification.Telegram.BotToken == "" {
			return fmt.Errorf("notification.telegram.bot_token is required when type is \"telegram\"")
		}
		if cfg.Notification.Telegram.ChatID == "" {
			return fmt.Errorf("notification.telegram.chat_id is required when type is \"telegram\"")
		}
	default:
		return fmt.Errorf("notification.type must be \"log\", \"slack\", or \"telegram\", got %q", cfg.Notification.Type)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	return nil
}
