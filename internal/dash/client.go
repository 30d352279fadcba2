// Package dash is the terminal dashboard. It talks to a running monitor
// through its HTTP API and renders postings, events, and status live.
package dash

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hirewatch-dev/hirewatch/internal/logbuf"
	"github.com/hirewatch-dev/hirewatch/internal/model"
	"github.com/hirewatch-dev/hirewatch/internal/monitor"
)

// Client is a thin wrapper over the monitor's HTTP API.
type Client struct {
	http *resty.Client
}

// NewClient returns a client for the API at baseURL, e.g.
// "http://127.0.0.1:8000".
func NewClient(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second),
	}
}

func (c *Client) get(path string, out any) error {
	resp, err := c.http.R().SetResult(out).Get(path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode())
	}
	return nil
}

func (c *Client) post(path string) error {
	resp, err := c.http.R().Post(path)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("POST %s: status %d", path, resp.StatusCode())
	}
	return nil
}

// Postings fetches tracked postings, most recently seen first.
func (c *Client) Postings() ([]model.Posting, error) {
	var out struct {
		Postings []model.Posting `json:"postings"`
	}
	if err := c.get("/api/postings", &out); err != nil {
		return nil, err
	}
	return out.Postings, nil
}

// Logs fetches the recent event feed, oldest first.
func (c *Client) Logs() ([]logbuf.Event, error) {
	var out struct {
		Logs []logbuf.Event `json:"logs"`
	}
	if err := c.get("/api/logs", &out); err != nil {
		return nil, err
	}
	return out.Logs, nil
}

// Status fetches the current status snapshot.
func (c *Client) Status() (monitor.StatusSnapshot, error) {
	var out monitor.StatusSnapshot
	err := c.get("/api/status", &out)
	return out, err
}

// Start begins monitoring.
func (c *Client) Start() error { return c.post("/api/start") }

// Stop halts monitoring.
func (c *Client) Stop() error { return c.post("/api/stop") }

// Restart restarts monitoring.
func (c *Client) Restart() error { return c.post("/api/restart") }
