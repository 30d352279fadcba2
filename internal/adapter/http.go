package adapter

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/hirewatch-dev/hirewatch/internal/model"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Ensure HTTPFetcher implements model.PostingFetcher.
var _ model.PostingFetcher = (*HTTPFetcher)(nil)

// HTTPFetcher fetches a hiring page with a plain HTTP client and extracts
// listings heuristically. The lightweight backend for pages that render
// server-side.
type HTTPFetcher struct {
	source  string
	pageURL *url.URL
	timeout time.Duration

	mu     sync.Mutex
	client *resty.Client
}

// NewHTTPFetcher returns a fetcher for the given page URL.
func NewHTTPFetcher(source, pageURL string, timeout time.Duration) (*HTTPFetcher, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing source URL %q: %w", pageURL, err)
	}
	f := &HTTPFetcher{source: source, pageURL: u, timeout: timeout}
	f.client = f.newClient()
	return f, nil
}

func (f *HTTPFetcher) newClient() *resty.Client {
	c := resty.New()
	c.SetTimeout(f.timeout)
	c.SetHeader("User-Agent", defaultUserAgent)
	c.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	c.SetHeader("Accept-Language", "en-US,en;q=0.5")
	return c
}

// Fetch downloads the page and returns the extracted raw postings. Zero
// results with a 200 response is a valid outcome, not an error.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]model.RawPosting, error) {
	f.mu.Lock()
	client := f.client
	f.mu.Unlock()

	resp, err := client.R().SetContext(ctx).Get(f.pageURL.String())
	if err != nil {
		return nil, &model.FetchError{Source: f.source, Err: err}
	}
	if resp.StatusCode() != 200 {
		retryAfter := parseRetryAfter(resp.Header().Get("Retry-After"))
		return nil, &model.FetchError{
			Source: f.source,
			Err:    &model.HTTPError{StatusCode: resp.StatusCode(), RetryAfter: retryAfter},
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, &model.FetchError{Source: f.source, Err: fmt.Errorf("parsing HTML: %w", err)}
	}

	return extractPostings(doc, f.pageURL), nil
}

// Reset rebuilds the HTTP client, dropping any wedged connections. Serves as
// the scheduler's recovery hook.
func (f *HTTPFetcher) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.client = f.newClient()
	return nil
}
