package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/hirewatch-dev/hirewatch/internal/model"
)

// Ensure ChromeFetcher implements model.PostingFetcher.
var _ model.PostingFetcher = (*ChromeFetcher)(nil)

// ChromeFetcher renders a hiring page in headless Chrome before extraction.
// Needed for pages that assemble their listings client-side.
type ChromeFetcher struct {
	source  string
	pageURL *url.URL
	timeout time.Duration
	// settle is how long to wait after load for dynamic content.
	settle time.Duration

	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromeFetcher returns a fetcher that drives a headless browser. The
// browser process is shared across cycles and relaunched by Reset.
func NewChromeFetcher(source, pageURL string, timeout time.Duration) (*ChromeFetcher, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing source URL %q: %w", pageURL, err)
	}

	f := &ChromeFetcher{
		source:  source,
		pageURL: u,
		timeout: timeout,
		settle:  3 * time.Second,
	}
	f.allocCtx, f.allocCancel = newAllocator()
	return f, nil
}

func newAllocator() (context.Context, context.CancelFunc) {
	return chromedp.NewExecAllocator(
		context.Background(),
		append(
			chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(defaultUserAgent),
		)...,
	)
}

// Fetch renders the page and returns the extracted raw postings.
func (f *ChromeFetcher) Fetch(ctx context.Context) ([]model.RawPosting, error) {
	f.mu.Lock()
	allocCtx := f.allocCtx
	f.mu.Unlock()

	runCtx, cancel := context.WithTimeout(allocCtx, f.timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(runCtx)
	defer browserCancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(f.pageURL.String()),
		chromedp.Sleep(f.settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &model.FetchError{Source: f.source, Err: fmt.Errorf("rendering page: %w", err)}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &model.FetchError{Source: f.source, Err: fmt.Errorf("parsing HTML: %w", err)}
	}

	return extractPostings(doc, f.pageURL), nil
}

// Reset relaunches the browser allocator. A wedged Chrome is the most common
// cause of repeated cycle failures with this backend.
func (f *ChromeFetcher) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.allocCancel != nil {
		f.allocCancel()
	}
	f.allocCtx, f.allocCancel = newAllocator()
	return nil
}

// Close shuts the browser down.
func (f *ChromeFetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.allocCancel != nil {
		f.allocCancel()
	}
}
