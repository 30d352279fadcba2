package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirewatch-dev/hirewatch/internal/model"
)

func TestHTTPFetcherSuccess(t *testing.T) {
	page := `<html><body>
		<div class="job-card">
			<h3>Warehouse Associate</h3>
			<span class="location">Calgary, AB</span>
			<a href="/jobs/1">Apply</a>
		</div>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher("test", srv.URL, 5*time.Second)
	require.NoError(t, err)

	got, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Warehouse Associate", got[0].Title)
	assert.Equal(t, srv.URL+"/jobs/1", got[0].URL)
}

func TestHTTPFetcherEmptyPageIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>No openings today.</body></html>"))
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher("test", srv.URL, 5*time.Second)
	require.NoError(t, err)

	got, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHTTPFetcherNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher("test", srv.URL, 5*time.Second)
	require.NoError(t, err)

	_, err = f.Fetch(context.Background())
	require.Error(t, err)

	var fetchErr *model.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "test", fetchErr.Source)

	var httpErr *model.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.Equal(t, 2*time.Minute, httpErr.RetryAfter)
}

func TestHTTPFetcherConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // deliberately closed

	f, err := NewHTTPFetcher("test", srv.URL, time.Second)
	require.NoError(t, err)

	_, err = f.Fetch(context.Background())
	var fetchErr *model.FetchError
	require.True(t, errors.As(err, &fetchErr))
}

func TestHTTPFetcherResetSurvives(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body></body></html>"))
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher("test", srv.URL, 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, f.Reset())

	_, err = f.Fetch(context.Background())
	assert.NoError(t, err)
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New("selenium", "test", "https://x", time.Second)
	assert.Error(t, err)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 90*time.Second, parseRetryAfter("90"))
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("Wed, 21 Oct 2026 07:28:00 GMT"))
}
