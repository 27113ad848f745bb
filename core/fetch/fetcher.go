// Package fetch implements the Fetcher interface.
// It performs HTTP GET requests for pages to import and for assets to embed.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/landinghub/pagekit/core"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultMaxBytes  = 10 << 20
	defaultUserAgent = "pagekit/1.0 (+https://landinghub.io)"
)

// ErrTooLarge is returned when a response body exceeds the fetcher's cap.
var ErrTooLarge = errors.New("response body exceeds size limit")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

// HTTPFetcher fetches pages and assets via HTTP.
type HTTPFetcher struct {
	client *http.Client
	// MaxBytes caps asset bodies. Zero or negative means the default of 10 MiB.
	MaxBytes int64
}

// New creates an HTTPFetcher with a sensible timeout.
func New() *HTTPFetcher {
	return NewWithClient(&http.Client{Timeout: defaultTimeout})
}

// NewWithClient creates an HTTPFetcher using client.
func NewWithClient(client *http.Client) *HTTPFetcher {
	return &HTTPFetcher{client: client, MaxBytes: defaultMaxBytes}
}

// Fetch retrieves the HTML content of the given URL.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	return f.get(ctx, url, "text/html,application/xhtml+xml", 0)
}

// FetchAsset retrieves an image or other asset, refusing bodies larger than
// MaxBytes.
func (f *HTTPFetcher) FetchAsset(ctx context.Context, url string) (*core.FetchResult, error) {
	limit := f.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBytes
	}
	return f.get(ctx, url, "image/*,*/*;q=0.8", limit)
}

func (f *HTTPFetcher) get(ctx context.Context, url, accept string, limit int64) (*core.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", accept)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	var reader io.Reader = resp.Body
	if limit > 0 {
		if resp.ContentLength > limit {
			return nil, fmt.Errorf("fetching %s: %w", url, ErrTooLarge)
		}
		reader = io.LimitReader(resp.Body, limit+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if limit > 0 && int64(len(body)) > limit {
		return nil, fmt.Errorf("fetching %s: %w", url, ErrTooLarge)
	}

	return &core.FetchResult{
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
