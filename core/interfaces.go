// Package core defines the interfaces between the stages of the page engine.
// Each stage (fetch, import, render, asset resolution) is a small,
// testable interface; the concrete implementations live in sub-packages.
package core

import (
	"context"

	"github.com/landinghub/pagekit/core/page"
)

// FetchResult holds a fetched HTTP body and response metadata.
type FetchResult struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// HTML returns the body as text.
func (r *FetchResult) HTML() string {
	return string(r.Body)
}

// Fetcher retrieves a resource over HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Importer reconstructs a page document from HTML.
type Importer interface {
	Import(html string) (*page.PageData, error)
}

// Renderer converts a page document into a final output format.
type Renderer interface {
	Render(doc *page.PageData) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".html", ".pdf").
	Extension() string
}

// AssetResolver turns an asset reference (URL, storage key, relative path)
// into a data URI.
type AssetResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}
