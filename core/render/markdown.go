// Package render provides output renderers for the page engine.
// This file implements the Markdown renderer, a lossy text export of the
// rendered HTML.
package render

import (
	"fmt"
	"strings"

	"github.com/landinghub/pagekit/core/normalize"
	"github.com/landinghub/pagekit/core/page"
)

// MarkdownRenderer converts a page into Markdown.
type MarkdownRenderer struct {
	normalizer *normalize.MarkdownNormalizer
}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{normalizer: normalize.New("")}
}

// Render converts the page's HTML projection into Markdown, headed by the
// page title.
func (r *MarkdownRenderer) Render(doc *page.PageData) ([]byte, error) {
	markdown, err := r.normalizer.Normalize(string(HTML(doc)))
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	if doc.Meta != nil && doc.Meta.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", doc.Meta.Title)
	}
	b.WriteString(markdown)
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}
