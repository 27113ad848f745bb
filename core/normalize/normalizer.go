// Package normalize converts rendered page HTML into Markdown, the text
// form used for marketplace listings and search indexing.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
)

// blankRuns matches three or more consecutive newlines.
var blankRuns = regexp.MustCompile(`\n{3,}`)

// MarkdownNormalizer converts HTML to Markdown using html-to-markdown.
type MarkdownNormalizer struct {
	// Domain, when set, turns relative links and image sources absolute.
	Domain string
}

// New creates a MarkdownNormalizer.
func New(domain string) *MarkdownNormalizer {
	return &MarkdownNormalizer{Domain: domain}
}

// Normalize converts an HTML document or fragment into Markdown with at
// most one blank line between blocks and no surrounding whitespace.
func (n *MarkdownNormalizer) Normalize(html string) (string, error) {
	var opts []converter.ConvertOptionFunc
	if n.Domain != "" {
		opts = append(opts, converter.WithDomain(n.Domain))
	}
	markdown, err := htmltomarkdown.ConvertString(html, opts...)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.TrimSpace(blankRuns.ReplaceAllString(markdown, "\n\n")), nil
}
