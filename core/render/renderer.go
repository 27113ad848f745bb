package render

import "github.com/landinghub/pagekit/core/page"

// HTMLRenderer wraps HTML in the core.Renderer interface.
type HTMLRenderer struct{}

// NewHTMLRenderer creates an HTMLRenderer.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{}
}

// Render returns the static HTML document for doc.
func (r *HTMLRenderer) Render(doc *page.PageData) ([]byte, error) {
	return HTML(doc), nil
}

// Extension returns the file extension for HTML output.
func (r *HTMLRenderer) Extension() string {
	return ".html"
}
