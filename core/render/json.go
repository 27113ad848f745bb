// Package render: JSON renderer.
// Emits the page document itself, indented, in the shape the page-creation
// and template endpoints accept.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/landinghub/pagekit/core/page"
)

// JSONRenderer produces the indented PageData JSON.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render marshals doc.
func (r *JSONRenderer) Render(doc *page.PageData) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}
