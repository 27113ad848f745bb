// Package render: PDF renderer.
// Produces a print proof of a page with gofpdf: the title and metadata,
// followed by an indented outline of the element tree with text content
// and asset references. Images are listed, not drawn.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/landinghub/pagekit/core/page"
)

// PDFRenderer renders a page outline as a PDF document.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render produces the PDF proof of doc.
func (r *PDFRenderer) Render(doc *page.PageData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetCreator(Generator, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	meta := doc.Meta
	if meta == nil {
		meta = &page.Meta{}
	}
	if meta.Title != "" {
		pdf.SetTitle(meta.Title, true)
		pdf.SetFont("Helvetica", "B", 18)
		pdf.MultiCell(0, 8, tr(meta.Title), "", "L", false)
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	if meta.Description != "" {
		pdf.MultiCell(0, 5, tr(meta.Description), "", "L", false)
	}
	if len(meta.Keywords) > 0 {
		pdf.MultiCell(0, 5, tr("Keywords: "+strings.Join(meta.Keywords, ", ")), "", "L", false)
	}
	if doc.Canvas != nil && (doc.Canvas.Width != "" || doc.Canvas.Height != "") {
		pdf.MultiCell(0, 5, fmt.Sprintf("Canvas: %s x %s", doc.Canvas.Width.CSS(), doc.Canvas.Height.CSS()), "", "L", false)
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)

	page.Walk(doc.Elements, func(path page.Path, el *page.Element) bool {
		renderOutlineEntry(pdf, tr, len(path)-1, el)
		return true
	})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

// headingSizes maps heading tags to font sizes.
var headingSizes = map[string]float64{"h1": 18, "h2": 15, "h3": 13, "h4": 12, "h5": 11, "h6": 10}

// renderOutlineEntry writes one element of the outline, indented by depth.
func renderOutlineEntry(pdf *gofpdf.Fpdf, tr func(string) string, depth int, el *page.Element) {
	left, _, _, _ := pdf.GetMargins()
	pdf.SetX(left + float64(depth)*6)

	label := "[" + string(el.Type) + "]"
	var body string
	size := 10.0

	switch data := el.Payload().(type) {
	case page.TextData:
		body = data.Text
		if s, ok := headingSizes[data.Tag]; ok {
			size = s
		}
	case page.ImageData:
		body = abbreviate(data.Src)
	case page.ButtonData:
		body = strings.TrimSpace(data.Label + " " + data.Href)
	case page.LinkData:
		body = data.Text + " <" + data.Href + ">"
	case page.VideoData:
		body = abbreviate(data.Src)
	case page.MarkdownData:
		body = data.Source
	case page.ContainerData:
		if data.Tag != "" {
			label = "[" + string(el.Type) + " " + data.Tag + "]"
		}
	}

	pdf.SetFont("Courier", "", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 4, tr(label), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	if body != "" {
		pdf.SetX(left + float64(depth)*6)
		pdf.SetFont("Helvetica", "", size)
		pdf.MultiCell(0, size*0.5, tr(body), "", "L", false)
	}
	pdf.Ln(1)
}

// abbreviate shortens embedded data URIs, which would otherwise fill pages.
func abbreviate(ref string) string {
	if strings.HasPrefix(ref, "data:") && len(ref) > 48 {
		return ref[:48] + "..."
	}
	return ref
}
