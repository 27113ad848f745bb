// Package extract implements the Importer interface.
// It reconstructs a page document from HTML in one of two ways:
//  1. Pages rendered by this engine (a [data-lh-canvas] root is present) are
//     rebuilt exactly from the data-lh-* attributes.
//  2. Any other HTML is mapped heuristically: noise is removed, <style>
//     blocks become the canvas stylesheet, and body content is converted
//     tag by tag into the closest element type.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/landinghub/pagekit/core/page"
	"github.com/landinghub/pagekit/core/render"
	"golang.org/x/net/html"
)

// ErrUnparsableHTML is returned when no canvas or element structure can be
// recovered from the input.
var ErrUnparsableHTML = errors.New("unparsable HTML: no page structure found")

// elementNamespace seeds the deterministic IDs of heuristically imported
// elements.
var elementNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://landinghub.io/pagekit/element"))

// noiseSelectors are removed before heuristic conversion. They contribute
// nothing a static landing page can carry.
var noiseSelectors = []string{
	"script", "noscript", "template", "link", "meta", "base", "style",
}

// HTMLExtractor reconstructs PageData from HTML.
type HTMLExtractor struct {
	// Now supplies the fallback meta timestamps.
	Now func() time.Time
}

// New creates an HTMLExtractor using the wall clock.
func New() *HTMLExtractor {
	return &HTMLExtractor{Now: time.Now}
}

// Import parses src into a page document. The returned document always
// passes page.PageData.Validate; its meta is a fallback guess that callers
// are expected to replace with authoritative values.
func (e *HTMLExtractor) Import(src string) (*page.PageData, error) {
	if strings.TrimSpace(src) == "" {
		return nil, ErrUnparsableHTML
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsableHTML, err)
	}

	if root := doc.Find("[" + render.AttrCanvas + "]").First(); root.Length() > 0 {
		if result, ok := e.importRendered(doc, root); ok {
			return result, nil
		}
	}
	return e.importGeneric(doc)
}

// importRendered rebuilds a document produced by render.HTML. It reports
// false when the canvas attribute is not valid canvas JSON, in which case
// the page is treated as foreign HTML.
func (e *HTMLExtractor) importRendered(doc *goquery.Document, root *goquery.Selection) (*page.PageData, bool) {
	raw, _ := root.Attr(render.AttrCanvas)
	var canvas page.Canvas
	if err := json.Unmarshal([]byte(raw), &canvas); err != nil {
		return nil, false
	}
	return &page.PageData{
		Canvas:   &canvas,
		Elements: renderedChildren(root.Nodes[0]),
		Meta:     e.fallbackMeta(doc, false),
	}, true
}

// importGeneric converts arbitrary HTML.
func (e *HTMLExtractor) importGeneric(doc *goquery.Document) (*page.PageData, error) {
	canvas := &page.Canvas{}

	var sheets []string
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		if css := strings.TrimSpace(s.Text()); css != "" {
			sheets = append(sheets, css)
		}
	})
	canvas.CSS = strings.Join(sheets, "\n\n")

	meta := e.fallbackMeta(doc, true)

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	body := doc.Find("body").First()
	if body.Length() == 0 {
		return nil, ErrUnparsableHTML
	}
	if style, ok := body.Attr("style"); ok {
		styles := render.ParseStyle(style)
		if bg, ok := styles["backgroundColor"]; ok {
			canvas.BackgroundColor = bg
			delete(styles, "backgroundColor")
		}
		if len(styles) > 0 {
			canvas.Styles = styles
		}
	}

	elements := convertChildren(body.Nodes[0])
	if len(elements) == 0 {
		return nil, ErrUnparsableHTML
	}
	page.Walk(elements, func(path page.Path, el *page.Element) bool {
		if el.ID == "" {
			el.ID = uuid.NewSHA1(elementNamespace, []byte(path.String())).String()
		}
		return true
	})

	return &page.PageData{Canvas: canvas, Elements: elements, Meta: meta}, nil
}

// fallbackMeta guesses metadata from the document head. Timestamps come
// from the extractor's clock, never from content.
func (e *HTMLExtractor) fallbackMeta(doc *goquery.Document, trim bool) *page.Meta {
	title := doc.Find("title").First().Text()
	if trim {
		title = collapse(title)
	}
	if title == "" {
		title = collapse(doc.Find("h1").First().Text())
	}
	description, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	keywords, _ := doc.Find(`meta[name="keywords"]`).First().Attr("content")

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	stamp := page.FormatTime(now())
	return &page.Meta{
		Title:       title,
		Description: description,
		Keywords:    page.ParseKeywords(keywords),
		CreatedAt:   stamp,
		UpdatedAt:   stamp,
	}
}

// renderedChildren rebuilds the elements under a rendered node. Element
// nodes without a data-lh-type attribute are foreign and skipped.
func renderedChildren(n *html.Node) []page.Element {
	elements := []page.Element{}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		t, ok := attrOf(c, render.AttrType)
		if !ok || t == "" {
			continue
		}
		elements = append(elements, renderedElement(c, page.ElementType(t)))
	}
	return elements
}

func renderedElement(n *html.Node, t page.ElementType) page.Element {
	id, _ := attrOf(n, render.AttrID)
	style, _ := attrOf(n, "style")
	el := page.Element{ID: id, Type: t, Styles: render.ParseStyle(style)}

	switch t {
	case page.TypeContainer:
		el.Data = page.ContainerData{Tag: elideDefault(n.Data, "div")}
		el.Children = nonEmpty(renderedChildren(n))
	case page.TypeText:
		el.Data = page.TextData{Text: directText(n), Tag: elideDefault(n.Data, "p")}
	case page.TypeImage:
		src, _ := attrOf(n, "src")
		alt, _ := attrOf(n, "alt")
		el.Data = page.ImageData{Src: src, Alt: alt}
	case page.TypeButton:
		href, _ := attrOf(n, "href")
		el.Data = page.ButtonData{Label: directText(n), Href: href}
	case page.TypeLink:
		href, _ := attrOf(n, "href")
		el.Data = page.LinkData{Text: directText(n), Href: href}
	case page.TypeVideo:
		src, _ := attrOf(n, "src")
		poster, _ := attrOf(n, "poster")
		el.Data = page.VideoData{Src: src, Poster: poster}
	case page.TypeMarkdown:
		source, _ := attrOf(n, render.AttrSource)
		el.Data = page.MarkdownData{Source: source}
	case page.TypeHTML:
		el.Data = page.HTMLData{HTML: innerHTML(n)}
	case page.TypeDivider:
		el.Data = page.DividerData{}
	default:
		u := page.Unknown{Type: t}
		if data, ok := attrOf(n, render.AttrData); ok && json.Valid([]byte(data)) {
			u.Raw = json.RawMessage(data)
		}
		el.Data = u
		el.Children = nonEmpty(renderedChildren(n))
	}
	return el
}

func elideDefault(tag, def string) string {
	if tag == def {
		return ""
	}
	return tag
}

func nonEmpty(elements []page.Element) []page.Element {
	if len(elements) == 0 {
		return nil
	}
	return elements
}

func attrOf(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// directText concatenates the text node children of n.
func directText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// textContent concatenates all descendant text of n.
func textContent(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}

func innerHTML(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		// Writes to a strings.Builder cannot fail.
		_ = html.Render(&b, c)
	}
	return b.String()
}

func outerHTML(n *html.Node) string {
	var b strings.Builder
	_ = html.Render(&b, n)
	return b.String()
}

// collapse trims s and folds runs of whitespace into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
