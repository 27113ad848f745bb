// Package render projects a page document into publishable outputs.
// This file implements the static HTML projection, which every other
// renderer builds on. The output is a pure function of the document:
// attributes are written in a fixed order and style properties sorted,
// so identical documents produce byte-identical HTML.
package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"

	"github.com/landinghub/pagekit/core/page"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
)

// Attributes that carry the document model through the rendered HTML, so
// the importer can reconstruct it exactly.
const (
	AttrType   = "data-lh-type"
	AttrID     = "data-lh-id"
	AttrCanvas = "data-lh-canvas"
	AttrSource = "data-lh-source"
	AttrData   = "data-lh-data"

	CanvasClass = "lh-canvas"
	ButtonClass = "lh-button"
	Generator   = "pagekit"
)

// containerTags are the block tags a container may render as.
var containerTags = map[string]bool{
	"div": true, "section": true, "header": true, "footer": true,
	"nav": true, "main": true, "article": true, "aside": true,
	"ul": true, "ol": true, "li": true, "figure": true, "form": true,
}

// textTags are the tags a text element may render as.
var textTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"span": true, "blockquote": true, "pre": true, "li": true, "label": true,
	"small": true, "strong": true, "em": true, "code": true, "figcaption": true,
}

// ContainerTag returns tag if a container may render as it, else "div".
func ContainerTag(tag string) string {
	if containerTags[tag] {
		return tag
	}
	return "div"
}

// TextTag returns tag if a text element may render as it, else "p".
func TextTag(tag string) string {
	if textTags[tag] {
		return tag
	}
	return "p"
}

// IsTextTag reports whether tag is a valid text element tag.
func IsTextTag(tag string) bool {
	return textTags[tag]
}

// HTML renders doc as a self-contained HTML document. doc must be valid;
// see page.PageData.Validate.
func HTML(doc *page.PageData) []byte {
	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	htmlNode := element("html", attr("lang", "en"))
	root.AppendChild(htmlNode)
	htmlNode.AppendChild(renderHead(doc))
	htmlNode.AppendChild(newline())

	body := element("body")
	htmlNode.AppendChild(body)
	body.AppendChild(newline())
	body.AppendChild(renderCanvas(doc))
	body.AppendChild(newline())

	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail.
	_ = html.Render(&buf, root)
	buf.WriteString("\n")
	return buf.Bytes()
}

func renderHead(doc *page.PageData) *html.Node {
	head := element("head")
	add := func(n *html.Node) {
		head.AppendChild(newline())
		head.AppendChild(n)
	}

	add(element("meta", attr("charset", "utf-8")))
	add(element("meta", attr("name", "viewport"), attr("content", "width=device-width, initial-scale=1")))

	meta := doc.Meta
	if meta == nil {
		meta = &page.Meta{}
	}
	title := element("title")
	title.AppendChild(text(meta.Title))
	add(title)
	if meta.Description != "" {
		add(element("meta", attr("name", "description"), attr("content", meta.Description)))
	}
	if len(meta.Keywords) > 0 {
		add(element("meta", attr("name", "keywords"), attr("content", strings.Join(meta.Keywords, ", "))))
	}
	add(element("meta", attr("name", "generator"), attr("content", Generator)))

	if doc.Canvas != nil && doc.Canvas.CSS != "" {
		style := element("style")
		style.AppendChild(text(doc.Canvas.CSS))
		add(style)
	}
	head.AppendChild(newline())
	return head
}

func renderCanvas(doc *page.PageData) *html.Node {
	canvas := doc.Canvas
	if canvas == nil {
		canvas = &page.Canvas{}
	}
	// Canvas members are strings, string maps or already valid JSON.
	encoded, _ := json.Marshal(canvas)

	node := element("div", attr("class", CanvasClass), attr(AttrCanvas, string(encoded)))
	if style := StyleAttr(canvasStyles(canvas)); style != "" {
		node.Attr = append(node.Attr, attr("style", style))
	}

	node.AppendChild(newline())
	for i := range doc.Elements {
		node.AppendChild(renderElement(&doc.Elements[i]))
		node.AppendChild(newline())
	}
	return node
}

// canvasStyles merges the canvas layout properties with its free-form
// styles; explicit styles win.
func canvasStyles(c *page.Canvas) page.Styles {
	styles := page.Styles{}
	if c.Width != "" {
		styles["maxWidth"] = c.Width.CSS()
		styles["margin"] = "0 auto"
	}
	if c.Height != "" {
		styles["minHeight"] = c.Height.CSS()
	}
	if c.BackgroundColor != "" {
		styles["backgroundColor"] = c.BackgroundColor
	}
	if c.BackgroundImage != "" {
		bg := c.BackgroundImage
		if !strings.Contains(bg, "(") {
			bg = "url('" + bg + "')"
		}
		styles["backgroundImage"] = bg
	}
	for k, v := range c.Styles {
		styles[k] = v
	}
	return styles
}

func renderElement(el *page.Element) *html.Node {
	var (
		node     *html.Node
		children = false
	)
	base := []html.Attribute{attr(AttrType, string(el.Type))}
	if el.ID != "" {
		base = append(base, attr(AttrID, el.ID))
	}

	switch data := el.Payload().(type) {
	case page.ContainerData:
		node = element(ContainerTag(data.Tag), base...)
		children = true
	case page.TextData:
		node = element(TextTag(data.Tag), base...)
		node.AppendChild(text(data.Text))
	case page.ImageData:
		node = element("img", append(base, attr("src", data.Src))...)
		if data.Alt != "" {
			node.Attr = append(node.Attr, attr("alt", data.Alt))
		}
	case page.ButtonData:
		if data.Href != "" {
			node = element("a", append(base, attr("class", ButtonClass), attr("href", data.Href))...)
		} else {
			node = element("button", append(base, attr("type", "button"))...)
		}
		node.AppendChild(text(data.Label))
	case page.LinkData:
		node = element("a", append(base, attr("href", data.Href))...)
		node.AppendChild(text(data.Text))
	case page.VideoData:
		node = element("video", append(base, attr("src", data.Src))...)
		if data.Poster != "" {
			node.Attr = append(node.Attr, attr("poster", data.Poster))
		}
		node.Attr = append(node.Attr, attr("controls", ""))
	case page.MarkdownData:
		node = element("div", append(base, attr(AttrSource, data.Source))...)
		node.AppendChild(raw(markdownHTML(data.Source)))
	case page.HTMLData:
		node = element("div", base...)
		node.AppendChild(raw(data.HTML))
	case page.DividerData:
		node = element("hr", base...)
	case page.Unknown:
		if len(data.Raw) > 0 {
			base = append(base, attr(AttrData, string(data.Raw)))
		}
		node = element("div", base...)
		children = true
	}

	if style := StyleAttr(el.Styles); style != "" {
		node.Attr = append(node.Attr, attr("style", style))
	}
	if children {
		for i := range el.Children {
			node.AppendChild(renderElement(&el.Children[i]))
		}
	}
	return node
}

var (
	markdownOnce sync.Once
	markdownConv goldmark.Markdown
)

func markdownHTML(source string) string {
	markdownOnce.Do(func() {
		markdownConv = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	var buf bytes.Buffer
	if err := markdownConv.Convert([]byte(source), &buf); err != nil {
		return "<pre>" + html.EscapeString(source) + "</pre>"
	}
	return strings.TrimSpace(buf.String())
}

func element(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, Attr: attrs}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func raw(s string) *html.Node {
	return &html.Node{Type: html.RawNode, Data: s}
}

func newline() *html.Node {
	return text("\n")
}
