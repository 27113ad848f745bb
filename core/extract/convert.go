package extract

import (
	"strings"

	"github.com/landinghub/pagekit/core/page"
	"github.com/landinghub/pagekit/core/render"
	"golang.org/x/net/html"
)

// blockTags convert to containers.
var blockTags = map[string]bool{
	"div": true, "section": true, "header": true, "footer": true, "nav": true,
	"main": true, "article": true, "aside": true, "ul": true, "ol": true,
	"li": true, "figure": true, "body": true, "center": true, "dl": true,
	"dd": true, "dt": true, "address": true, "details": true, "summary": true,
}

// textBlockTags convert to text elements keeping their tag.
var textBlockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "figcaption": true,
}

// inlineTags only carry formatting; their text is folded into the
// enclosing text element.
var inlineTags = map[string]bool{
	"span": true, "strong": true, "em": true, "b": true, "i": true, "u": true,
	"small": true, "label": true, "code": true, "mark": true, "sup": true,
	"sub": true, "abbr": true, "time": true, "cite": true, "q": true,
	"s": true, "del": true, "ins": true, "kbd": true, "var": true, "br": true,
	"font": true, "wbr": true,
}

// embedTags are kept as raw HTML embeds.
var embedTags = map[string]bool{
	"iframe": true, "svg": true, "form": true, "table": true, "canvas": true,
	"audio": true, "object": true, "embed": true, "select": true, "textarea": true,
	"map": true, "math": true,
}

// convertChildren converts the child nodes of n, dropping anything that
// has no element counterpart.
func convertChildren(n *html.Node) []page.Element {
	var elements []page.Element
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if el, ok := convertNode(c); ok {
			elements = append(elements, el)
		}
	}
	return elements
}

// convertNode maps a single node to the closest element type.
func convertNode(n *html.Node) (page.Element, bool) {
	switch n.Type {
	case html.TextNode:
		text := collapse(n.Data)
		if text == "" {
			return page.Element{}, false
		}
		return page.NewElement(page.TextData{Text: text, Tag: "span"}), true
	case html.ElementNode:
	default:
		return page.Element{}, false
	}

	tag := n.Data
	el, ok := convertElement(n, tag)
	if !ok {
		return page.Element{}, false
	}
	if id, found := attrOf(n, "id"); found && id != "" {
		el.ID = id
	}
	if _, isEmbed := el.Data.(page.HTMLData); !isEmbed {
		if style, found := attrOf(n, "style"); found {
			el.Styles = render.ParseStyle(style)
		}
	}
	return el, true
}

func convertElement(n *html.Node, tag string) (page.Element, bool) {
	switch {
	case tag == "img":
		return convertImage(n)
	case tag == "picture":
		if img := findFirst(n, "img"); img != nil {
			return convertImage(img)
		}
		return page.Element{}, false
	case tag == "hr":
		return page.NewElement(page.DividerData{}), true
	case tag == "video":
		return convertVideo(n)
	case tag == "button":
		return textOrDrop(textContent(n), func(text string) page.ComponentData {
			return page.ButtonData{Label: text}
		})
	case tag == "input":
		kind, _ := attrOf(n, "type")
		if kind != "submit" && kind != "button" {
			return page.Element{}, false
		}
		value, _ := attrOf(n, "value")
		return textOrDrop(value, func(text string) page.ComponentData {
			return page.ButtonData{Label: text}
		})
	case tag == "a":
		return convertAnchor(n)
	case embedTags[tag]:
		return page.NewElement(page.HTMLData{HTML: outerHTML(n)}), true
	case textBlockTags[tag]:
		return convertTextBlock(n, tag)
	case inlineTags[tag]:
		if tag == "br" || tag == "wbr" {
			return page.Element{}, false
		}
		if hasSignificantChild(n) {
			return convertContainer(n, "")
		}
		return textOrDrop(textContent(n), func(text string) page.ComponentData {
			return page.TextData{Text: text, Tag: "span"}
		})
	case blockTags[tag]:
		return convertContainer(n, tag)
	}

	// Unrecognized tags degrade to a container or text, or are dropped.
	if hasSignificantChild(n) {
		return convertContainer(n, "")
	}
	return textOrDrop(textContent(n), func(text string) page.ComponentData {
		return page.TextData{Text: text}
	})
}

func convertImage(n *html.Node) (page.Element, bool) {
	src, _ := attrOf(n, "src")
	if src == "" {
		src, _ = attrOf(n, "data-src")
	}
	if src == "" {
		return page.Element{}, false
	}
	alt, _ := attrOf(n, "alt")
	return page.NewElement(page.ImageData{Src: src, Alt: alt}), true
}

func convertVideo(n *html.Node) (page.Element, bool) {
	src, _ := attrOf(n, "src")
	if src == "" {
		if source := findFirst(n, "source"); source != nil {
			src, _ = attrOf(source, "src")
		}
	}
	if src == "" {
		return page.Element{}, false
	}
	poster, _ := attrOf(n, "poster")
	return page.NewElement(page.VideoData{Src: src, Poster: poster}), true
}

func convertAnchor(n *html.Node) (page.Element, bool) {
	href, _ := attrOf(n, "href")
	if isButtonLike(n) {
		return textOrDrop(textContent(n), func(text string) page.ComponentData {
			return page.ButtonData{Label: text, Href: href}
		})
	}
	if hasSignificantChild(n) {
		return convertContainer(n, "")
	}
	return textOrDrop(textContent(n), func(text string) page.ComponentData {
		return page.LinkData{Text: text, Href: href}
	})
}

func convertTextBlock(n *html.Node, tag string) (page.Element, bool) {
	if hasSignificantChild(n) {
		return convertContainer(n, "")
	}
	text := textContent(n)
	if tag != "pre" {
		text = collapse(text)
	}
	if strings.TrimSpace(text) == "" {
		return page.Element{}, false
	}
	return page.NewElement(page.TextData{Text: text, Tag: elideDefault(tag, "p")}), true
}

// convertContainer maps a block node to a container. Blocks holding only
// inline content become text; empty blocks survive only when they carry a
// background image.
func convertContainer(n *html.Node, tag string) (page.Element, bool) {
	if !hasSignificantChild(n) {
		text := collapse(textContent(n))
		if text != "" {
			textTag := ""
			if tag == "li" {
				textTag = "li"
			}
			return page.NewElement(page.TextData{Text: text, Tag: textTag}), true
		}
		if style, ok := attrOf(n, "style"); ok && render.ParseStyle(style)["backgroundImage"] != "" {
			return page.NewElement(page.ContainerData{Tag: containerTag(tag)}), true
		}
		return page.Element{}, false
	}
	children := convertChildren(n)
	if len(children) == 0 {
		return page.Element{}, false
	}
	return page.NewElement(page.ContainerData{Tag: containerTag(tag)}, children...), true
}

func containerTag(tag string) string {
	if render.ContainerTag(tag) == tag {
		return elideDefault(tag, "div")
	}
	return ""
}

// hasSignificantChild reports whether n contains anything beyond text and
// inline formatting: media, controls, links or block structure.
func hasSignificantChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if !inlineTags[c.Data] || hasSignificantChild(c) {
			return true
		}
	}
	return false
}

func isButtonLike(n *html.Node) bool {
	if role, _ := attrOf(n, "role"); role == "button" {
		return true
	}
	class, _ := attrOf(n, "class")
	for _, c := range strings.Fields(strings.ToLower(class)) {
		if c == "btn" || c == "button" || c == render.ButtonClass ||
			strings.HasPrefix(c, "btn-") || strings.HasSuffix(c, "-button") || strings.HasPrefix(c, "button-") {
			return true
		}
	}
	return false
}

func findFirst(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textOrDrop(raw string, build func(text string) page.ComponentData) (page.Element, bool) {
	text := collapse(raw)
	if text == "" {
		return page.Element{}, false
	}
	return page.NewElement(build(text)), true
}
