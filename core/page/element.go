package page

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ElementType is the discriminant of an Element.
type ElementType string

// Known element types. Any other type string decodes to an Unknown payload
// and passes through unchanged.
const (
	TypeContainer ElementType = "container"
	TypeText      ElementType = "text"
	TypeImage     ElementType = "image"
	TypeButton    ElementType = "button"
	TypeLink      ElementType = "link"
	TypeVideo     ElementType = "video"
	TypeMarkdown  ElementType = "markdown"
	TypeHTML      ElementType = "html"
	TypeDivider   ElementType = "divider"
)

// Known reports whether t is one of the closed set of element types.
func (t ElementType) Known() bool {
	switch t {
	case TypeContainer, TypeText, TypeImage, TypeButton, TypeLink,
		TypeVideo, TypeMarkdown, TypeHTML, TypeDivider:
		return true
	}
	return false
}

// Element is a node in the page tree.
type Element struct {
	ID       string
	Type     ElementType
	Data     ComponentData
	Styles   Styles
	Children []Element

	// extra and dataExtra hold element and componentData members outside
	// the typed view; literals the styles that arrived as numbers or
	// booleans.
	extra     fields
	dataExtra fields
	literals  styleLiterals
}

// ComponentData is the type-specific payload of an Element. The set of
// implementations is closed; see Unknown for types outside it.
type ComponentData interface {
	elementType() ElementType
}

// ContainerData groups child elements under an HTML block tag.
type ContainerData struct {
	Tag string `json:"tag,omitempty"`
}

// TextData is plain text under a text-level tag (p, h1..h6, span, ...).
type TextData struct {
	Text string `json:"text"`
	Tag  string `json:"tag,omitempty"`
}

// ImageData references an image by URL, data URI or asset key.
type ImageData struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// ButtonData is a call-to-action. An empty Href renders a plain button.
type ButtonData struct {
	Label string `json:"label"`
	Href  string `json:"href,omitempty"`
}

// LinkData is an inline hyperlink.
type LinkData struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// VideoData references a video source and an optional poster frame.
type VideoData struct {
	Src    string `json:"src"`
	Poster string `json:"poster,omitempty"`
}

// MarkdownData holds Markdown source rendered at publish time.
type MarkdownData struct {
	Source string `json:"source"`
}

// HTMLData is a raw HTML embed, emitted verbatim.
type HTMLData struct {
	HTML string `json:"html"`
}

// DividerData has no payload.
type DividerData struct{}

// Unknown preserves the raw componentData of an element type this package
// does not model.
type Unknown struct {
	Type ElementType
	Raw  json.RawMessage
}

func (ContainerData) elementType() ElementType { return TypeContainer }
func (TextData) elementType() ElementType      { return TypeText }
func (ImageData) elementType() ElementType     { return TypeImage }
func (ButtonData) elementType() ElementType    { return TypeButton }
func (LinkData) elementType() ElementType      { return TypeLink }
func (VideoData) elementType() ElementType     { return TypeVideo }
func (MarkdownData) elementType() ElementType  { return TypeMarkdown }
func (HTMLData) elementType() ElementType      { return TypeHTML }
func (DividerData) elementType() ElementType   { return TypeDivider }
func (u Unknown) elementType() ElementType     { return u.Type }

// NewElement builds an element whose Type matches its payload.
func NewElement(data ComponentData, children ...Element) Element {
	return Element{Type: data.elementType(), Data: data, Children: children}
}

// Image returns the image payload, if e is an image element.
func (e *Element) Image() (ImageData, bool) {
	img, ok := e.Data.(ImageData)
	return img, ok
}

// wireElement is the JSON form of an Element.
type wireElement struct {
	ID            string          `json:"id,omitempty"`
	Type          ElementType     `json:"type"`
	ComponentData json.RawMessage `json:"componentData,omitempty"`
	Styles        fields          `json:"styles,omitempty"`
	Children      []Element       `json:"children,omitempty"`
}

// elementKeys are the element members modeled by Element.
var elementKeys = []string{"id", "type", "componentData", "styles", "children"}

// dataKeys are the componentData members each known type models.
var dataKeys = map[ElementType][]string{
	TypeContainer: {"tag"},
	TypeText:      {"text", "tag"},
	TypeImage:     {"src", "alt"},
	TypeButton:    {"label", "href"},
	TypeLink:      {"text", "href"},
	TypeVideo:     {"src", "poster"},
	TypeMarkdown:  {"source"},
	TypeHTML:      {"html"},
	TypeDivider:   {},
}

// MarshalJSON encodes the element in its wire shape. Members outside the
// typed view are written back as they were decoded.
func (e Element) MarshalJSON() ([]byte, error) {
	styles, err := encodeStyles(e.Styles, e.literals)
	if err != nil {
		return nil, fmt.Errorf("element %q styles: %w", e.Type, err)
	}
	w := wireElement{
		ID:       e.ID,
		Type:     e.Type,
		Styles:   styles,
		Children: e.Children,
	}
	switch data := e.Data.(type) {
	case nil:
		if len(e.dataExtra) > 0 {
			if w.ComponentData, err = json.Marshal(e.dataExtra); err != nil {
				return nil, fmt.Errorf("element %q componentData: %w", e.Type, err)
			}
		}
	case Unknown:
		w.ComponentData = data.Raw
	default:
		raw, err := json.Marshal(data)
		if err == nil {
			raw, err = mergeFields(raw, e.dataExtra)
		}
		if err != nil {
			return nil, fmt.Errorf("element %q componentData: %w", e.Type, err)
		}
		w.ComponentData = raw
	}
	out, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return mergeFields(out, e.extra)
}

// UnmarshalJSON decodes the wire shape into the matching payload variant.
func (e *Element) UnmarshalJSON(data []byte) error {
	var w wireElement
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Type == "" {
		return fmt.Errorf("element: missing type")
	}
	payload, err := decodeComponentData(w.Type, w.ComponentData)
	if err != nil {
		return fmt.Errorf("element %q componentData: %w", w.Type, err)
	}
	var dataExtra fields
	if keys, ok := dataKeys[w.Type]; ok && isKind(w.ComponentData, '{') {
		if dataExtra, err = splitFields(w.ComponentData, keys...); err != nil {
			return fmt.Errorf("element %q componentData: %w", w.Type, err)
		}
	}
	styles, literals, err := decodeStyles(w.Styles)
	if err != nil {
		return fmt.Errorf("element %q: %w", w.Type, err)
	}
	extra, err := splitFields(data, elementKeys...)
	if err != nil {
		return err
	}
	*e = Element{
		ID:        w.ID,
		Type:      w.Type,
		Data:      payload,
		Styles:    styles,
		Children:  w.Children,
		extra:     extra,
		dataExtra: dataExtra,
		literals:  literals,
	}
	return nil
}

func decodeComponentData(t ElementType, raw json.RawMessage) (ComponentData, error) {
	if !t.Known() {
		var kept json.RawMessage
		if len(raw) > 0 {
			var buf bytes.Buffer
			if err := json.Compact(&buf, raw); err != nil {
				return nil, err
			}
			kept = buf.Bytes()
		}
		return Unknown{Type: t, Raw: kept}, nil
	}
	if len(raw) == 0 || string(raw) == "null" {
		raw = []byte("{}")
	}
	var (
		out ComponentData
		err error
	)
	switch t {
	case TypeContainer:
		var d ContainerData
		err = json.Unmarshal(raw, &d)
		out = d
	case TypeText:
		var d TextData
		err = json.Unmarshal(raw, &d)
		out = d
	case TypeImage:
		var d ImageData
		err = json.Unmarshal(raw, &d)
		out = d
	case TypeButton:
		var d ButtonData
		err = json.Unmarshal(raw, &d)
		out = d
	case TypeLink:
		var d LinkData
		err = json.Unmarshal(raw, &d)
		out = d
	case TypeVideo:
		var d VideoData
		err = json.Unmarshal(raw, &d)
		out = d
	case TypeMarkdown:
		var d MarkdownData
		err = json.Unmarshal(raw, &d)
		out = d
	case TypeHTML:
		var d HTMLData
		err = json.Unmarshal(raw, &d)
		out = d
	case TypeDivider:
		out = DividerData{}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Payload returns e.Data, or the zero payload for e.Type when Data is unset.
func (e *Element) Payload() ComponentData {
	if e.Data != nil {
		return e.Data
	}
	data, err := decodeComponentData(e.Type, nil)
	if err != nil {
		return Unknown{Type: e.Type}
	}
	return data
}
