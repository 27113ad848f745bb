// Package page defines the canonical landing-page document (PageData):
// a canvas, an ordered tree of elements, and document metadata.
//
// The JSON shape of these types is the contract with the LandingHub REST
// backend (page-creation and template-metadata endpoints) and with the
// .iuhpage package format.
package page

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PageData is the canonical landing-page document.
type PageData struct {
	Canvas   *Canvas   `json:"canvas"`
	Elements []Element `json:"elements"`
	Meta     *Meta     `json:"meta"`

	extra fields
}

// MarshalJSON always emits elements as an array, never null.
func (d PageData) MarshalJSON() ([]byte, error) {
	type alias PageData
	out := alias(d)
	if out.Elements == nil {
		out.Elements = []Element{}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return mergeFields(data, d.extra)
}

// UnmarshalJSON decodes the document, keeping top-level members it does
// not model.
func (d *PageData) UnmarshalJSON(data []byte) error {
	type alias PageData
	var out alias
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	extra, err := splitFields(data, "canvas", "elements", "meta")
	if err != nil {
		return err
	}
	*d = PageData(out)
	d.extra = extra
	return nil
}

// Canvas is the structural root of a page: size, background and global styles.
type Canvas struct {
	Width           Dimension
	Height          Dimension
	BackgroundColor string
	BackgroundImage string
	CSS             string
	Styles          Styles

	extra    fields
	literals styleLiterals
}

// canvasKeys are the canvas members modeled by Canvas.
var canvasKeys = []string{"width", "height", "backgroundColor", "backgroundImage", "css", "styles"}

type wireCanvas struct {
	Width           Dimension `json:"width,omitempty"`
	Height          Dimension `json:"height,omitempty"`
	BackgroundColor string    `json:"backgroundColor,omitempty"`
	BackgroundImage string    `json:"backgroundImage,omitempty"`
	CSS             string    `json:"css,omitempty"`
	Styles          fields    `json:"styles,omitempty"`
}

// MarshalJSON encodes the canvas with any members it does not model.
func (c Canvas) MarshalJSON() ([]byte, error) {
	styles, err := encodeStyles(c.Styles, c.literals)
	if err != nil {
		return nil, fmt.Errorf("canvas styles: %w", err)
	}
	data, err := json.Marshal(wireCanvas{
		Width:           c.Width,
		Height:          c.Height,
		BackgroundColor: c.BackgroundColor,
		BackgroundImage: c.BackgroundImage,
		CSS:             c.CSS,
		Styles:          styles,
	})
	if err != nil {
		return nil, err
	}
	return mergeFields(data, c.extra)
}

// UnmarshalJSON decodes a canvas object.
func (c *Canvas) UnmarshalJSON(data []byte) error {
	var w wireCanvas
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	extra, err := splitFields(data, canvasKeys...)
	if err != nil {
		return err
	}
	styles, literals, err := decodeStyles(w.Styles)
	if err != nil {
		return err
	}
	*c = Canvas{
		Width:           w.Width,
		Height:          w.Height,
		BackgroundColor: w.BackgroundColor,
		BackgroundImage: w.BackgroundImage,
		CSS:             w.CSS,
		Styles:          styles,
		extra:           extra,
		literals:        literals,
	}
	return nil
}

// Clone returns an independent copy.
func (c *Canvas) Clone() *Canvas {
	if c == nil {
		return nil
	}
	out := *c
	out.Styles = c.Styles.Clone()
	out.extra = c.extra.clone()
	out.literals = c.literals.clone()
	return &out
}

// Dimension is a canvas size. Editors store either a bare number (pixels)
// or a CSS length such as "100%".
type Dimension string

// UnmarshalJSON accepts a JSON number or string.
func (d *Dimension) UnmarshalJSON(data []byte) error {
	s, err := scalarText(data)
	if err != nil {
		return fmt.Errorf("dimension: %w", err)
	}
	*d = Dimension(s)
	return nil
}

// MarshalJSON emits numeric dimensions as numbers.
func (d Dimension) MarshalJSON() ([]byte, error) {
	if d.numeric() {
		return []byte(d), nil
	}
	return json.Marshal(string(d))
}

// CSS returns the dimension as a CSS length; bare numbers are pixels.
func (d Dimension) CSS() string {
	if d.numeric() {
		return string(d) + "px"
	}
	return string(d)
}

func (d Dimension) numeric() bool {
	if _, err := strconv.ParseFloat(string(d), 64); err != nil {
		return false
	}
	return json.Valid([]byte(d))
}

// Styles maps CSS-like property names to values.
type Styles map[string]string

// UnmarshalJSON accepts string, number and boolean values. Null values are
// dropped.
func (s *Styles) UnmarshalJSON(data []byte) error {
	var raw fields
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("styles: %w", err)
	}
	styles, _, err := decodeStyles(raw)
	if err != nil {
		return err
	}
	*s = styles
	return nil
}

// Clone returns an independent copy.
func (s Styles) Clone() Styles {
	if s == nil {
		return nil
	}
	out := make(Styles, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// scalarText returns the literal text of a JSON string, number or boolean.
func scalarText(data []byte) (string, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	switch {
	case trimmed == "true" || trimmed == "false":
		return trimmed, nil
	case json.Valid(data) && trimmed != "null" && !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "["):
		return trimmed, nil
	}
	return "", fmt.Errorf("expected string, number or boolean, got %s", trimmed)
}
