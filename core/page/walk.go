package page

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Path locates an element by its index at each depth.
type Path []int

// String formats p as "[0].children[2]".
func (p Path) String() string {
	var b strings.Builder
	for i, idx := range p {
		if i > 0 {
			b.WriteString(".children")
		}
		b.WriteString("[")
		b.WriteString(strconv.Itoa(idx))
		b.WriteString("]")
	}
	return b.String()
}

// WalkFunc is called for each element. Returning false stops the walk.
type WalkFunc func(path Path, el *Element) bool

// Walk visits elements depth-first in array order, parents before children.
// The element pointers address the slices passed in, so fn may modify them.
func Walk(elements []Element, fn WalkFunc) {
	walk(elements, nil, fn)
}

func walk(elements []Element, prefix Path, fn WalkFunc) bool {
	for i := range elements {
		path := append(append(Path(nil), prefix...), i)
		if !fn(path, &elements[i]) {
			return false
		}
		if !walk(elements[i].Children, path, fn) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of d.
func (d *PageData) Clone() *PageData {
	if d == nil {
		return nil
	}
	return &PageData{
		Canvas:   d.Canvas.Clone(),
		Meta:     d.Meta.Clone(),
		Elements: cloneElements(d.Elements),
		extra:    d.extra.clone(),
	}
}

// Clone returns a deep copy of e.
func (e Element) Clone() Element {
	out := e
	out.Styles = e.Styles.Clone()
	out.extra = e.extra.clone()
	out.dataExtra = e.dataExtra.clone()
	out.literals = e.literals.clone()
	out.Children = cloneElements(e.Children)
	if u, ok := e.Data.(Unknown); ok && u.Raw != nil {
		out.Data = Unknown{Type: u.Type, Raw: append(json.RawMessage(nil), u.Raw...)}
	}
	return out
}

func cloneElements(elements []Element) []Element {
	if elements == nil {
		return nil
	}
	out := make([]Element, len(elements))
	for i, el := range elements {
		out[i] = el.Clone()
	}
	return out
}
