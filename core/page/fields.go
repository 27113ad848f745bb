package page

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// fields holds the members of a JSON object this package does not model.
// They are kept verbatim and written back next to the modeled members, so
// editor payloads survive a decode and encode untouched.
type fields map[string]json.RawMessage

// splitFields decodes the object in data and returns its members whose
// names are not in known. It returns nil when nothing is left over.
func splitFields(data []byte, known ...string) (fields, error) {
	var all fields
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, name := range known {
		delete(all, name)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// mergeFields adds extra to the encoded object typed. Members already in
// typed win.
func mergeFields(typed []byte, extra fields) ([]byte, error) {
	if len(extra) == 0 {
		return typed, nil
	}
	var out fields
	if err := json.Unmarshal(typed, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = fields{}
	}
	for name, value := range extra {
		if _, ok := out[name]; !ok {
			out[name] = value
		}
	}
	return json.Marshal(out)
}

func (f fields) clone() fields {
	if f == nil {
		return nil
	}
	out := make(fields, len(f))
	for name, value := range f {
		out[name] = append(json.RawMessage(nil), value...)
	}
	return out
}

// rewriteString replaces the string member name of f when fn accepts its
// value. It reports whether f changed.
func (f fields) rewriteString(name string, fn func(ref string) (string, bool)) bool {
	raw, ok := f[name]
	if !ok {
		return false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil || value == "" {
		return false
	}
	replacement, ok := fn(value)
	if !ok {
		return false
	}
	encoded, err := json.Marshal(replacement)
	if err != nil {
		return false
	}
	f[name] = encoded
	return true
}

// rewriteRawString applies rewriteString to a raw JSON object. Values that
// are not objects, or that do not change, are returned as they were.
func rewriteRawString(raw json.RawMessage, name string, fn func(ref string) (string, bool)) json.RawMessage {
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return raw
	}
	var obj fields
	if err := json.Unmarshal(raw, &obj); err != nil || !obj.rewriteString(name, fn) {
		return raw
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return raw
	}
	return out
}

// styleLiterals records style values that arrived as JSON numbers or
// booleans, keyed by property name, holding their literal text.
type styleLiterals map[string]string

// decodeStyles converts raw style members to Styles. Null members are
// dropped.
func decodeStyles(raw fields) (Styles, styleLiterals, error) {
	if raw == nil {
		return nil, nil, nil
	}
	styles := make(Styles, len(raw))
	var literals styleLiterals
	for name, value := range raw {
		trimmed := bytes.TrimSpace(value)
		if string(trimmed) == "null" {
			continue
		}
		text, err := scalarText(value)
		if err != nil {
			return nil, nil, fmt.Errorf("styles.%s: %w", name, err)
		}
		styles[name] = text
		if trimmed[0] != '"' {
			if literals == nil {
				literals = styleLiterals{}
			}
			literals[name] = text
		}
	}
	return styles, literals, nil
}

// encodeStyles is the inverse of decodeStyles. A value still equal to its
// recorded literal is written as that number or boolean; everything else
// is a string.
func encodeStyles(styles Styles, literals styleLiterals) (fields, error) {
	if len(styles) == 0 {
		return nil, nil
	}
	out := make(fields, len(styles))
	for name, value := range styles {
		if lit, ok := literals[name]; ok && lit == value {
			out[name] = json.RawMessage(value)
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		out[name] = encoded
	}
	return out, nil
}

func (l styleLiterals) clone() styleLiterals {
	if l == nil {
		return nil
	}
	out := make(styleLiterals, len(l))
	for name, text := range l {
		out[name] = text
	}
	return out
}
