package page

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidDocument is returned when a document does not have the PageData
// shape: a canvas object, an elements array and a meta object with a title.
var ErrInvalidDocument = errors.New("invalid page document")

// ValidationError names the field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidDocument, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidDocument.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidDocument
}

// Validate checks the structure of a raw JSON document and decodes it.
// Missing, null or mistyped canvas, elements, meta or meta.title are
// rejected; nothing is defaulted.
func Validate(data []byte) (*PageData, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, &ValidationError{Field: "document", Reason: "is not a JSON object"}
	}
	if !isKind(probe["canvas"], '{') {
		return nil, &ValidationError{Field: "canvas", Reason: "must be an object"}
	}
	if !isKind(probe["elements"], '[') {
		return nil, &ValidationError{Field: "elements", Reason: "must be an array"}
	}
	if !isKind(probe["meta"], '{') {
		return nil, &ValidationError{Field: "meta", Reason: "must be an object"}
	}

	var meta map[string]json.RawMessage
	if err := json.Unmarshal(probe["meta"], &meta); err != nil {
		return nil, &ValidationError{Field: "meta", Reason: "must be an object"}
	}
	if !isKind(meta["title"], '"') {
		return nil, &ValidationError{Field: "meta.title", Reason: "must be a string"}
	}

	var doc PageData
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Field: "document", Reason: err.Error()}
	}
	return &doc, nil
}

// Validate checks the in-memory invariants of d.
func (d *PageData) Validate() error {
	if d == nil {
		return &ValidationError{Field: "document", Reason: "is nil"}
	}
	if d.Canvas == nil {
		return &ValidationError{Field: "canvas", Reason: "must be an object"}
	}
	if d.Elements == nil {
		return &ValidationError{Field: "elements", Reason: "must be an array"}
	}
	if d.Meta == nil {
		return &ValidationError{Field: "meta", Reason: "must be an object"}
	}
	var err error
	Walk(d.Elements, func(path Path, el *Element) bool {
		if el.Type == "" {
			err = &ValidationError{Field: "elements" + path.String(), Reason: "has no type"}
			return false
		}
		return true
	})
	return err
}

// isKind reports whether raw is a JSON value starting with the given
// delimiter ('{' object, '[' array, '"' string).
func isKind(raw json.RawMessage, delim byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == delim
}
