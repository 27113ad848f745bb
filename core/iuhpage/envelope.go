// Package iuhpage implements the .iuhpage portable package: a page document
// bundled with the images it references, embedded as data URIs, so it can
// move between systems without live asset URLs.
package iuhpage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/landinghub/pagekit/core/page"
)

// Format is the self-identifying discriminant of every envelope.
const Format = "iuhpage"

// Extension is the file extension of packaged pages.
const Extension = ".iuhpage"

// ErrInvalidEnvelope is returned for input that is not a valid .iuhpage
// package: malformed JSON, a wrong or missing format, or missing pageData.
var ErrInvalidEnvelope = errors.New("not a valid .iuhpage package")

// Envelope is the on-disk form of a packaged page.
type Envelope struct {
	Format         string            `json:"format"`
	PageData       *page.PageData    `json:"pageData"`
	Metadata       *Metadata         `json:"metadata,omitempty"`
	EmbeddedImages map[string]string `json:"embeddedImages"`
}

// Metadata is the optional descriptive header of an envelope.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// MarshalJSON always emits embeddedImages as an object.
func (e Envelope) MarshalJSON() ([]byte, error) {
	type alias Envelope
	out := alias(e)
	if out.EmbeddedImages == nil {
		out.EmbeddedImages = map[string]string{}
	}
	return json.Marshal(out)
}

// check verifies the envelope header.
func (e *Envelope) check() error {
	if e == nil {
		return fmt.Errorf("%w: empty envelope", ErrInvalidEnvelope)
	}
	if e.Format != Format {
		return fmt.Errorf("%w: format is %q, want %q", ErrInvalidEnvelope, e.Format, Format)
	}
	if e.PageData == nil {
		return fmt.Errorf("%w: pageData is missing", ErrInvalidEnvelope)
	}
	return nil
}

// wireEnvelope keeps pageData raw so it can be validated on its own.
type wireEnvelope struct {
	Format         *string           `json:"format"`
	PageData       json.RawMessage   `json:"pageData"`
	Metadata       *Metadata         `json:"metadata"`
	EmbeddedImages map[string]string `json:"embeddedImages"`
}

// Decode reads an envelope. The envelope is a self-produced format, so
// decoding is strict: anything short of a well-formed package fails with
// ErrInvalidEnvelope, wrapping the underlying cause.
func Decode(r io.Reader) (*Envelope, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading package: %w", err)
	}

	var w wireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}
	if w.Format == nil {
		return nil, fmt.Errorf("%w: format is missing", ErrInvalidEnvelope)
	}
	if *w.Format != Format {
		return nil, fmt.Errorf("%w: format is %q, want %q", ErrInvalidEnvelope, *w.Format, Format)
	}
	if len(bytes.TrimSpace(w.PageData)) == 0 || bytes.Equal(bytes.TrimSpace(w.PageData), []byte("null")) {
		return nil, fmt.Errorf("%w: pageData is missing", ErrInvalidEnvelope)
	}
	doc, err := page.Validate(w.PageData)
	if err == nil {
		err = doc.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: pageData fails page validation: %w", ErrInvalidEnvelope, err)
	}

	images := w.EmbeddedImages
	if images == nil {
		images = map[string]string{}
	}
	return &Envelope{
		Format:         Format,
		PageData:       doc,
		Metadata:       w.Metadata,
		EmbeddedImages: images,
	}, nil
}

// Encode writes env as indented JSON. Map keys are sorted by encoding/json,
// so equal envelopes encode to equal bytes.
func Encode(w io.Writer, env *Envelope) error {
	if err := env.check(); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("encoding package: %w", err)
	}
	return nil
}

// Unpack returns a copy of the envelope's page with every reference found
// in the embedded image table replaced by its data URI. Image sources are
// replaced whole and background url(...) references are rewritten to
// url('<data URI>'). References missing from the table are left untouched.
func Unpack(env *Envelope) (*page.PageData, error) {
	if err := env.check(); err != nil {
		return nil, err
	}
	doc := env.PageData.Clone()
	doc.RewriteAssetRefs(func(ref string) (string, bool) {
		uri, ok := env.EmbeddedImages[ref]
		return uri, ok
	})
	return doc, nil
}
