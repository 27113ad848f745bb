package page

import (
	"encoding/json"
	"strings"
	"time"
)

// TimeLayout is the ISO-8601 layout used for meta timestamps.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Meta is document metadata.
type Meta struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`

	extra fields
}

// MarshalJSON always emits keywords as an array, never null, and writes
// back members Meta does not model.
func (m Meta) MarshalJSON() ([]byte, error) {
	type alias Meta
	out := alias(m)
	if out.Keywords == nil {
		out.Keywords = []string{}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return mergeFields(data, m.extra)
}

// UnmarshalJSON decodes a meta object, keeping members it does not model.
func (m *Meta) UnmarshalJSON(data []byte) error {
	type alias Meta
	var out alias
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	extra, err := splitFields(data, "title", "description", "keywords", "created_at", "updated_at")
	if err != nil {
		return err
	}
	*m = Meta(out)
	m.extra = extra
	return nil
}

// NewMeta builds authoritative metadata from upload-form values. tags is the
// raw comma-separated input; both timestamps are set to now.
func NewMeta(title, description, tags string, now time.Time) *Meta {
	stamp := FormatTime(now)
	return &Meta{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Keywords:    ParseKeywords(tags),
		CreatedAt:   stamp,
		UpdatedAt:   stamp,
	}
}

// Touch sets UpdatedAt to now.
func (m *Meta) Touch(now time.Time) {
	m.UpdatedAt = FormatTime(now)
}

// FormatTime formats t in UTC with millisecond precision.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseKeywords splits a comma-separated tag input, trimming each tag and
// discarding empty ones. Duplicates are kept.
func ParseKeywords(input string) []string {
	keywords := []string{}
	for _, tag := range strings.Split(input, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		keywords = append(keywords, tag)
	}
	return keywords
}

// Clone returns an independent copy.
func (m *Meta) Clone() *Meta {
	if m == nil {
		return nil
	}
	out := *m
	if m.Keywords != nil {
		out.Keywords = make([]string, len(m.Keywords))
		copy(out.Keywords, m.Keywords)
	}
	out.extra = m.extra.clone()
	return &out
}
