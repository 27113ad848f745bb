package render

import (
	"sort"
	"strings"

	"github.com/landinghub/pagekit/core/page"
)

// StyleAttr serializes styles as an inline style attribute value with
// properties sorted by name. camelCase names become kebab-case; names that
// already contain a hyphen are kept verbatim. Empty values are skipped.
func StyleAttr(styles page.Styles) string {
	names := make([]string, 0, len(styles))
	for name, value := range styles {
		if strings.TrimSpace(value) == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	decls := make([]string, 0, len(names))
	for _, name := range names {
		decls = append(decls, KebabCase(name)+": "+styles[name])
	}
	return strings.Join(decls, "; ")
}

// ParseStyle parses an inline style attribute into styles keyed by
// camelCase property name. Custom properties (--name) keep their name,
// case included.
// Semicolons inside quotes or parentheses, as in data URIs, do not split
// declarations. Returns nil when there are no declarations.
func ParseStyle(attr string) page.Styles {
	var styles page.Styles
	for _, decl := range splitDeclarations(attr) {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if !strings.HasPrefix(name, "--") {
			name = strings.ToLower(name)
		}
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		if styles == nil {
			styles = page.Styles{}
		}
		styles[CamelCase(name)] = value
	}
	return styles
}

func splitDeclarations(s string) []string {
	var (
		decls []string
		depth int
		quote rune
		start int
	)
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case r == ';' && depth == 0:
			decls = append(decls, s[start:i])
			start = i + 1
		}
	}
	return append(decls, s[start:])
}

// KebabCase converts a camelCase CSS property name to its hyphenated form.
// Names containing a hyphen are returned unchanged.
func KebabCase(name string) string {
	if strings.Contains(name, "-") {
		return name
	}
	var b strings.Builder
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CamelCase converts a hyphenated CSS property name to camelCase, the
// inverse of KebabCase. Custom properties are returned unchanged.
func CamelCase(name string) string {
	if strings.HasPrefix(name, "--") || !strings.Contains(name, "-") {
		return name
	}
	var (
		b     strings.Builder
		upper bool
	)
	for _, r := range name {
		if r == '-' {
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		upper = false
		b.WriteRune(r)
	}
	return b.String()
}
