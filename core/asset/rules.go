// Package asset: reference classification rules.
// Tells embedded data URIs, external URLs and storage keys apart and maps
// file extensions to the media types used when embedding.
package asset

import (
	"net/http"
	"net/url"
	"path"
	"strings"
)

// Kind classifies an asset reference.
type Kind int

const (
	// KindKey is a storage key or relative path.
	KindKey Kind = iota
	// KindDataURI is an inline data: URI.
	KindDataURI
	// KindExternal is an absolute http(s) or protocol-relative URL.
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindDataURI:
		return "data-uri"
	case KindExternal:
		return "external"
	default:
		return "key"
	}
}

// mediaTypes maps the extensions a landing page can reference to the media
// type recorded in the data URI.
var mediaTypes = map[string]string{
	".png": "image/png", ".jpg": "image/jpeg", ".jpeg": "image/jpeg",
	".gif": "image/gif", ".svg": "image/svg+xml", ".webp": "image/webp",
	".ico": "image/x-icon", ".bmp": "image/bmp", ".avif": "image/avif",
	".mp4": "video/mp4", ".webm": "video/webm",
	".woff": "font/woff", ".woff2": "font/woff2", ".ttf": "font/ttf",
}

// Classify reports the kind of ref.
func Classify(ref string) Kind {
	lower := strings.ToLower(strings.TrimSpace(ref))
	switch {
	case strings.HasPrefix(lower, "data:"):
		return KindDataURI
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "//"):
		return KindExternal
	default:
		return KindKey
	}
}

// IsImage reports whether ref names a file with an image extension.
func IsImage(ref string) bool {
	return strings.HasPrefix(MediaTypeByExtension(ref), "image/")
}

// MediaTypeByExtension returns the media type for the extension of ref's
// path, or "" when the extension is unknown.
func MediaTypeByExtension(ref string) string {
	p := ref
	if parsed, err := url.Parse(ref); err == nil {
		p = parsed.Path
	}
	return mediaTypes[strings.ToLower(path.Ext(p))]
}

// MediaType picks the media type of an asset: a usable declared type wins,
// then the extension of ref, then content sniffing.
func MediaType(ref, declared string, data []byte) string {
	if declared != "" {
		if mt := strings.TrimSpace(strings.SplitN(declared, ";", 2)[0]); mt != "" && mt != "application/octet-stream" {
			return strings.ToLower(mt)
		}
	}
	if mt := MediaTypeByExtension(ref); mt != "" {
		return mt
	}
	return strings.SplitN(http.DetectContentType(data), ";", 2)[0]
}
