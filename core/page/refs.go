package page

import (
	"regexp"
	"strings"
)

// cssURLRegex matches url(...) with single, double or no quotes.
var cssURLRegex = regexp.MustCompile(`url\(\s*(?:'([^']*)'|"([^"]*)"|([^)'"\s]*))\s*\)`)

// BackgroundURLs returns every url(...) reference in a CSS background value,
// in order of appearance.
func BackgroundURLs(value string) []string {
	var refs []string
	for _, m := range cssURLRegex.FindAllStringSubmatch(value, -1) {
		if ref := firstNonEmpty(m[1:]); ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}

// RewriteBackgroundURLs replaces each url(...) reference for which fn
// returns ok with url('<replacement>'). References fn declines are kept
// byte-for-byte, so a value with no accepted reference is returned as is.
func RewriteBackgroundURLs(value string, fn func(ref string) (string, bool)) string {
	return cssURLRegex.ReplaceAllStringFunc(value, func(match string) string {
		m := cssURLRegex.FindStringSubmatch(match)
		ref := firstNonEmpty(m[1:])
		if ref == "" {
			return match
		}
		replacement, ok := fn(ref)
		if !ok {
			return match
		}
		return "url('" + replacement + "')"
	})
}

// AssetRefs returns every asset reference in elements: image sources and
// background-image urls, depth-first, duplicates included.
func AssetRefs(elements []Element) []string {
	var refs []string
	Walk(elements, func(_ Path, el *Element) bool {
		if img, ok := el.Image(); ok && img.Src != "" {
			refs = append(refs, img.Src)
		}
		refs = append(refs, BackgroundURLs(el.Styles["backgroundImage"])...)
		return true
	})
	return refs
}

// AssetRefs returns the canvas background references followed by the
// element references, duplicates included.
func (d *PageData) AssetRefs() []string {
	var refs []string
	if d.Canvas != nil {
		refs = append(refs, canvasBackgroundRefs(d.Canvas.BackgroundImage)...)
		refs = append(refs, BackgroundURLs(d.Canvas.Styles["backgroundImage"])...)
	}
	return append(refs, AssetRefs(d.Elements)...)
}

// RewriteAssetRefs replaces, in place, every reference for which fn
// returns ok. The componentData src of any element type (and a video
// poster) is replaced whole; background references are rewritten through
// RewriteBackgroundURLs.
func (d *PageData) RewriteAssetRefs(fn func(ref string) (string, bool)) {
	if c := d.Canvas; c != nil {
		if isBareRef(c.BackgroundImage) {
			if v, ok := fn(c.BackgroundImage); ok {
				c.BackgroundImage = v
			}
		} else {
			c.BackgroundImage = RewriteBackgroundURLs(c.BackgroundImage, fn)
		}
		if bg, ok := c.Styles["backgroundImage"]; ok {
			c.Styles["backgroundImage"] = RewriteBackgroundURLs(bg, fn)
		}
	}
	Walk(d.Elements, func(_ Path, el *Element) bool {
		rewriteSource(el, fn)
		if bg, ok := el.Styles["backgroundImage"]; ok {
			el.Styles["backgroundImage"] = RewriteBackgroundURLs(bg, fn)
		}
		return true
	})
}

// rewriteSource rewrites the source references held in el's componentData.
func rewriteSource(el *Element, fn func(ref string) (string, bool)) {
	replace := func(ref string) string {
		if ref == "" {
			return ref
		}
		if v, ok := fn(ref); ok {
			return v
		}
		return ref
	}
	switch data := el.Data.(type) {
	case ImageData:
		data.Src = replace(data.Src)
		el.Data = data
	case VideoData:
		data.Src = replace(data.Src)
		data.Poster = replace(data.Poster)
		el.Data = data
	case Unknown:
		if data.Raw != nil {
			data.Raw = rewriteRawString(data.Raw, "src", fn)
			el.Data = data
		}
	default:
		if el.dataExtra != nil {
			el.dataExtra.rewriteString("src", fn)
		}
	}
}

// canvasBackgroundRefs reads the canvas backgroundImage, which may hold a
// bare reference instead of a CSS value.
func canvasBackgroundRefs(value string) []string {
	if isBareRef(value) {
		return []string{value}
	}
	return BackgroundURLs(value)
}

func isBareRef(value string) bool {
	return value != "" && !strings.Contains(value, "(")
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
