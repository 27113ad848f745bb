package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/landinghub/pagekit/core/fetch"
	"github.com/landinghub/pagekit/core/page"
	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// readPage loads and validates a page document. Comments and trailing
// commas are allowed in the file.
func readPage(path string) (*page.PageData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}
	doc, err := page.Validate(jsonc.ToJSON(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// metaFile is the YAML form of the upload dialog's metadata fields.
type metaFile struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Tags        string   `yaml:"tags"`
	Keywords    []string `yaml:"keywords"`
}

// readMetaFile loads a metadata file. A keywords list is joined into the
// comma-separated tags form.
func readMetaFile(path string) (*metaFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading meta file: %w", err)
	}
	var m metaFile
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parsing meta file %s: %w", path, err)
	}
	if len(m.Keywords) > 0 {
		tags := m.Keywords
		if m.Tags != "" {
			tags = append([]string{m.Tags}, tags...)
		}
		m.Tags = strings.Join(tags, ",")
	}
	return &m, nil
}

// loadHTML reads src from disk, or fetches it when src is an http(s) URL.
func loadHTML(ctx context.Context, src string) (string, error) {
	if parsed, err := url.Parse(src); err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") {
		if parsed.Host == "" {
			return "", fmt.Errorf("invalid URL: %s", src)
		}
		f := fetch.New()
		f.MaxBytes = cfg.Assets.MaxBytes
		result, err := f.Fetch(ctx, src)
		if err != nil {
			return "", fmt.Errorf("fetch: %w", err)
		}
		return result.HTML(), nil
	}
	raw, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("reading HTML: %w", err)
	}
	return string(raw), nil
}

// baseName returns the file name of path without its extension. For URLs
// it is the last path segment, or the host for a site root.
func baseName(path string) string {
	if parsed, err := url.Parse(path); err == nil && parsed.Host != "" {
		seg := filepath.Base(strings.Trim(parsed.Path, "/"))
		if seg == "." || seg == "/" {
			return parsed.Host
		}
		path = seg
	}
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// outputName picks the name outputs are written under: --name when given,
// then the page title, then the input file name.
func outputName(flags *pflag.FlagSet, doc *page.PageData, input string) string {
	if name, _ := flags.GetString("name"); name != "" {
		return name
	}
	if doc != nil && doc.Meta != nil && strings.TrimSpace(doc.Meta.Title) != "" {
		return doc.Meta.Title
	}
	return baseName(input)
}
