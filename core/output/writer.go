// Package output handles file naming and writing for pagekit outputs.
// Single outputs are written as <slug><ext> (e.g. spring-launch.html).
// Bundles are deterministic zip archives holding the page in several forms.
package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

// bundleTime is the modification time recorded for every bundle entry, so
// that equal pages produce byte-identical archives.
var bundleTime = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	// Ensure the output directory exists.
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// Write writes data to <OutputDir>/<slug of name><ext> and returns the path.
func (w *Writer) Write(name string, data []byte, ext string) (string, error) {
	path := filepath.Join(w.OutputDir, Slug(name)+ext)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// WriteBundle writes files as <OutputDir>/<slug of name>.zip.
func (w *Writer) WriteBundle(name string, files map[string][]byte) (string, error) {
	data, err := Bundle(files)
	if err != nil {
		return "", err
	}
	return w.Write(name, data, ".zip")
}

// Bundle builds a zip archive of files. Entries are sorted by name, carry a
// fixed modification time and are deflated, so equal inputs give equal bytes.
func Bundle(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		hdr := &zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: bundleTime,
		}
		hdr.SetMode(0644)
		f, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, fmt.Errorf("adding %s to bundle: %w", name, err)
		}
		if _, err := f.Write(files[name]); err != nil {
			return nil, fmt.Errorf("writing %s to bundle: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing bundle: %w", err)
	}
	return buf.Bytes(), nil
}

// Slug converts a page name into a file name: lowercase ASCII letters and
// digits, with every other run of characters folded into a single hyphen.
// Example: "Spring Launch / 2026!" becomes spring-launch-2026.
func Slug(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, ch := range strings.ToLower(name) {
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(ch)
			continue
		}
		pendingHyphen = true
	}
	if b.Len() == 0 {
		return "page"
	}
	return b.String()
}
