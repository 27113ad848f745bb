package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/landinghub/pagekit/core/asset"
	"github.com/landinghub/pagekit/core/iuhpage"
	"github.com/landinghub/pagekit/core/library"
	"github.com/landinghub/pagekit/core/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadPageAllowsComments(t *testing.T) {
	path := writeFile(t, "page.json", `{
		// hero page
		"canvas": {},
		"elements": [
			{"type": "divider"}, /* spacer */
		],
		"meta": {"title": "Commented"},
	}`)

	doc, err := readPage(path)
	require.NoError(t, err)
	assert.Equal(t, "Commented", doc.Meta.Title)
	assert.Len(t, doc.Elements, 1)
}

func TestReadPageInvalid(t *testing.T) {
	path := writeFile(t, "page.json", `{"canvas": {}, "elements": []}`)
	_, err := readPage(path)
	assert.ErrorIs(t, err, page.ErrInvalidDocument)
}

func TestReadMetaFile(t *testing.T) {
	path := writeFile(t, "meta.yaml", "title: Spring\ndescription: Launch page\nkeywords:\n  - saas\n  - launch\n")
	m, err := readMetaFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Spring", m.Title)
	assert.Equal(t, "saas,launch", m.Tags)

	path = writeFile(t, "meta.yaml", "title: Spring\ntags: a, b\n")
	m, err = readMetaFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a, b", m.Tags)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "landing", baseName("/tmp/x/landing.html"))
	assert.Equal(t, "pricing", baseName("https://example.com/pricing/"))
	assert.Equal(t, "example.com", baseName("https://example.com"))
}

func TestValidateFormatFlags(t *testing.T) {
	reset := func() { flagHTML, flagMarkdown, flagPDF, flagJSON, flagZip = false, false, false, false, false }
	t.Cleanup(reset)

	reset()
	assert.Error(t, validateFormatFlags())

	flagPDF = true
	assert.NoError(t, validateFormatFlags())
	assert.Equal(t, ".pdf", selectRenderer().Extension())

	flagZip = true
	assert.Error(t, validateFormatFlags())
}

func TestBundleFiles(t *testing.T) {
	doc := &page.PageData{
		Canvas:   &page.Canvas{},
		Elements: []page.Element{page.NewElement(page.TextData{Text: "Hi", Tag: "h1"})},
		Meta:     &page.Meta{Title: "Bundle"},
	}
	files, err := bundleFiles(doc)
	require.NoError(t, err)
	assert.Len(t, files, 3)
	assert.Contains(t, string(files["index.html"]), "<h1")
	assert.Contains(t, string(files["page.md"]), "# Bundle")
	assert.Contains(t, string(files["page.json"]), `"title": "Bundle"`)
}

// execute runs the root command with args, as the binary would.
func execute(t *testing.T, args ...string) {
	t.Helper()
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()), "pagekit %v", args)
}

func TestCommandsEndToEnd(t *testing.T) {
	t.Cleanup(func() {
		flagHTML = false
		flagRenderUnpack = false
		flagLenient = false
		rootCmd.SetArgs(nil)
	})

	assets := t.TempDir()
	png := []byte("\x89PNG\r\n\x1a\n0000")
	require.NoError(t, os.WriteFile(filepath.Join(assets, "hero.png"), png, 0o644))

	pagePath := writeFile(t, "page.json", `{
		"canvas": {"width": 1200},
		"elements": [
			{"type": "container", "styles": {"backgroundImage": "url('hero.png')"}, "children": [
				{"type": "image", "componentData": {"src": "hero.png", "alt": "Hero"}}
			]}
		],
		"meta": {"title": "Spring Launch"}
	}`)
	out := t.TempDir()
	db := filepath.Join(t.TempDir(), "library.db")

	execute(t, "validate", pagePath)

	execute(t, "render", pagePath, "--html", "--output_dir", out)
	rendered, err := os.ReadFile(filepath.Join(out, "spring-launch.html"))
	require.NoError(t, err)
	assert.Contains(t, string(rendered), `src="hero.png"`)

	execute(t, "pack", pagePath, "--assets-dir", assets, "--output_dir", out)
	f, err := os.Open(filepath.Join(out, "spring-launch.iuhpage"))
	require.NoError(t, err)
	env, err := iuhpage.Decode(f)
	f.Close()
	require.NoError(t, err)
	want := asset.EncodeDataURI("image/png", png)
	assert.Equal(t, map[string]string{"hero.png": want}, env.EmbeddedImages)

	execute(t, "unpack", filepath.Join(out, "spring-launch.iuhpage"), "--render", "--name", "restored", "--output_dir", out)
	restored, err := readPage(filepath.Join(out, "restored.json"))
	require.NoError(t, err)
	img, ok := restored.Elements[0].Children[0].Image()
	require.True(t, ok)
	assert.Equal(t, want, img.Src)
	assert.Equal(t, "url('"+want+"')", restored.Elements[0].Styles["backgroundImage"])
	assert.FileExists(t, filepath.Join(out, "restored.html"))

	execute(t, "library", "add", pagePath, "--library", db, "--category", "saas")
	store, err := library.Open(db)
	require.NoError(t, err)
	defer store.Close()
	templates, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "Spring Launch", templates[0].Name)
	assert.Equal(t, "saas", templates[0].Category)
}
