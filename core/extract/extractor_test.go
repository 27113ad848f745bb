package extract

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/landinghub/pagekit/core/page"
	"github.com/landinghub/pagekit/core/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newTestExtractor() *HTMLExtractor {
	return &HTMLExtractor{Now: func() time.Time { return fixedNow }}
}

func renderedFixture() *page.PageData {
	return &page.PageData{
		Canvas: &page.Canvas{Width: "1200", Height: "100%", BackgroundColor: "#fff", CSS: "body { margin: 0; }",
			Styles: page.Styles{"fontFamily": "Inter, sans-serif"}},
		Elements: []page.Element{
			{
				ID:     "hero",
				Type:   page.TypeContainer,
				Data:   page.ContainerData{Tag: "section"},
				Styles: page.Styles{"backgroundImage": "url('data:image/png;base64,AAAA')", "padding": "24px", "--brandColor": "#0af"},
				Children: []page.Element{
					page.NewElement(page.TextData{Text: "Ship <faster> & safer", Tag: "h1"}),
					page.NewElement(page.TextData{Text: "Plain paragraph"}),
					page.NewElement(page.ImageData{Src: "imgA", Alt: "Hero shot"}),
					page.NewElement(page.ButtonData{Label: "Start", Href: "/signup"}),
					page.NewElement(page.ButtonData{Label: "Later"}),
				},
			},
			page.NewElement(page.LinkData{Text: "Docs", Href: "https://docs.example.com"}),
			page.NewElement(page.VideoData{Src: "https://cdn.example.com/v.mp4", Poster: "poster.png"}),
			page.NewElement(page.MarkdownData{Source: "# Title\n\n- one\n- two"}),
			page.NewElement(page.HTMLData{HTML: `<iframe src="https://maps.example.com"></iframe>`}),
			page.NewElement(page.DividerData{}),
			{Type: "carousel", Data: page.Unknown{Type: "carousel", Raw: json.RawMessage(`{"slides":2}`)},
				Children: []page.Element{page.NewElement(page.ImageData{Src: "s1.png"})}},
		},
		Meta: &page.Meta{Title: "Launch day", Description: "All about it", Keywords: []string{"saas", "launch"}},
	}
}

func TestImportRenderedRoundTrip(t *testing.T) {
	original := renderedFixture()
	first := render.HTML(original)

	imported, err := newTestExtractor().Import(string(first))
	require.NoError(t, err)
	require.NoError(t, imported.Validate())

	assert.Equal(t, original.Canvas, imported.Canvas)
	assert.Equal(t, original.Elements, imported.Elements)
	assert.Equal(t, original.Meta.Title, imported.Meta.Title)
	assert.Equal(t, original.Meta.Description, imported.Meta.Description)
	assert.Equal(t, original.Meta.Keywords, imported.Meta.Keywords)
	assert.Equal(t, page.FormatTime(fixedNow), imported.Meta.CreatedAt)

	assert.Equal(t, string(first), string(render.HTML(imported)))
}

func TestImportRenderedBlankPage(t *testing.T) {
	blank := &page.PageData{Canvas: &page.Canvas{}, Elements: []page.Element{}, Meta: &page.Meta{Title: "Blank"}}

	imported, err := newTestExtractor().Import(string(render.HTML(blank)))
	require.NoError(t, err)
	assert.NotNil(t, imported.Elements)
	assert.Empty(t, imported.Elements)
	assert.Equal(t, "Blank", imported.Meta.Title)
}

func TestImportGeneric(t *testing.T) {
	src := `<!doctype html>
<html>
<head>
  <title>  Acme   Launch </title>
  <meta name="description" content="Landing for Acme">
  <meta name="keywords" content="acme, rockets, ">
  <style>.hero { color: red; }</style>
  <script>alert("x")</script>
</head>
<body style="background-color: #111; font-family: serif">
  <header id="top">
    <nav><a href="/">Home</a> <a class="btn btn-primary" href="/buy">Buy now</a></nav>
  </header>
  <section class="hero" style="background-image: url('hero.jpg'); padding: 40px">
    <h1>Rockets <em>for everyone</em></h1>
    <p>Fast, <strong>cheap</strong>, reliable.</p>
    <picture><source srcset="a.webp"><img src="hero.png" alt="Rocket"></picture>
    <ul><li>One</li><li>Two</li></ul>
    <div style="background-image: url(deco.png)"></div>
    <div></div>
  </section>
  <hr>
  <video poster="p.jpg"><source src="intro.mp4"></video>
  <form action="/subscribe"><input type="email"><input type="submit" value="Join"></form>
  <footer><p>&copy; Acme</p><custom-widget>Widget text</custom-widget></footer>
</body>
</html>`

	doc, err := newTestExtractor().Import(src)
	require.NoError(t, err)
	require.NoError(t, doc.Validate())

	assert.Equal(t, "Acme Launch", doc.Meta.Title)
	assert.Equal(t, "Landing for Acme", doc.Meta.Description)
	assert.Equal(t, []string{"acme", "rockets"}, doc.Meta.Keywords)
	assert.Equal(t, ".hero { color: red; }", doc.Canvas.CSS)
	assert.Equal(t, "#111", doc.Canvas.BackgroundColor)
	assert.Equal(t, page.Styles{"fontFamily": "serif"}, doc.Canvas.Styles)

	require.Len(t, doc.Elements, 6)

	header := doc.Elements[0]
	assert.Equal(t, "top", header.ID)
	assert.Equal(t, page.ContainerData{Tag: "header"}, header.Data)
	nav := header.Children[0]
	require.Len(t, nav.Children, 2)
	assert.Equal(t, page.LinkData{Text: "Home", Href: "/"}, nav.Children[0].Data)
	assert.Equal(t, page.ButtonData{Label: "Buy now", Href: "/buy"}, nav.Children[1].Data)

	hero := doc.Elements[1]
	assert.Equal(t, "url('hero.jpg')", hero.Styles["backgroundImage"])
	require.Len(t, hero.Children, 5)
	assert.Equal(t, page.TextData{Text: "Rockets for everyone", Tag: "h1"}, hero.Children[0].Data)
	assert.Equal(t, page.TextData{Text: "Fast, cheap, reliable."}, hero.Children[1].Data)
	assert.Equal(t, page.ImageData{Src: "hero.png", Alt: "Rocket"}, hero.Children[2].Data)
	list := hero.Children[3]
	assert.Equal(t, page.ContainerData{Tag: "ul"}, list.Data)
	assert.Equal(t, page.TextData{Text: "One", Tag: "li"}, list.Children[0].Data)
	assert.Equal(t, page.TypeContainer, hero.Children[4].Type)
	assert.Equal(t, "url(deco.png)", hero.Children[4].Styles["backgroundImage"])

	assert.Equal(t, page.DividerData{}, doc.Elements[2].Data)
	assert.Equal(t, page.VideoData{Src: "intro.mp4", Poster: "p.jpg"}, doc.Elements[3].Data)

	form, ok := doc.Elements[4].Data.(page.HTMLData)
	require.True(t, ok)
	assert.Contains(t, form.HTML, `<input type="submit" value="Join"/>`)

	footer := doc.Elements[5]
	require.Len(t, footer.Children, 2)
	assert.Equal(t, page.TextData{Text: "© Acme"}, footer.Children[0].Data)
	assert.Equal(t, page.TextData{Text: "Widget text"}, footer.Children[1].Data)
}

func TestImportGenericEmbedsAndIDs(t *testing.T) {
	src := `<body><form action="/s"><input type="email"></form><p>Hi</p></body>`

	first, err := newTestExtractor().Import(src)
	require.NoError(t, err)
	second, err := newTestExtractor().Import(src)
	require.NoError(t, err)

	require.Len(t, first.Elements, 2)
	embed, ok := first.Elements[0].Data.(page.HTMLData)
	require.True(t, ok)
	assert.Contains(t, embed.HTML, `<form action="/s">`)

	assert.NotEmpty(t, first.Elements[1].ID)
	assert.Equal(t, first.Elements[1].ID, second.Elements[1].ID)
	assert.NotEqual(t, first.Elements[0].ID, first.Elements[1].ID)
}

func TestImportTextOnlyBody(t *testing.T) {
	doc, err := newTestExtractor().Import("just some words")
	require.NoError(t, err)
	require.Len(t, doc.Elements, 1)
	assert.Equal(t, page.TextData{Text: "just some words", Tag: "span"}, doc.Elements[0].Data)
}

func TestImportUnparsable(t *testing.T) {
	for name, src := range map[string]string{
		"empty":       "",
		"whitespace":  "   \n\t",
		"empty body":  "<html><head><title>x</title></head><body>  </body></html>",
		"only script": "<script>var a = 1;</script>",
		"empty divs":  "<div><div></div></div>",
	} {
		t.Run(name, func(t *testing.T) {
			doc, err := newTestExtractor().Import(src)
			assert.Nil(t, doc)
			assert.ErrorIs(t, err, ErrUnparsableHTML)
		})
	}
}

func TestImportCorruptCanvasFallsBack(t *testing.T) {
	src := `<html><body><div class="lh-canvas" data-lh-canvas="{not json"><p data-lh-type="text">Hello</p></div></body></html>`

	doc, err := newTestExtractor().Import(src)
	require.NoError(t, err)
	require.NoError(t, doc.Validate())
	require.Len(t, doc.Elements, 1)
	require.Len(t, doc.Elements[0].Children, 1)
	assert.Equal(t, page.TextData{Text: "Hello"}, doc.Elements[0].Children[0].Data)
}
