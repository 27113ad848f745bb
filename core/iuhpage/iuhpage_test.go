package iuhpage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/landinghub/pagekit/core/page"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pixel = "data:image/png;base64,AAAA"

// tableResolver resolves references from a fixed table and counts calls.
type tableResolver struct {
	table map[string]string
	calls map[string]int
}

func newTableResolver(table map[string]string) *tableResolver {
	return &tableResolver{table: table, calls: map[string]int{}}
}

func (r *tableResolver) Resolve(_ context.Context, ref string) (string, error) {
	r.calls[ref]++
	uri, ok := r.table[ref]
	if !ok {
		return "", fmt.Errorf("no asset %s", ref)
	}
	return uri, nil
}

func nestedDoc() *page.PageData {
	return &page.PageData{
		Canvas: &page.Canvas{},
		Elements: []page.Element{
			{
				Type:     page.TypeContainer,
				Data:     page.ContainerData{},
				Styles:   page.Styles{"backgroundImage": "url('imgA')"},
				Children: []page.Element{page.NewElement(page.ImageData{Src: "imgA"})},
			},
		},
		Meta: &page.Meta{Title: "Nested", Keywords: []string{}},
	}
}

func quietLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

func TestUnpackNestedBackground(t *testing.T) {
	env := &Envelope{
		Format:         Format,
		PageData:       nestedDoc(),
		EmbeddedImages: map[string]string{"imgA": pixel},
	}

	doc, err := Unpack(env)
	require.NoError(t, err)

	container := doc.Elements[0]
	assert.Equal(t, "url('"+pixel+"')", container.Styles["backgroundImage"])
	assert.Equal(t, page.ImageData{Src: pixel}, container.Children[0].Data)

	// The envelope's own page is untouched.
	assert.Equal(t, "url('imgA')", env.PageData.Elements[0].Styles["backgroundImage"])
	assert.Equal(t, page.ImageData{Src: "imgA"}, env.PageData.Elements[0].Children[0].Data)
}

func TestUnpackFormatGate(t *testing.T) {
	_, err := Unpack(&Envelope{Format: "other", PageData: nestedDoc()})
	assert.ErrorIs(t, err, ErrInvalidEnvelope)

	_, err = Unpack(&Envelope{Format: Format})
	assert.ErrorIs(t, err, ErrInvalidEnvelope)

	_, err = Unpack(nil)
	assert.ErrorIs(t, err, ErrInvalidEnvelope)
}

func TestUnpackLeavesMissesUnchanged(t *testing.T) {
	doc := nestedDoc()
	doc.Elements[0].Styles["backgroundImage"] = `linear-gradient(red, blue), url("https://cdn.test/x.png")`
	doc.Elements[0].Children[0].Data = page.ImageData{Src: "https://cdn.test/y.png"}

	out, err := Unpack(&Envelope{Format: Format, PageData: doc, EmbeddedImages: map[string]string{"imgA": pixel}})
	require.NoError(t, err)
	assert.Equal(t, doc, out)
}

func TestUnpackKeepsEditorPayloads(t *testing.T) {
	src := `{"format":"iuhpage","embeddedImages":{"imgA":"` + pixel + `"},"pageData":{
		"canvas":{"width":1200,"gridSize":8},
		"elements":[
			{"type":"image","componentData":{"src":"imgA","link":"/buy"},"styles":{"zIndex":2}},
			{"type":"video","componentData":{"src":"imgA"}},
			{"type":"logo","componentData":{"src":"imgA"}}
		],
		"meta":{"title":"T"}}}`

	env, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	doc, err := Unpack(env)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, &Envelope{Format: Format, PageData: doc}))
	out := buf.String()
	assert.Contains(t, out, `"gridSize": 8`)
	assert.Contains(t, out, `"link": "/buy"`)
	assert.Contains(t, out, `"zIndex": 2`)
	assert.NotContains(t, out, `"imgA"`)
	assert.Equal(t, page.VideoData{Src: pixel}, doc.Elements[1].Data)
}

func TestDecode(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		src := `{"format":"iuhpage","pageData":{"canvas":{},"elements":[{"type":"image","componentData":{"src":"imgA"}}],"meta":{"title":"T"}},"metadata":{"title":"T","description":"D"},"embeddedImages":{"imgA":"` + pixel + `"}}`
		env, err := Decode(strings.NewReader(src))
		require.NoError(t, err)
		assert.Equal(t, &Metadata{Title: "T", Description: "D"}, env.Metadata)
		assert.Equal(t, pixel, env.EmbeddedImages["imgA"])

		doc, err := Unpack(env)
		require.NoError(t, err)
		assert.Equal(t, page.ImageData{Src: pixel}, doc.Elements[0].Data)
	})

	t.Run("no embedded images", func(t *testing.T) {
		env, err := Decode(strings.NewReader(`{"format":"iuhpage","pageData":{"canvas":{},"elements":[],"meta":{"title":""}}}`))
		require.NoError(t, err)
		assert.NotNil(t, env.EmbeddedImages)
		assert.Nil(t, env.Metadata)
	})

	for name, src := range map[string]string{
		"malformed json":   `{"format":"iuhpage",`,
		"not an object":    `["iuhpage"]`,
		"wrong format":     `{"format":"other","pageData":{"canvas":{},"elements":[],"meta":{"title":""}}}`,
		"missing format":   `{"pageData":{"canvas":{},"elements":[],"meta":{"title":""}}}`,
		"missing pageData": `{"format":"iuhpage","embeddedImages":{}}`,
		"null pageData":    `{"format":"iuhpage","pageData":null}`,
		"invalid pageData": `{"format":"iuhpage","pageData":{"canvas":{},"elements":{},"meta":{"title":""}}}`,
		"untyped element":  `{"format":"iuhpage","pageData":{"canvas":{},"elements":[{"id":"a"}],"meta":{"title":""}}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(src))
			assert.ErrorIs(t, err, ErrInvalidEnvelope)
		})
	}

	t.Run("validation cause is kept", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`{"format":"iuhpage","pageData":{"canvas":{},"elements":[],"meta":{}}}`))
		assert.ErrorIs(t, err, ErrInvalidEnvelope)
		assert.ErrorIs(t, err, page.ErrInvalidDocument)
		assert.Contains(t, err.Error(), "pageData fails page validation")
		var verr *page.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "meta.title", verr.Field)
	})
}

func TestPack(t *testing.T) {
	doc := nestedDoc()
	doc.Canvas.BackgroundImage = "bg.jpg"
	doc.Elements = append(doc.Elements,
		page.NewElement(page.ImageData{Src: pixel}),
		page.NewElement(page.ImageData{Src: "https://cdn.test/logo.png"}),
	)
	r := newTableResolver(map[string]string{
		"imgA":                      pixel,
		"bg.jpg":                    "data:image/jpeg;base64,BBBB",
		"https://cdn.test/logo.png": "data:image/png;base64,CCCC",
	})

	before := doc.Clone()
	env, err := New(r, quietLogger()).Pack(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, Format, env.Format)
	assert.Equal(t, map[string]string{
		"imgA":                      pixel,
		"bg.jpg":                    "data:image/jpeg;base64,BBBB",
		"https://cdn.test/logo.png": "data:image/png;base64,CCCC",
	}, env.EmbeddedImages)
	assert.Equal(t, &Metadata{Title: "Nested"}, env.Metadata)
	assert.Equal(t, before, env.PageData)
	assert.Equal(t, 1, r.calls["imgA"], "duplicate references resolve once")
	assert.Zero(t, r.calls[pixel], "data URIs are not re-embedded")
}

func TestPackUnresolved(t *testing.T) {
	doc := nestedDoc()
	doc.Elements = append(doc.Elements, page.NewElement(page.ImageData{Src: "missing.png"}))
	r := newTableResolver(map[string]string{"imgA": pixel})

	_, err := New(r, quietLogger()).Pack(context.Background(), doc)
	assert.ErrorIs(t, err, ErrUnresolvedAsset)
	assert.Contains(t, err.Error(), "missing.png")

	logger, hook := test.NewNullLogger()
	p := New(r, logger)
	p.Lenient = true
	env, err := p.Pack(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"imgA": pixel}, env.EmbeddedImages)
	require.NotEmpty(t, hook.Entries)
	assert.Equal(t, logrus.WarnLevel, hook.Entries[0].Level)
	assert.Equal(t, "missing.png", hook.Entries[0].Data["ref"])
}

func TestPackRejectsNonDataURI(t *testing.T) {
	r := newTableResolver(map[string]string{"imgA": "https://elsewhere.test/a.png"})
	_, err := New(r, quietLogger()).Pack(context.Background(), nestedDoc())
	assert.ErrorIs(t, err, ErrUnresolvedAsset)
}

func TestPackRejectsInvalidDocument(t *testing.T) {
	_, err := New(newTableResolver(nil), quietLogger()).Pack(context.Background(), &page.PageData{})
	assert.ErrorIs(t, err, page.ErrInvalidDocument)
}

// Unpacking a packed page equals resolving every reference directly.
func TestPackUnpackMatchesDirectResolution(t *testing.T) {
	table := map[string]string{
		"imgA":       pixel,
		"imgB":       "data:image/gif;base64,R0lG",
		"canvas.png": "data:image/png;base64,DDDD",
	}
	docs := []*page.PageData{
		nestedDoc(),
		{
			Canvas: &page.Canvas{BackgroundImage: "url(canvas.png)", Styles: page.Styles{"backgroundImage": "url(imgB)"}},
			Elements: []page.Element{
				{Type: page.TypeContainer, Data: page.ContainerData{Tag: "section"},
					Styles: page.Styles{"backgroundImage": `url("imgB"), url(imgA)`},
					Children: []page.Element{
						{Type: page.TypeContainer, Data: page.ContainerData{}, Children: []page.Element{
							page.NewElement(page.ImageData{Src: "imgB", Alt: "deep"}),
						}},
						page.NewElement(page.TextData{Text: "imgA"}),
					}},
				page.NewElement(page.ImageData{Src: "imgA"}),
			},
			Meta: &page.Meta{Title: "Deep", Keywords: []string{}},
		},
	}

	for i, doc := range docs {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			env, err := New(newTableResolver(table), quietLogger()).Pack(context.Background(), doc)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, env))
			decoded, err := Decode(&buf)
			require.NoError(t, err)
			unpacked, err := Unpack(decoded)
			require.NoError(t, err)

			direct := doc.Clone()
			direct.RewriteAssetRefs(func(ref string) (string, bool) {
				uri, ok := table[ref]
				return uri, ok
			})
			assert.Equal(t, direct, unpacked)
		})
	}
}

func TestEncode(t *testing.T) {
	env := &Envelope{Format: Format, PageData: nestedDoc(), EmbeddedImages: map[string]string{"b": "data:,b", "a": "data:,a"}}

	var first, second bytes.Buffer
	require.NoError(t, Encode(&first, env))
	require.NoError(t, Encode(&second, env))
	assert.Equal(t, first.String(), second.String())
	assert.True(t, strings.HasPrefix(first.String(), "{\n  \"format\": \"iuhpage\""))
	assert.Less(t, strings.Index(first.String(), `"a":`), strings.Index(first.String(), `"b":`))

	empty := &Envelope{Format: Format, PageData: nestedDoc()}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, empty))
	assert.Contains(t, buf.String(), `"embeddedImages": {}`)

	assert.ErrorIs(t, Encode(&buf, &Envelope{Format: "zip"}), ErrInvalidEnvelope)
}
