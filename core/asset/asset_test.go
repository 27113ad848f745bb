package asset

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/landinghub/pagekit/core"
	"github.com/landinghub/pagekit/core/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n0000")

func TestClassify(t *testing.T) {
	tests := []struct {
		ref  string
		want Kind
	}{
		{"data:image/png;base64,AAAA", KindDataURI},
		{"DATA:text/plain,hi", KindDataURI},
		{"https://cdn.example.com/a.png", KindExternal},
		{"http://cdn.example.com/a.png", KindExternal},
		{"//cdn.example.com/a.png", KindExternal},
		{"imgA", KindKey},
		{"assets/hero.jpg", KindKey},
		{"/assets/hero.jpg", KindKey},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.ref))
		})
	}
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, "image/webp", MediaType("a.webp", "", nil))
	assert.Equal(t, "image/jpeg", MediaType("https://x.test/p/A.JPG?w=10", "", nil))
	assert.Equal(t, "image/gif", MediaType("a.png", "image/gif; charset=binary", nil))
	assert.Equal(t, "image/png", MediaType("noext", "application/octet-stream", pngBytes))
	assert.True(t, IsImage("icons/x.svg"))
	assert.False(t, IsImage("intro.mp4"))
}

func TestDataURI(t *testing.T) {
	uri := EncodeDataURI("image/png", []byte{0, 0, 0})
	assert.Equal(t, "data:image/png;base64,AAAA", uri)

	mt, data, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mt)
	assert.Equal(t, []byte{0, 0, 0}, data)

	mt, data, err = DecodeDataURI("data:,Hello%2C%20World")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mt)
	assert.Equal(t, "Hello, World", string(data))

	mt, _, err = DecodeDataURI("data:image/svg+xml;charset=utf-8,%3Csvg%3E")
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml;charset=utf-8", mt)

	_, _, err = DecodeDataURI("https://x.test/a.png")
	assert.ErrorIs(t, err, ErrMalformedDataURI)
	_, _, err = DecodeDataURI("data:image/png;base64")
	assert.ErrorIs(t, err, ErrMalformedDataURI)
	_, _, err = DecodeDataURI("data:image/png;base64,@@@")
	assert.ErrorIs(t, err, ErrMalformedDataURI)
}

func TestQueue(t *testing.T) {
	q := NewQueue()
	q.Add("b", "a", "b", "", "c", "a")
	assert.Equal(t, []string{"b", "a", "c"}, q.All())
	assert.Equal(t, 3, q.Len())

	var got []string
	for q.HasNext() {
		got = append(got, q.Next())
	}
	assert.Equal(t, []string{"b", "a", "c"}, got)
}

func TestFileResolver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "img"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img", "hero.png"), pngBytes, 0o644))

	r := NewFileResolver(dir)
	ctx := context.Background()

	uri, err := r.Resolve(ctx, "img/hero.png")
	require.NoError(t, err)
	assert.Equal(t, EncodeDataURI("image/png", pngBytes), uri)

	uri, err = r.Resolve(ctx, "/img/hero.png")
	require.NoError(t, err)
	assert.Equal(t, EncodeDataURI("image/png", pngBytes), uri)

	_, err = r.Resolve(ctx, "img/missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Resolve(ctx, "../secret.png")
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = r.Resolve(ctx, "https://x.test/a.png")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestHTTPResolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/logo" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	}))
	defer srv.Close()

	r := NewHTTPResolver(fetch.NewWithClient(srv.Client()))
	ctx := context.Background()

	uri, err := r.Resolve(ctx, srv.URL+"/logo")
	require.NoError(t, err)
	assert.Equal(t, EncodeDataURI("image/png", pngBytes), uri)

	_, err = r.Resolve(ctx, srv.URL+"/nope.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Resolve(ctx, "imgA")
	assert.ErrorIs(t, err, ErrUnsupported)
}

type memStore map[string][]byte

func (m memStore) GetObject(_ context.Context, key string) ([]byte, string, error) {
	data, ok := m[key]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return data, "", nil
}

func TestStorageResolver(t *testing.T) {
	store := memStore{"pages/imgA": pngBytes}
	r := NewStorageResolver(store, "/pages/")
	ctx := context.Background()

	uri, err := r.Resolve(ctx, "imgA")
	require.NoError(t, err)
	assert.Equal(t, EncodeDataURI("image/png", pngBytes), uri)

	_, err = r.Resolve(ctx, "imgB")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewMinioStoreRequiresConfig(t *testing.T) {
	_, err := NewMinioStore(StorageConfig{Bucket: "assets"}, 0, nil)
	assert.Error(t, err)
	_, err = NewMinioStore(StorageConfig{Endpoint: "localhost:9000"}, 0, nil)
	assert.Error(t, err)

	store, err := NewMinioStore(StorageConfig{Endpoint: "localhost:9000", Bucket: "assets"}, 0, nil)
	require.NoError(t, err)
	assert.NotNil(t, store)
}

type resolverFunc func(ctx context.Context, ref string) (string, error)

func (f resolverFunc) Resolve(ctx context.Context, ref string) (string, error) { return f(ctx, ref) }

func TestRouter(t *testing.T) {
	miss := resolverFunc(func(_ context.Context, ref string) (string, error) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
	})
	hit := resolverFunc(func(_ context.Context, ref string) (string, error) {
		return "data:key," + ref, nil
	})
	external := resolverFunc(func(_ context.Context, ref string) (string, error) {
		return "data:ext," + ref, nil
	})
	ctx := context.Background()

	r := &Router{External: external, Keys: []core.AssetResolver{miss, hit}}

	uri, err := r.Resolve(ctx, "data:image/png;base64,AAAA")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", uri)

	uri, err = r.Resolve(ctx, "https://x.test/a.png")
	require.NoError(t, err)
	assert.Equal(t, "data:ext,https://x.test/a.png", uri)

	uri, err = r.Resolve(ctx, "imgA")
	require.NoError(t, err)
	assert.Equal(t, "data:key,imgA", uri)

	missing := &Router{Keys: []core.AssetResolver{miss}}
	_, err = missing.Resolve(ctx, "imgA")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = missing.Resolve(ctx, "https://x.test/a.png")
	assert.ErrorIs(t, err, ErrUnsupported)
}
