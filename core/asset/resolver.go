package asset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/landinghub/pagekit/core"
	"github.com/landinghub/pagekit/core/fetch"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotFound is returned when a resolver has no asset for a reference.
	ErrNotFound = errors.New("asset not found")
	// ErrUnsupported is returned when no resolver handles a reference kind.
	ErrUnsupported = errors.New("unsupported asset reference")
)

// FileResolver resolves keys and relative paths against a root directory.
type FileResolver struct {
	Root string
}

// NewFileResolver creates a FileResolver rooted at dir.
func NewFileResolver(dir string) *FileResolver {
	return &FileResolver{Root: dir}
}

// Resolve reads ref below Root and returns it as a data URI. References
// that would escape Root are rejected.
func (r *FileResolver) Resolve(_ context.Context, ref string) (string, error) {
	if Classify(ref) != KindKey {
		return "", fmt.Errorf("%w: %s is not a file reference", ErrUnsupported, ref)
	}
	name := filepath.FromSlash(strings.TrimPrefix(ref, "/"))
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: %s escapes the asset directory", ErrUnsupported, ref)
	}
	data, err := os.ReadFile(filepath.Join(r.Root, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return "", fmt.Errorf("reading asset %s: %w", ref, err)
	}
	return EncodeDataURI(MediaType(ref, "", data), data), nil
}

// AssetFetcher downloads external assets.
type AssetFetcher interface {
	FetchAsset(ctx context.Context, url string) (*core.FetchResult, error)
}

// HTTPResolver resolves external URLs by downloading them.
type HTTPResolver struct {
	fetcher AssetFetcher
}

// NewHTTPResolver creates an HTTPResolver using f.
func NewHTTPResolver(f AssetFetcher) *HTTPResolver {
	return &HTTPResolver{fetcher: f}
}

// Resolve downloads ref and returns it as a data URI.
// Protocol-relative references are fetched over https.
func (r *HTTPResolver) Resolve(ctx context.Context, ref string) (string, error) {
	if Classify(ref) != KindExternal {
		return "", fmt.Errorf("%w: %s is not an external URL", ErrUnsupported, ref)
	}
	url := ref
	if strings.HasPrefix(url, "//") {
		url = "https:" + url
	}
	res, err := r.fetcher.FetchAsset(ctx, url)
	if err != nil {
		var statusErr *fetch.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return "", err
	}
	return EncodeDataURI(MediaType(ref, res.ContentType, res.Body), res.Body), nil
}

// Router dispatches references by kind. Data URIs resolve to themselves;
// external URLs go to the external resolver; keys are tried against each
// key resolver in order and the first success wins.
type Router struct {
	External core.AssetResolver
	Keys     []core.AssetResolver
	Logger   logrus.FieldLogger
}

// Resolve resolves ref with the resolver responsible for its kind.
func (r *Router) Resolve(ctx context.Context, ref string) (string, error) {
	switch Classify(ref) {
	case KindDataURI:
		return ref, nil
	case KindExternal:
		if r.External == nil {
			return "", fmt.Errorf("%w: no resolver for external URL %s", ErrUnsupported, ref)
		}
		return r.External.Resolve(ctx, ref)
	}

	if len(r.Keys) == 0 {
		return "", fmt.Errorf("%w: no resolver for key %s", ErrUnsupported, ref)
	}
	var errs []error
	for _, res := range r.Keys {
		uri, err := res.Resolve(ctx, ref)
		if err == nil {
			return uri, nil
		}
		if r.Logger != nil {
			r.Logger.WithError(err).WithField("ref", ref).Debug("key resolver missed")
		}
		errs = append(errs, err)
	}
	return "", errors.Join(errs...)
}
