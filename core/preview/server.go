// Package preview exposes the page engine over HTTP for the editor's
// on-demand preview: render, import, validate, pack and unpack, plus
// read access to the template library.
package preview

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/landinghub/pagekit/core"
	"github.com/landinghub/pagekit/core/iuhpage"
	"github.com/landinghub/pagekit/core/library"
	"github.com/landinghub/pagekit/core/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/blake3"
)

// maxBodyBytes caps request bodies; packaged pages carry embedded images.
const maxBodyBytes = 32 << 20

// TemplateSource is the read side of the template library.
type TemplateSource interface {
	List(ctx context.Context) ([]library.Template, error)
	Get(ctx context.Context, id string) (*library.Template, error)
}

// Server serves the preview API.
type Server struct {
	importer  core.Importer
	packer    *iuhpage.Packer
	templates TemplateSource
	renderers map[string]core.Renderer
	metrics   *Collector
	registry  *prometheus.Registry
	logger    logrus.FieldLogger
	now       func() time.Time
}

// Options configures a Server. Packer and Templates may be nil, in which
// case the routes that need them answer 404.
type Options struct {
	Importer  core.Importer
	Packer    *iuhpage.Packer
	Templates TemplateSource
	Logger    logrus.FieldLogger
	// Now supplies the timestamps of imported metadata.
	Now func() time.Time
}

// NewServer creates a Server with its own metrics registry.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &Server{
		importer:  opts.Importer,
		packer:    opts.Packer,
		templates: opts.Templates,
		renderers: map[string]core.Renderer{
			"html":     render.NewHTMLRenderer(),
			"markdown": render.NewMarkdownRenderer(),
			"json":     render.NewJSONRenderer(),
			"pdf":      render.NewPDFRenderer(),
		},
		metrics:  NewCollector(),
		registry: prometheus.NewRegistry(),
		logger:   logger,
		now:      now,
	}
	s.registry.MustRegister(s.metrics)
	return s
}

// Routes sets up the HTTP router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
				next.ServeHTTP(w, r)
			})
		})

		r.Post("/render", s.instrument("render", s.handleRender))
		r.Post("/import", s.instrument("import", s.handleImport))
		r.Post("/validate", s.instrument("validate", s.handleValidate))
		r.Post("/pack", s.instrument("pack", s.handlePack))
		r.Post("/unpack", s.instrument("unpack", s.handleUnpack))

		r.Get("/templates", s.instrument("templates.list", s.handleListTemplates))
		r.Get("/templates/{templateID}", s.instrument("templates.get", s.handleGetTemplate))
		r.Get("/templates/{templateID}/preview", s.instrument("templates.preview", s.handlePreviewTemplate))
	})
	return r
}

// instrument records request count and latency for an operation.
func (s *Server) instrument(operation string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		h(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.RecordRequest(operation, strconv.Itoa(status), time.Since(start).Seconds())
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request served")
	})
}

// etag returns the strong entity tag of a rendered body. Rendering is
// deterministic, so equal pages get equal tags.
func etag(body []byte) string {
	sum := blake3.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// writeCached writes body with an ETag, answering 304 when the client
// already holds it.
func writeCached(w http.ResponseWriter, r *http.Request, contentType string, body []byte) {
	tag := etag(body)
	w.Header().Set("ETag", tag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// etagMatches reports whether an If-None-Match header value lists tag.
func etagMatches(header, tag string) bool {
	for _, candidate := range splitList(header) {
		if candidate == "*" || candidate == tag || candidate == "W/"+tag {
			return true
		}
	}
	return false
}

// statusFor maps an engine error to its HTTP status.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case isClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, library.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
