package preview

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/landinghub/pagekit/core/extract"
	"github.com/landinghub/pagekit/core/iuhpage"
	"github.com/landinghub/pagekit/core/library"
	"github.com/landinghub/pagekit/core/page"
	"github.com/landinghub/pagekit/core/render"
)

// contentTypes maps render formats to response content types.
var contentTypes = map[string]string{
	"html":     "text/html; charset=utf-8",
	"markdown": "text/markdown; charset=utf-8",
	"json":     "application/json",
	"pdf":      "application/pdf",
}

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "html"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		s.writeError(w, r, fmt.Errorf("%w: unknown format %q", errBadRequest, format))
		return
	}

	doc, err := readPage(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := renderer.Render(doc)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("rendering %s: %w", format, err))
		return
	}
	s.metrics.RecordRender(format, len(out))
	writeCached(w, r, contentTypes[format], out)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if s.importer == nil {
		s.writeError(w, r, fmt.Errorf("%w: importer", errNotConfigured))
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("reading body: %w", err))
		return
	}
	doc, err := s.importer.Import(string(body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Form values from the upload dialog replace the guessed metadata.
	q := r.URL.Query()
	if q.Has("title") || q.Has("description") || q.Has("tags") {
		doc.Meta = page.NewMeta(q.Get("title"), q.Get("description"), q.Get("tags"), s.now())
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	doc, err := readPage(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"valid":    true,
		"elements": countElements(doc),
		"assets":   len(doc.AssetRefs()),
	})
}

func (s *Server) handlePack(w http.ResponseWriter, r *http.Request) {
	if s.packer == nil {
		s.writeError(w, r, fmt.Errorf("%w: packer", errNotConfigured))
		return
	}
	doc, err := readPage(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	env, err := s.packer.Pack(r.Context(), doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="page`+iuhpage.Extension+`"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := iuhpage.Encode(w, env); err != nil {
		s.logger.WithError(err).Error("writing package")
	}
}

func (s *Server) handleUnpack(w http.ResponseWriter, r *http.Request) {
	env, err := iuhpage.Decode(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := iuhpage.Unpack(env)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.writeError(w, r, fmt.Errorf("%w: template library", errNotConfigured))
		return
	}
	templates, err := s.templates.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTemplate(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) handlePreviewTemplate(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTemplate(w, r)
	if !ok {
		return
	}
	out := render.HTML(t.PageData)
	s.metrics.RecordRender("html", len(out))
	writeCached(w, r, contentTypes["html"], out)
}

func (s *Server) lookupTemplate(w http.ResponseWriter, r *http.Request) (*library.Template, bool) {
	if s.templates == nil {
		s.writeError(w, r, fmt.Errorf("%w: template library", errNotConfigured))
		return nil, false
	}
	t, err := s.templates.Get(r.Context(), chi.URLParam(r, "templateID"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return t, true
}

var (
	errBadRequest    = errors.New("bad request")
	errNotConfigured = errors.New("not configured")
)

// readPage decodes and validates a page document from the request body.
func readPage(r *http.Request) (*page.PageData, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	doc, err := page.Validate(body)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func countElements(doc *page.PageData) int {
	n := 0
	page.Walk(doc.Elements, func(page.Path, *page.Element) bool {
		n++
		return true
	})
	return n
}

func isClientError(err error) bool {
	return errors.Is(err, page.ErrInvalidDocument) ||
		errors.Is(err, extract.ErrUnparsableHTML) ||
		errors.Is(err, iuhpage.ErrInvalidEnvelope) ||
		errors.Is(err, iuhpage.ErrUnresolvedAsset) ||
		errors.Is(err, errBadRequest)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if errors.Is(err, errNotConfigured) {
		status = http.StatusNotFound
	}
	resp := errorResponse{Error: err.Error()}
	var verr *page.ValidationError
	if errors.As(err, &verr) {
		resp.Field = verr.Field
	}

	entry := s.logger.WithError(err).WithField("path", r.URL.Path)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("writing response")
	}
}

// splitList splits a comma-separated header value.
func splitList(header string) []string {
	var out []string
	for _, part := range strings.Split(header, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
