// Package server exposes the document store and the engine over HTTP.
//
// Routes:
//
//	GET    /healthz
//	GET    /version
//	GET    /documents
//	GET    /documents/{name}
//	PUT    /documents/{name}
//	DELETE /documents/{name}
//	GET    /documents/{name}/dot
//	GET    /documents/{name}/render?format=svg&detailed=true&direction=TB
//	POST   /documents/{name}/compile
//	POST   /validate
//	POST   /compile
//
// Errors are JSON objects {"error": message, "code": code}, with the status
// derived from the error code.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/splice/pkg/buildinfo"
	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/graphdoc"
	"github.com/matzehuels/splice/pkg/interchange"
	"github.com/matzehuels/splice/pkg/pipeline"
	"github.com/matzehuels/splice/pkg/store"
)

// DefaultMaxBodyBytes bounds request bodies.
const DefaultMaxBodyBytes = 8 << 20

// Server serves the API.
type Server struct {
	store   store.Store
	runner  *pipeline.Runner
	logger  *log.Logger
	maxBody int64
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMaxBodyBytes bounds request bodies. Values below one are ignored.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// New creates a server over st. Compile and render requests run through
// runner.
func New(st store.Store, runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{store: st, runner: runner, maxBody: DefaultMaxBodyBytes}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.health)
	r.Get("/version", s.version)
	r.Post("/validate", s.validate)
	r.Post("/compile", s.compileBody)

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", s.list)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.get)
			r.Put("/", s.put)
			r.Delete("/", s.remove)
			r.Get("/dot", s.dot)
			r.Get("/render", s.render)
			r.Post("/compile", s.compileStored)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInternal, err, "serve %s", addr)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "shutdown")
		}
		return nil
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"documents": names})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := graphdoc.Write(doc, w); err != nil {
		s.logger.Error("write document", "error", err)
	}
}

// put stores the body. Documents with structural issues are rejected with
// the issue list.
func (s *Server) put(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if issues := doc.Validate(); len(issues) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, validation{Valid: false, Issues: issues})
		return
	}
	if err := s.store.Put(r.Context(), chi.URLParam(r, "name"), doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) dot(w http.ResponseWriter, r *http.Request) {
	s.renderStored(w, r, pipeline.RenderOptions{
		Format:    pipeline.FormatDOT,
		Detailed:  queryBool(r, "detailed"),
		Direction: r.URL.Query().Get("direction"),
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := pipeline.RenderOptions{
		Format:    q.Get("format"),
		Detailed:  queryBool(r, "detailed"),
		Direction: q.Get("direction"),
	}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid scale %q", v))
			return
		}
		opts.Scale = scale
	}
	s.renderStored(w, r, opts)
}

func (s *Server) renderStored(w http.ResponseWriter, r *http.Request, opts pipeline.RenderOptions) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, hit, err := s.runner.Render(r.Context(), doc, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[opts.Format])
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

var contentTypes = map[string]string{
	pipeline.FormatDOT: "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG: "image/svg+xml",
	pipeline.FormatPNG: "image/png",
	pipeline.FormatPDF: "application/pdf",
}

type validation struct {
	Valid  bool             `json:"valid"`
	Issues []graphdoc.Issue `json:"issues"`
	Error  string           `json:"error,omitempty"`
}

// validate decodes the body and reports structural issues. A body that does
// not decode is reported as invalid rather than as a request error.
func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readDocument(w, r)
	if errors.Is(err, errors.ErrCodeDocumentParse) {
		writeJSON(w, http.StatusOK, validation{Valid: false, Issues: []graphdoc.Issue{}, Error: errors.UserMessage(err)})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	issues := doc.Validate()
	if issues == nil {
		issues = []graphdoc.Issue{}
	}
	writeJSON(w, http.StatusOK, validation{Valid: len(issues) == 0, Issues: issues})
}

// compileResponse is the body of the compile endpoints. Document is the
// compiled graph exported again.
type compileResponse struct {
	Report   interchange.ReportRecord `json:"report"`
	Document *graphdoc.Document       `json:"document"`
}

// compileBody compiles the request body with options from the query string.
func (s *Server) compileBody(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.compile(w, r, doc, compileOptions(r))
}

// compileStored compiles a stored document. Options come from an optional
// JSON body, then the query string.
func (s *Server) compileStored(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := compileOptions(r)
	if r.ContentLength != 0 && r.Body != nil {
		body := http.MaxBytesReader(w, r.Body, s.maxBody)
		if err := json.NewDecoder(body).Decode(&opts); err != nil && err != io.EOF {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode options"))
			return
		}
	}
	s.compile(w, r, doc, opts)
}

func (s *Server) compile(w http.ResponseWriter, r *http.Request, doc *graphdoc.Document, opts pipeline.Options) {
	out, res, err := s.runner.RoundTrip(r.Context(), doc, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, compileResponse{Report: res.Report.Record(), Document: out})
}

func compileOptions(r *http.Request) pipeline.Options {
	return pipeline.Options{
		Mode:       r.URL.Query().Get("mode"),
		Monopack:   queryBool(r, "monopack"),
		Persistent: queryBool(r, "persistent"),
		Arrange:    queryBool(r, "arrange"),
		Prepare:    queryBool(r, "prepare"),
		Casts:      queryBool(r, "casts"),
	}
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (*graphdoc.Document, error) {
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	defer body.Close()
	return graphdoc.Read(body)
}

func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps error codes to HTTP statuses.
func statusOf(err error) int {
	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidName, errors.ErrCodeInvalidPath, errors.ErrCodeDocumentParse:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	if stderrors.Is(err, context.Canceled) {
		return 499 // client closed request
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= 500 {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, map[string]string{"error": errors.UserMessage(err), "code": string(code)})
}
