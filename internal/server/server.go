// Package server exposes the diagram pipeline over HTTP.
//
// All routes live under /drawview:
//
//	GET  /drawview/hello   liveness greeting
//	GET  /drawview/version build information
//	POST /drawview/decode  body: document   → graph-model XML
//	POST /drawview/parse   body: document   → JSON model summary
//	POST /drawview/render  body: document   → SVG
//	POST /drawview/export  body: document   → PNG (?dpi=&background=&color=&supersample=)
//
// Failures are JSON objects {"code": ..., "message": ...}. Documents that
// cannot be decoded or parsed, and invalid parameters, answer 400; diagrams
// that cannot be rasterized answer 422; anything else 500.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/drawview/pkg/buildinfo"
	"github.com/matzehuels/drawview/pkg/codec"
	errs "github.com/matzehuels/drawview/pkg/errors"
	pkgio "github.com/matzehuels/drawview/pkg/io"
	"github.com/matzehuels/drawview/pkg/observability"
	"github.com/matzehuels/drawview/pkg/pipeline"
	"github.com/matzehuels/drawview/pkg/settings"
)

// Prefix is the path every route is mounted under.
const Prefix = "/drawview"

// HelloMessage is returned by GET /drawview/hello.
const HelloMessage = "Hello, world! This is the '/drawview/hello' endpoint. Try visiting me in your browser!"

// DefaultMaxPixels bounds the PNG size of one /export request. It is well
// below raster.MaxPixels since requests render concurrently.
const DefaultMaxPixels = 16_000_000

// Option configures a Server.
type Option func(*Server)

// WithMaxPixels sets the PNG pixel budget of one request. Zero or less keeps
// DefaultMaxPixels.
func WithMaxPixels(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxPixels = n
		}
	}
}

// Server is the HTTP host. It is safe for concurrent use.
type Server struct {
	runner    *pipeline.Runner
	logger    *log.Logger
	router    *chi.Mux
	maxPixels int

	mu     sync.RWMutex
	server *http.Server
}

// New creates a server that runs requests through runner.
func New(runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{runner: runner, logger: logger, router: chi.NewRouter(), maxPixels: DefaultMaxPixels}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.observe)

	s.router.Route(Prefix, func(r chi.Router) {
		r.Get("/hello", s.handleHello)
		r.Get("/version", s.handleVersion)
		r.Post("/decode", s.handleDecode)
		r.Post("/parse", s.handleParse)
		r.Post("/render", s.handleRender)
		r.Post("/export", s.handleExport)
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr until the server is shut down.
func (s *Server) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until the server is shut down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	server := s.server
	s.mu.Unlock()

	s.logger.Info("listening", "addr", ln.Addr().String())
	if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	server := s.server
	s.mu.RUnlock()

	if server == nil {
		return nil
	}
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// observe reports every request to the server hooks and the debug log.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set("Server", buildinfo.UserAgent())
		observability.Server().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.Server().OnResponse(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", d)
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHello(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"data": HelloMessage})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Current())
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	raw, err := pkgio.ReadFrom(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	xmlText, hit, err := s.runner.DecodeWithCacheInfo(r.Context(), raw, pipeline.Options{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Cache", cacheStatus(hit))
	writeBody(w, "application/xml; charset=utf-8", []byte(xmlText))
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	raw, err := pkgio.ReadFrom(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.runner.Load(r.Context(), raw, pipeline.Options{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// Compressed or non-XML bodies have no wrapper to list pages from.
	pages, err := codec.Pages(string(raw))
	if err != nil {
		s.logger.Debug("page listing unavailable", "err", err)
	}
	w.Header().Set("X-Cache", cacheStatus(result.CacheInfo.DecodeHit))
	writeJSON(w, http.StatusOK, pkgio.NewSummary(result.Model, pages))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	result, ok := s.execute(w, r, pipeline.FormatSVG)
	if !ok {
		return
	}
	w.Header().Set("X-Cache", cacheStatus(result.CacheInfo.SVGHit))
	writeBody(w, "image/svg+xml", result.Artifacts[pipeline.FormatSVG])
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	result, ok := s.execute(w, r, pipeline.FormatPNG)
	if !ok {
		return
	}
	w.Header().Set("X-Image-Width", strconv.Itoa(result.Frame.Width))
	w.Header().Set("X-Image-Height", strconv.Itoa(result.Frame.Height))
	writeBody(w, "image/png", result.Artifacts[pipeline.FormatPNG])
}

// execute runs the full pipeline for one format with settings taken from
// the query string. On failure the error response has been written.
func (s *Server) execute(w http.ResponseWriter, r *http.Request, format string) (*pipeline.Result, bool) {
	opts, err := s.exportOptions(r, format)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	raw, err := pkgio.ReadFrom(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	result, err := s.runner.Execute(r.Context(), raw, opts)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return result, true
}

// exportOptions overlays the dpi, background, color and supersample query
// parameters on the runner's settings.
func (s *Server) exportOptions(r *http.Request, format string) (pipeline.Options, error) {
	q := r.URL.Query()
	st := s.runner.Settings.Load()

	if v := q.Get("dpi"); v != "" {
		dpi, err := strconv.Atoi(v)
		if err != nil {
			return pipeline.Options{}, errs.New(errs.ErrCodeInvalidInput, "dpi must be an integer, got %q", v)
		}
		st.DPI = dpi
	}
	if v := q.Get("color"); v != "" {
		c, err := settings.ParseColor(v)
		if err != nil {
			return pipeline.Options{}, err
		}
		st.CustomColor = c
		st.Background = settings.BackgroundCustom
	}
	if v := q.Get("background"); v != "" {
		bg, err := settings.ParseBackground(v)
		if err != nil {
			return pipeline.Options{}, err
		}
		st.Background = bg
	}

	opts := pipeline.Options{Formats: []string{format}, Export: &st, Logger: s.logger, MaxPixels: s.maxPixels}
	if v := q.Get("supersample"); v != "" {
		ss, err := strconv.Atoi(v)
		if err != nil {
			return pipeline.Options{}, errs.New(errs.ErrCodeInvalidInput, "supersample must be an integer, got %q", v)
		}
		opts.Supersample = ss
	}
	return opts, opts.ValidateAndSetDefaults()
}

// =============================================================================
// Responses
// =============================================================================

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

// StatusFor maps a pipeline error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errs.IsLoadError(err):
		return http.StatusBadRequest
	case errs.IsExportError(err):
		return http.StatusUnprocessableEntity
	}
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "route", r.URL.Path, "err", err)
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: errs.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeBody(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
