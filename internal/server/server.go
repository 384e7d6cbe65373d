// Package server exposes the modelviz pipeline over HTTP.
//
// Routes:
//
//	GET /healthz                     build info
//	GET /v1/entities?module=         entity tables and stats
//	GET /v1/graph?module=&kind=&entry=&format=
//	                                 entity or call graph as json, dot, svg, png or jpg
//	GET /v1/runs?limit=              recorded pipeline runs, newest first
//
// Module paths are relative to the served root directory and may not leave it.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/modelviz/pkg/buildinfo"
	mverrors "github.com/matzehuels/modelviz/pkg/errors"
	"github.com/matzehuels/modelviz/pkg/observability"
	"github.com/matzehuels/modelviz/pkg/pipeline"
)

// DefaultRunsLimit caps /v1/runs when no limit is given.
const DefaultRunsLimit = 50

// Server serves the HTTP API.
type Server struct {
	runner *pipeline.Runner
	root   string
	base   pipeline.Options
	logger *log.Logger
	router chi.Router
}

// New creates a server resolving module paths against root. base supplies
// the filter and call bounds applied to every request.
func New(runner *pipeline.Runner, root string, base pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	s := &Server{runner: runner, root: root, base: base, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/entities", s.handleEntities)
		r.Get("/graph", s.handleGraph)
		r.Get("/runs", s.handleRuns)
	})
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("serving", "addr", addr, "root", s.root)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// instrument reports every request to the registered server hooks.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		hooks.OnResponse(r.Context(), r.Method, route, ww.Status(), time.Since(start))
		s.logger.Debug("request", "method", r.Method, "route", route, "status", ww.Status(), "duration", time.Since(start))
	})
}

// options builds pipeline options for the module named in the query.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	module := r.URL.Query().Get("module")
	if err := mverrors.ValidateModulePath(module); err != nil {
		return pipeline.Options{}, err
	}
	opts := s.base
	opts.Module = filepath.Join(s.root, filepath.FromSlash(module))
	opts.Output = ""
	opts.Logger = s.logger
	return opts, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := DefaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, mverrors.New(mverrors.ErrCodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	runs, err := s.runner.History.List(r.Context(), limit)
	if err != nil {
		writeError(w, mverrors.Wrap(mverrors.ErrCodeInternal, err, "list runs"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	switch mverrors.GetCode(err) {
	case mverrors.ErrCodeInvalidInput, mverrors.ErrCodeInvalidPath, mverrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case mverrors.ErrCodeEntryNotFound:
		return http.StatusNotFound
	case mverrors.ErrCodeMetadataUnavailable:
		return http.StatusUnprocessableEntity
	case mverrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := string(mverrors.GetCode(err))
	if code == "" {
		code = string(mverrors.ErrCodeInternal)
	}
	writeJSON(w, statusFor(err), map[string]errorBody{
		"error": {Code: code, Message: mverrors.UserMessage(err)},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
