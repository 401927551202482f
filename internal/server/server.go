// Package server exposes the editor's admin surface over HTTP: triggering
// builds, listing artifacts, inspecting chapter order, and previewing
// chapters.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/novohool/markedit"
	"github.com/novohool/markedit/internal/markdown"
	"github.com/novohool/markedit/internal/metrics"
)

// Server handles admin requests against one build service.
type Server struct {
	svc      *markedit.Service
	renderer *markdown.Renderer
	logger   *slog.Logger
}

// New creates a Server. A nil logger falls back to slog.Default().
func New(svc *markedit.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		svc:      svc,
		renderer: markdown.NewRenderer(),
		logger:   logger,
	}
}

// Handler returns the routed admin API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/build/{format}", s.handleBuild)
		r.Get("/build", s.handleBuildInfo)
		r.Get("/chapters", s.handleChapters)
		r.Get("/preview/{file}", s.handlePreview)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleBuild triggers a build. "all" runs every format in sequence. An
// overlapping request is rejected with 409 rather than queued.
func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "format")

	if name == "all" {
		results, err := s.svc.BuildAll(r.Context())
		if err != nil {
			s.respondBuildError(w, err)
			return
		}
		s.respondJSON(w, buildStatus(results...), map[string]any{"results": results})
		return
	}

	format, err := markedit.ParseFormat(name)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.svc.Build(r.Context(), format)
	if err != nil {
		s.respondBuildError(w, err)
		return
	}
	s.respondJSON(w, buildStatus(res), res)
}

// buildStatus maps build outcomes to an HTTP status: 200 when everything
// succeeded, 500 when any build failed.
func buildStatus(results ...markedit.BuildResult) int {
	for _, r := range results {
		if !r.Success {
			return http.StatusInternalServerError
		}
	}
	return http.StatusOK
}

func (s *Server) respondBuildError(w http.ResponseWriter, err error) {
	if errors.Is(err, markedit.ErrBuildInProgress) {
		s.respondError(w, http.StatusConflict, err)
		return
	}
	s.respondError(w, http.StatusBadRequest, err)
}

func (s *Server) handleBuildInfo(w http.ResponseWriter, _ *http.Request) {
	artifacts, err := s.svc.BuildInfo()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	if artifacts == nil {
		artifacts = []markedit.Artifact{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"artifacts": artifacts})
}

func (s *Server) handleChapters(w http.ResponseWriter, _ *http.Request) {
	entries, err := s.svc.ChapterOrder()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"chapters": entries})
}

// handlePreview renders one chapter to HTML in-process. Only files in the
// canonical chapter set are served; anything else is 404, which also keeps
// path traversal out.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	conf := s.svc.Config()

	if !conf.HasChapter(file) {
		s.respondError(w, http.StatusNotFound, errors.New("unknown chapter"))
		return
	}

	data, err := os.ReadFile(filepath.Join(conf.ChaptersPath(), file)) // #nosec G304 -- file is validated against the canonical set
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}

	title := file
	for _, ch := range conf.Chapters {
		if ch.File == file {
			title = ch.Title
		}
	}

	html, err := s.renderer.Render(r.Context(), title, string(data))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		s.logger.Error("writing preview response", "file", file, "error", err)
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, err error) {
	s.respondJSON(w, status, map[string]string{"error": err.Error()})
}
