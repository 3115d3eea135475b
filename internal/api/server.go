package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/mdrender/internal/config"
	"github.com/dgallion1/mdrender/internal/jobs"
	"github.com/dgallion1/mdrender/internal/markdown"
	"github.com/dgallion1/mdrender/internal/stats"
)

// CSSWriter writes the stylesheet for highlighted code.
type CSSWriter interface {
	WriteCSS(w io.Writer) error
}

// Server is the HTTP API server for mdrender.
type Server struct {
	router       chi.Router
	renderer     *markdown.Renderer
	orchestrator *jobs.Orchestrator
	stats        *stats.Render
	css          CSSWriter
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. css may be nil.
func NewServer(renderer *markdown.Renderer, orch *jobs.Orchestrator, st *stats.Render, css CSSWriter, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		renderer:     renderer,
		orchestrator: orch,
		stats:        st,
		css:          css,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Get("/api/highlight.css", s.handleHighlightCSS)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/render", s.handleRender)
		r.Post("/api/render/tokens", s.handleTokens)
		r.Post("/api/render/jobs", s.handleSubmitJob)
		r.Post("/api/render/jobs/batch", s.handleSubmitBatch)
		r.Get("/api/render/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/stats/render", s.handleRenderStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
