// Package app wires the renderer, job pool and HTTP server from a Config.
package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgallion1/mdrender/internal/api"
	"github.com/dgallion1/mdrender/internal/config"
	"github.com/dgallion1/mdrender/internal/highlight"
	"github.com/dgallion1/mdrender/internal/jobs"
	"github.com/dgallion1/mdrender/internal/markdown"
	"github.com/dgallion1/mdrender/internal/stats"
)

type App struct {
	Config       config.Config
	Stats        *stats.Render
	Renderer     *markdown.Renderer
	Orchestrator *jobs.Orchestrator
	Server       *api.Server

	log *slog.Logger
}

// NewRenderer builds a Renderer for cfg. st may be nil.
func NewRenderer(cfg config.Config, st *stats.Render, log *slog.Logger) *markdown.Renderer {
	return markdown.New(log, markdown.Config{
		AllowHTML:      cfg.AllowHTML,
		HighlightStyle: cfg.HighlightStyle,
	}, st)
}

// New builds every component. Call Start to run the job workers.
func New(cfg config.Config, log *slog.Logger) *App {
	st := stats.NewRender(cfg.StatsWindow)
	renderer := NewRenderer(cfg, st, log)
	orch := jobs.NewOrchestrator(cfg, renderer, log)
	css := highlight.NewChroma(cfg.HighlightStyle, highlight.DefaultLanguages)

	return &App{
		Config:       cfg,
		Stats:        st,
		Renderer:     renderer,
		Orchestrator: orch,
		Server:       api.NewServer(renderer, orch, st, css, log, cfg),
		log:          log,
	}
}

func (a *App) Start(ctx context.Context) {
	a.Orchestrator.Start(ctx)
}

// HTTPServer returns an http.Server serving the API on the configured port.
func (a *App) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + a.Config.Port,
		Handler:      a.Server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Shutdown drains the workers, then the HTTP server.
func (a *App) Shutdown(ctx context.Context, srv *http.Server) error {
	a.Orchestrator.Stop()
	return srv.Shutdown(ctx)
}

// ListenAndServe runs the API until ctx is cancelled.
func (a *App) ListenAndServe(ctx context.Context) error {
	srv := a.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting mdrender", "port", a.Config.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		a.Orchestrator.Stop()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		a.log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.Shutdown(shutdownCtx, srv)
	}
}
