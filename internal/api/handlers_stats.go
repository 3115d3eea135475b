package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleRenderStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "render stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"window":      s.cfg.StatsWindow.String(),
		"queue_depth": s.orchestrator.QueueDepth(),
		"modes":       s.stats.Snapshot(),
	})
}

func (s *Server) handleHighlightCSS(w http.ResponseWriter, r *http.Request) {
	if s.css == nil {
		jsonError(w, "highlight stylesheet unavailable", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := s.css.WriteCSS(w); err != nil {
		s.log.Error("write highlight css", "error", err)
	}
}
