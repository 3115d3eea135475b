package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/mdrender/internal/jobs"
	"github.com/dgallion1/mdrender/internal/markdown"
	"github.com/dgallion1/mdrender/internal/rendertree"
)

// renderRequest is the JSON body of render endpoints. TOC is a pointer so
// an absent field falls back to the configured default.
type renderRequest struct {
	Markdown string `json:"markdown"`
	TOC      *bool  `json:"toc,omitempty"`
	Mode     string `json:"mode,omitempty"`
}

const maxBatchDocuments = 50

var errTooLarge = errors.New("source too large")

// readRender decodes a render request. JSON bodies carry the source in
// "markdown"; text/markdown and text/plain bodies are the source itself,
// with toc and mode taken from the query string.
func (s *Server) readRender(w http.ResponseWriter, r *http.Request) (string, markdown.Options, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxSourceBytes+64*1024) // extra 64KB for JSON overhead

	var req renderRequest
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "text/markdown", "text/plain":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return "", markdown.Options{}, fmt.Errorf("read body: %w", err)
		}
		req.Markdown = string(body)
		req.Mode = r.URL.Query().Get("mode")
		if v := r.URL.Query().Get("toc"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return "", markdown.Options{}, fmt.Errorf("invalid toc %q", v)
			}
			req.TOC = &b
		}
	default:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", markdown.Options{}, fmt.Errorf("invalid JSON body: %w", err)
		}
	}
	return s.checkRender(req)
}

func (s *Server) checkRender(req renderRequest) (string, markdown.Options, error) {
	if int64(len(req.Markdown)) > s.cfg.MaxSourceBytes {
		return "", markdown.Options{}, fmt.Errorf("%w: exceeds %d bytes", errTooLarge, s.cfg.MaxSourceBytes)
	}
	mode, err := markdown.ParseMode(req.Mode)
	if err != nil {
		return "", markdown.Options{}, err
	}
	opts := markdown.Options{TOC: s.cfg.TOCDefault, Mode: mode}
	if req.TOC != nil {
		opts.TOC = *req.TOC
	}
	return req.Markdown, opts, nil
}

func requestErrorStatus(err error) int {
	var maxErr *http.MaxBytesError
	if errors.Is(err, errTooLarge) || errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	src, opts, err := s.readRender(w, r)
	if err != nil {
		jsonError(w, err.Error(), requestErrorStatus(err))
		return
	}

	res, err := s.renderer.Do(r.Context(), src, opts)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if res.Content == nil {
		res.Content = []rendertree.Child{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"mode":    opts.Mode,
		"content": res.Content,
		"toc":     res.TOC,
	})
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	src, _, err := s.readRender(w, r)
	if err != nil {
		jsonError(w, err.Error(), requestErrorStatus(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"tokens": s.renderer.Tokens(src)})
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	src, opts, err := s.readRender(w, r)
	if err != nil {
		jsonError(w, err.Error(), requestErrorStatus(err))
		return
	}

	job := jobs.NewJob(src, opts)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   jobs.StatusQueued,
		"poll_url": fmt.Sprintf("/api/render/jobs/%s", job.ID),
	})
}

func (s *Server) handleSubmitBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxSourceBytes*10+1024*1024)

	var body struct {
		Documents []renderRequest `json:"documents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), requestErrorStatus(err))
		return
	}
	if len(body.Documents) == 0 {
		jsonError(w, "at least one document is required", http.StatusBadRequest)
		return
	}
	if len(body.Documents) > maxBatchDocuments {
		jsonError(w, fmt.Sprintf("at most %d documents per batch", maxBatchDocuments), http.StatusBadRequest)
		return
	}

	results := make([]map[string]any, 0, len(body.Documents))
	for i, doc := range body.Documents {
		src, opts, err := s.checkRender(doc)
		if err != nil {
			results = append(results, map[string]any{"index": i, "error": err.Error()})
			continue
		}
		job := jobs.NewJob(src, opts)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{"index": i, "error": err.Error()})
			continue
		}
		results = append(results, map[string]any{
			"index":    i,
			"job_id":   job.ID,
			"status":   jobs.StatusQueued,
			"poll_url": fmt.Sprintf("/api/render/jobs/%s", job.ID),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"jobs": results})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
