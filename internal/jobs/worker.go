package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/mdrender/internal/markdown"
)

// Worker renders jobs taken from the queue.
type Worker struct {
	renderer Renderer
	log      *slog.Logger
}

func NewWorker(r Renderer, log *slog.Logger) *Worker {
	return &Worker{renderer: r, log: log}
}

// Process renders one job and records the outcome on it.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "mode", job.Mode)

	job.SetStatus(StatusRendering, "rendering")
	start := time.Now()

	res, err := w.render(ctx, job)
	if err != nil {
		log.Error("render failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "rendering")
		return
	}

	elapsed := time.Since(start)
	job.Complete(res, elapsed)
	log.Info("render complete", "bytes", job.Bytes, "duration", elapsed)
}

// render shields the worker from a panicking renderer.
func (w *Worker) render(ctx context.Context, job *Job) (res markdown.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panicked: %v", r)
		}
	}()
	return w.renderer.Do(ctx, job.Source(), job.Options())
}
