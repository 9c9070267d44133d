package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// Worker processes a single render job.
type Worker struct {
	processor *Processor
	log       *slog.Logger
	timeout   time.Duration
}

func NewWorker(processor *Processor, log *slog.Logger, timeout time.Duration) *Worker {
	return &Worker{
		processor: processor,
		log:       log,
		timeout:   timeout,
	}
}

// Process runs the render pipeline for a job and records its outcome.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	job.SetStatus(StatusProcessing, "rendering")
	start := time.Now()
	res, err := w.processor.Process(ctx, Request{
		Filename: job.Filename,
		Data:     job.FileData(),
		Format:   job.Format,
		Locale:   job.Locale,
	})
	if err != nil {
		log.Error("render failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "rendering")
		RecordJob(StatusFailed)
		return
	}

	job.SetResult(res)
	job.SetStatus(StatusCompleted, "done")
	RecordJob(StatusCompleted)
	log.Info("job completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"unresolved", len(res.Unresolved))
}
