package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/dgallion1/numref/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

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

// handleJobResult returns the result of a completed job. With raw=true the
// rendered document is written as is.
func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusFailed:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"job_id": snap.ID,
			"status": snap.Status,
			"errors": snap.Errors,
		})
		return
	case pipeline.StatusCompleted:
	default:
		jsonError(w, "job is "+string(snap.Status), http.StatusConflict)
		return
	}

	res := job.Result()
	if r.URL.Query().Get("raw") == "true" {
		w.Header().Set("Content-Type", res.Format.ContentType())
		io.WriteString(w, res.Output)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
