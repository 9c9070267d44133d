package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"queue_depth":      s.orchestrator.QueueDepth(),
		"queue_capacity":   s.cfg.MaxQueueSize,
		"jobs":             s.orchestrator.JobCount(),
		"workers":          s.cfg.WorkerCount,
		"locale":           s.cfg.Locale,
		"protected_macros": s.cfg.ProtectedMacros,
	})
}
