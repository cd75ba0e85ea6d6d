package server

import (
	"encoding/json"
	"net/http"
)

// handleHealth reports liveness plus whether the draw history is loaded.
// The process is healthy either way; generation answers 503 until a dataset
// has been loaded, so the dataset block tells operators why.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dataset := map[string]interface{}{
		"available": false,
	}
	if store, err := s.container.HistoryService.Current(); err == nil {
		dataset["available"] = true
		dataset["draws"] = store.Len()
		dataset["version"] = store.Version()
		dataset["loadedAt"] = s.container.HistoryService.LoadedAt()
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "megasena",
		"dataset": dataset,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Str("handler", "server").Msg("Failed to encode response")
	}
}
