// Package handlers provides HTTP handlers for draw statistics.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/megasena/internal/modules/frequency"
	"github.com/aristath/megasena/internal/modules/history"
	"github.com/aristath/megasena/pkg/formulas"
	"github.com/rs/zerolog"
)

// Handler handles statistics HTTP requests
type Handler struct {
	history  *history.Service
	analyzer *frequency.Analyzer
	log      zerolog.Logger
}

// NewHandler creates a new statistics handler
func NewHandler(historyService *history.Service, analyzer *frequency.Analyzer, log zerolog.Logger) *Handler {
	return &Handler{
		history:  historyService,
		analyzer: analyzer,
		log:      log.With().Str("handler", "stats").Logger(),
	}
}

// HandleGetFrequency handles GET /api/stats/frequency
func (h *Handler) HandleGetFrequency(w http.ResponseWriter, r *http.Request) {
	table, ok := h.table(w)
	if !ok {
		return
	}

	numbers := make([]map[string]interface{}, 0, 60)
	for _, p := range table.Profiles() {
		z, _ := table.ZScore(p.Number)
		numbers = append(numbers, map[string]interface{}{
			"number":     p.Number,
			"count":      p.Count,
			"turnsSince": p.TurnsSince,
			"seen":       p.Seen,
			"hot":        p.Hot,
			"cold":       p.Cold,
			"zScore":     formulas.Round(z, 3),
		})
	}

	windows := table.Windows()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"numbers":    numbers,
			"hot":        table.Hot(),
			"cold":       table.Cold(),
			"points":     table.Points(),
			"uniformity": formulas.Round(table.Uniformity(), 3),
			"hotWindow":  windows.HotWindow,
			"coldWindow": windows.ColdWindow,
		},
		"metadata": h.metadata(table),
	})
}

// HandleGetQuadrants handles GET /api/stats/quadrants
func (h *Handler) HandleGetQuadrants(w http.ResponseWriter, r *http.Request) {
	table, ok := h.table(w)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"totals": table.QuadrantTotals(),
			"points": table.QuadrantPoints(),
		},
		"metadata": h.metadata(table),
	})
}

func (h *Handler) table(w http.ResponseWriter) (*frequency.Table, bool) {
	store, err := h.history.Current()
	if err != nil {
		h.log.Warn().Err(err).Msg("Statistics requested without a loaded store")
		http.Error(w, "Historical data unavailable, try again later", http.StatusServiceUnavailable)
		return nil, false
	}
	return h.analyzer.Analyze(store), true
}

func (h *Handler) metadata(table *frequency.Table) map[string]interface{} {
	return map[string]interface{}{
		"timestamp":     time.Now().Format(time.RFC3339),
		"store_version": table.Version(),
		"draws":         table.Draws(),
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
