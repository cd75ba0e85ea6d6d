// Package handlers provides HTTP handlers for the historical draw dataset.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/megasena/internal/domain"
	"github.com/aristath/megasena/internal/modules/history"
	"github.com/rs/zerolog"
)

const (
	defaultDrawsLimit = 20
	maxDrawsLimit     = 500
)

// Handler handles history HTTP requests
type Handler struct {
	service *history.Service
	log     zerolog.Logger
}

// NewHandler creates a new history handler
func NewHandler(service *history.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "history").Logger(),
	}
}

// HandleGetDraws handles GET /api/history/draws
func (h *Handler) HandleGetDraws(w http.ResponseWriter, r *http.Request) {
	limit := defaultDrawsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(parsed, maxDrawsLimit)
	}

	store, ok := h.currentStore(w)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"draws": store.RecentDraws(limit),
			"total": store.Len(),
		},
		"metadata": h.metadata(store),
	})
}

// HandleCheck handles GET /api/history/check?numbers=1,2,3,4,5,6
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	combination, err := domain.ParseCombination(r.URL.Query().Get("numbers"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	store, ok := h.currentStore(w)
	if !ok {
		return
	}

	matches := store.FindByCombination(combination)
	contests := make([]int, 0, len(matches))
	for _, d := range matches {
		contests = append(contests, d.Contest)
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"numbers":  combination,
			"drawn":    len(matches) > 0,
			"contests": contests,
		},
		"metadata": h.metadata(store),
	})
}

// HandleReload handles POST /api/history/reload
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reload(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Dataset reload failed")
		if _, currentErr := h.service.Current(); currentErr != nil {
			http.Error(w, "Historical data unavailable, try again later", http.StatusServiceUnavailable)
			return
		}
		// Partial reload: the store is still served, report the problem
		store, _ := h.service.Current()
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": map[string]interface{}{
				"reloaded": false,
				"draws":    store.Len(),
				"error":    err.Error(),
			},
			"metadata": h.metadata(store),
		})
		return
	}

	store, ok := h.currentStore(w)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"reloaded": true,
			"draws":    store.Len(),
		},
		"metadata": h.metadata(store),
	})
}

func (h *Handler) currentStore(w http.ResponseWriter) (*history.Store, bool) {
	store, err := h.service.Current()
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			http.Error(w, "Historical data unavailable, try again later", http.StatusServiceUnavailable)
		} else {
			h.log.Error().Err(err).Msg("Failed to get draw store")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return nil, false
	}
	return store, true
}

func (h *Handler) metadata(store *history.Store) map[string]interface{} {
	return map[string]interface{}{
		"timestamp":     time.Now().Format(time.RFC3339),
		"store_version": store.Version(),
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
