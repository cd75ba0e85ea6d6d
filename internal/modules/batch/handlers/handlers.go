// Package handlers provides HTTP handlers for batch generation and the batch audit trail.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/megasena/internal/domain"
	"github.com/aristath/megasena/internal/modules/batch"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	defaultBatchesLimit = 20
	maxBatchesLimit     = 100
	maxRequestBytes     = 1 << 16
)

// Generator produces batches
type Generator interface {
	GenerateBatch(ctx context.Context, quantity int, opts batch.Options) (*domain.GenerationBatch, error)
	Config() batch.Config
}

// AuditReader reads recorded batches
type AuditReader interface {
	GetBatch(ctx context.Context, id string) (*domain.GenerationBatch, error)
	ListBatches(ctx context.Context, limit int) ([]batch.Record, error)
}

// Handler handles game generation HTTP requests
type Handler struct {
	generator Generator
	audit     AuditReader
	log       zerolog.Logger
}

// NewHandler creates a new games handler
func NewHandler(generator Generator, audit AuditReader, log zerolog.Logger) *Handler {
	return &Handler{
		generator: generator,
		audit:     audit,
		log:       log.With().Str("handler", "games").Logger(),
	}
}

// GenerateRequest is the body of POST /api/games/generate
type GenerateRequest struct {
	// Quantity defaults to the configured default quantity when absent
	Quantity *int           `json:"quantity"`
	Options  RequestOptions `json:"options"`
}

// RequestOptions are batch.Options with a human readable timeout ("2s", "500ms")
type RequestOptions struct {
	batch.Options
	Timeout string `json:"timeout,omitempty"`
}

// HandleGenerate handles POST /api/games/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	quantity := h.generator.Config().DefaultQuantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	opts := req.Options.Options
	if req.Options.Timeout != "" {
		timeout, err := time.ParseDuration(req.Options.Timeout)
		if err != nil {
			http.Error(w, "Invalid timeout: "+err.Error(), http.StatusBadRequest)
			return
		}
		opts.Timeout = timeout
	}

	result, err := h.generator.GenerateBatch(r.Context(), quantity, opts)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidOptions):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, domain.ErrStoreUnavailable):
			http.Error(w, "Historical data unavailable, try again later", http.StatusServiceUnavailable)
		default:
			h.log.Error().Err(err).Int("quantity", quantity).Msg("Batch generation failed")
			http.Error(w, "Failed to generate games, try again later", http.StatusInternalServerError)
		}
		return
	}

	metadata := map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
		"partial":   result.Partial(),
	}
	if err := result.Err(); err != nil {
		metadata["notice"] = err.Error()
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":     result,
		"metadata": metadata,
	})
}

// HandleListBatches handles GET /api/games/batches
func (h *Handler) HandleListBatches(w http.ResponseWriter, r *http.Request) {
	limit := defaultBatchesLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(parsed, maxBatchesLimit)
	}

	records, err := h.audit.ListBatches(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list batches")
		http.Error(w, "Failed to list batches", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"batches": records,
			"count":   len(records),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetBatch handles GET /api/games/batches/{id}
func (h *Handler) HandleGetBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.audit.GetBatch(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Batch not found", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("batch_id", id).Msg("Failed to get batch")
		http.Error(w, "Failed to get batch", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
