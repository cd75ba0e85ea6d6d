package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers game generation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/games", func(r chi.Router) {
		r.Post("/generate", h.HandleGenerate)    // Generate a scored batch
		r.Get("/batches", h.HandleListBatches)   // Audit trail, newest first
		r.Get("/batches/{id}", h.HandleGetBatch) // One recorded batch with its games
	})
}
