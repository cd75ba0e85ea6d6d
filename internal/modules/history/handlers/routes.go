package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers history routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/history", func(r chi.Router) {
		r.Get("/draws", h.HandleGetDraws) // Most recent draws
		r.Get("/check", h.HandleCheck)    // Exact 6-of-6 lookup
		r.Post("/reload", h.HandleReload) // Re-read dataset sources
	})
}
