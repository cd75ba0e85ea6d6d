package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers statistics routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/stats", func(r chi.Router) {
		r.Get("/frequency", h.HandleGetFrequency) // Hot/cold table and chart points
		r.Get("/quadrants", h.HandleGetQuadrants) // Historical quadrant totals
	})
}
