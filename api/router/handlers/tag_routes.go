package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterTagRoutes sets up the routes for tag management.
func RegisterTagRoutes(r chi.Router, h *TagHandler) {
	r.Post("/tag", h.CreateTag)
	r.Get("/tags", h.ListTags)
}
