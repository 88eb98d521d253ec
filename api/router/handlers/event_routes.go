package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterEventRoutes sets up the routes for the event lifecycle.
func RegisterEventRoutes(r chi.Router, h *EventHandler) {
	r.Get("/events", h.ListEvents)
	r.Post("/events/start", h.StartEvent)
	r.Post("/events/stop/{eventID}", h.StopEvent)
}
