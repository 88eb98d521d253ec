package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"timetracker/core"
	"timetracker/logger"
	"timetracker/models"

	"github.com/go-chi/chi/v5"
)

// EventHandler serves the event lifecycle endpoints.
type EventHandler struct {
	svc *core.EventService
}

func NewEventHandler(svc *core.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// StartEvent handles POST /events/start.
// @Summary Start an event
// @Tags Events
// @Accept json
// @Produce json
// @Param event body models.StartEventRequest true "Task and tag ids"
// @Success 200 {object} models.StartEventResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /events/start [post]
func (h *EventHandler) StartEvent(w http.ResponseWriter, r *http.Request) {
	var payload models.StartEventRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Error("StartEventHandler: Error decoding request body: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	id, err := h.svc.StartEvent(r.Context(), payload.TaskID, payload.TagIDs)
	if err != nil {
		writeServiceError(w, "StartEventHandler", err)
		return
	}
	writeJSON(w, http.StatusOK, models.StartEventResponse{ID: id, Message: "Event started successfully"})
}

// StopEvent handles POST /events/stop/{eventID}.
// @Summary Stop a running event
// @Tags Events
// @Produce json
// @Param eventID path int true "Event ID"
// @Success 200 {object} models.StopEventResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /events/stop/{eventID} [post]
func (h *EventHandler) StopEvent(w http.ResponseWriter, r *http.Request) {
	eventIDStr := chi.URLParam(r, "eventID")
	eventID, err := strconv.ParseInt(eventIDStr, 10, 64)
	if err != nil {
		logger.Error("StopEventHandler: Invalid event ID format '%s': %v", eventIDStr, err)
		writeError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	stopped, err := h.svc.StopEvent(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, "StopEventHandler", err)
		return
	}
	writeJSON(w, http.StatusOK, models.StopEventResponse{
		ID:              stopped.ID,
		Message:         "Event stopped successfully",
		DurationSeconds: stopped.DurationSeconds,
	})
}

// ListEvents handles GET /events, returning only running events.
// @Summary List running events
// @Tags Events
// @Produce json
// @Success 200 {object} models.GetEventsResponse
// @Router /events [get]
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListRunningEvents(r.Context())
	if err != nil {
		writeServiceError(w, "ListEventsHandler", err)
		return
	}
	if events == nil {
		events = []models.HydratedEvent{} // Return empty array instead of null
	}
	writeJSON(w, http.StatusOK, models.GetEventsResponse{Events: events, Count: len(events)})
	logger.Debug("ListEventsHandler: Successfully served %d events.", len(events))
}
