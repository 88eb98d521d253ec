package handlers

import (
	"encoding/json"
	"net/http"
	"timetracker/core"
	"timetracker/logger"
	"timetracker/models"
)

// TagHandler serves tag creation and listing.
type TagHandler struct {
	svc *core.EventService
}

func NewTagHandler(svc *core.EventService) *TagHandler {
	return &TagHandler{svc: svc}
}

// CreateTag handles POST /tag.
func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var payload models.CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Error("CreateTagHandler: Error decoding request body: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	tag, err := h.svc.CreateTag(r.Context(), payload.Name)
	if err != nil {
		writeServiceError(w, "CreateTagHandler", err)
		return
	}
	writeJSON(w, http.StatusOK, models.CreateTagResponse{ID: tag.ID, Name: tag.Name, Message: "Tag created successfully"})
	logger.Info("CreateTagHandler: Created tag %d '%s'.", tag.ID, tag.Name)
}

// ListTags handles GET /tags.
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.ListTags(r.Context())
	if err != nil {
		writeServiceError(w, "ListTagsHandler", err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	writeJSON(w, http.StatusOK, models.GetTagsResponse{Tags: tags, Count: len(tags)})
}
