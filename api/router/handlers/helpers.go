package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"timetracker/core"
	"timetracker/logger"
	"timetracker/models"
)

// writeJSON encodes payload with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("writeJSON: Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Message: message})
}

// statusFor maps a core error kind to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError reports a service failure. Storage failures get a fixed
// message so internal details stay in the log.
func writeServiceError(w http.ResponseWriter, handler string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("%s: %v", handler, err)
		writeError(w, status, "Internal server error")
		return
	}
	logger.Info("%s: %v", handler, err)
	writeError(w, status, err.Error())
}
