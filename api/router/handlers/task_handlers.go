package handlers

import (
	"encoding/json"
	"net/http"
	"timetracker/core"
	"timetracker/logger"
	"timetracker/models"
)

type TaskHandler struct {
	svc *core.EventService
}

func NewTaskHandler(svc *core.EventService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// CreateTask handles POST /task.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var payload models.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Error("CreateTaskHandler: Error decoding request body: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	task, err := h.svc.CreateTask(r.Context(), payload.Task)
	if err != nil {
		writeServiceError(w, "CreateTaskHandler", err)
		return
	}
	writeJSON(w, http.StatusOK, models.CreateTaskResponse{ID: task.ID, Task: task.Description, Message: "Task created successfully"})
}

// ListTasks handles GET /tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.ListTasks(r.Context())
	if err != nil {
		writeServiceError(w, "ListTasksHandler", err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, models.GetTasksResponse{Tasks: tasks, Count: len(tasks)})
}
