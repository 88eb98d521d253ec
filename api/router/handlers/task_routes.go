package handlers

import (
	"github.com/go-chi/chi/v5"
)

func RegisterTaskRoutes(r chi.Router, h *TaskHandler) {
	r.Post("/task", h.CreateTask)
	r.Get("/tasks", h.ListTasks)
}
