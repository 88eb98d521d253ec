package models

import "time"

// Task is a unit of work that events record time against.
type Task struct {
	ID          int64     `json:"id" readOnly:"true"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at" readOnly:"true"`
}

// CreateTaskRequest is the payload accepted by POST /task.
type CreateTaskRequest struct {
	Task string `json:"task" binding:"required"`
}

type CreateTaskResponse struct {
	ID      int64  `json:"id"`
	Task    string `json:"task"`
	Message string `json:"message"`
}

type GetTasksResponse struct {
	Tasks []Task `json:"tasks"`
	Count int    `json:"count"`
}
