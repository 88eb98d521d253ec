package models

import "time"

// Event is a time interval recorded against one task.
// StoppedAt is nil while the event is running.
type Event struct {
	ID        int64      `json:"id" readOnly:"true"`
	TaskID    int64      `json:"task_id"`
	CreatedAt time.Time  `json:"created_at" readOnly:"true"`
	StoppedAt *time.Time `json:"stopped_at,omitempty" swaggertype:"string" format:"date-time"`
}

// Running reports whether the event has not been stopped yet.
func (e Event) Running() bool {
	return e.StoppedAt == nil
}

// HydratedEvent is an Event with its task and tags attached for display.
// Task is nil when the referenced task no longer exists.
type HydratedEvent struct {
	Event
	Task *Task `json:"task,omitempty"`
	Tags []Tag `json:"tags,omitempty"`
}

// StoppedEvent is the outcome of a successful stop.
type StoppedEvent struct {
	ID              int64
	CreatedAt       time.Time
	StoppedAt       time.Time
	DurationSeconds int64
}

// StartEventRequest is the payload accepted by POST /events/start.
type StartEventRequest struct {
	TaskID int64   `json:"task_id" binding:"required"`
	TagIDs []int64 `json:"tag_ids"`
}

type StartEventResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

type StopEventResponse struct {
	ID              int64  `json:"id"`
	Message         string `json:"message"`
	DurationSeconds int64  `json:"duration_seconds"`
}

type GetEventsResponse struct {
	Events []HydratedEvent `json:"events"`
	Count  int             `json:"count"`
}
