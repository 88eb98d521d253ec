package models

import "time"

// Tag is a user-defined label that can be attached to events.
type Tag struct {
	ID        int64     `json:"id" readOnly:"true"`
	Name      string    `json:"name" binding:"required"`
	CreatedAt time.Time `json:"created_at" readOnly:"true"`
}

// CreateTagRequest is the payload accepted by POST /tag.
type CreateTagRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateTagResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

type GetTagsResponse struct {
	Tags  []Tag `json:"tags"`
	Count int   `json:"count"`
}
