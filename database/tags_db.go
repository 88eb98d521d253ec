package database

import (
	"context"
	"fmt"
	"strings"
	"timetracker/logger"
	"timetracker/models"
)

// CreateTag inserts a new tag. Tag names are unique; a duplicate name
// returns an error wrapping ErrConflict.
func (s *Store) CreateTag(ctx context.Context, name string) (models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Tag{}, fmt.Errorf("tag: %w", ErrInvalidName)
	}

	tag := models.Tag{Name: name}
	createdAt := s.nowMicro()
	result, err := s.db.ExecContext(ctx, "INSERT INTO tags (name, created_at) VALUES (?, ?)", name, createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Tag{}, fmt.Errorf("tag '%s': %w", name, ErrConflict)
		}
		logger.Error("CreateTag: Error executing insert for tag '%s': %v", name, err)
		return models.Tag{}, fmt.Errorf("executing insert tag: %w", err)
	}

	tag.ID, err = result.LastInsertId()
	if err != nil {
		return models.Tag{}, fmt.Errorf("getting last insert ID for tag: %w", err)
	}
	tag.CreatedAt = timestamp(createdAt)
	logger.Debug("CreateTag: Created tag %d '%s'", tag.ID, tag.Name)
	return tag, nil
}

// GetAllTags returns every tag, newest first.
func (s *Store) GetAllTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, created_at FROM tags ORDER BY created_at DESC, id DESC")
	if err != nil {
		logger.Error("GetAllTags: Error querying all tags: %v", err)
		return nil, fmt.Errorf("querying all tags: %w", err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		var createdAt int64
		if err := rows.Scan(&tag.ID, &tag.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning tag row: %w", err)
		}
		tag.CreatedAt = timestamp(createdAt)
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
