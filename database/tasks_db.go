package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"timetracker/logger"
	"timetracker/models"
)

// CreateTask inserts a new task.
func (s *Store) CreateTask(ctx context.Context, description string) (models.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return models.Task{}, fmt.Errorf("task: %w", ErrInvalidName)
	}

	createdAt := s.nowMicro()
	result, err := s.db.ExecContext(ctx, "INSERT INTO tasks (description, created_at) VALUES (?, ?)", description, createdAt)
	if err != nil {
		logger.Error("CreateTask: Error executing insert for task '%s': %v", description, err)
		return models.Task{}, fmt.Errorf("executing insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("getting last insert ID for task: %w", err)
	}
	logger.Debug("CreateTask: Created task %d", id)
	return models.Task{ID: id, Description: description, CreatedAt: timestamp(createdAt)}, nil
}

// GetTask returns the task with the given id, or nil when it does not exist.
func (s *Store) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	var createdAt int64
	err := s.db.QueryRowContext(ctx, "SELECT id, description, created_at FROM tasks WHERE id = ?", id).
		Scan(&task.ID, &task.Description, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying task ID %d: %w", id, err)
	}
	task.CreatedAt = timestamp(createdAt)
	return &task, nil
}

// GetAllTasks returns every task, newest first.
func (s *Store) GetAllTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, description, created_at FROM tasks ORDER BY created_at DESC, id DESC")
	if err != nil {
		logger.Error("GetAllTasks: Error querying all tasks: %v", err)
		return nil, fmt.Errorf("querying all tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		var createdAt int64
		if err := rows.Scan(&task.ID, &task.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		task.CreatedAt = timestamp(createdAt)
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}
