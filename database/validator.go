package database

import (
	"context"
	"database/sql"
	"fmt"
)

// ValidationError reports a reference to a task or tag that does not exist.
// Exactly one of MissingTask or MissingTagID is set.
type ValidationError struct {
	TaskID       int64
	MissingTask  bool
	MissingTagID int64
}

func (e *ValidationError) Error() string {
	if e.MissingTask {
		return fmt.Sprintf("task with ID %d does not exist", e.TaskID)
	}
	return fmt.Sprintf("tag with ID %d does not exist", e.MissingTagID)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// validateRefs checks that taskID and every id in tagIDs exist. The task is
// checked first; tags are checked with a single set query and the first
// missing id in request order is reported.
func validateRefs(ctx context.Context, q querier, taskID int64, tagIDs []int64) error {
	var taskExists bool
	if err := q.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM tasks WHERE id = ?)", taskID).Scan(&taskExists); err != nil {
		return fmt.Errorf("checking task %d: %w", taskID, err)
	}
	if !taskExists {
		return &ValidationError{TaskID: taskID, MissingTask: true}
	}
	if len(tagIDs) == 0 {
		return nil
	}

	marks, args := placeholders(tagIDs)
	rows, err := q.QueryContext(ctx, "SELECT id FROM tags WHERE id IN ("+marks+")", args...)
	if err != nil {
		return fmt.Errorf("checking tags: %w", err)
	}
	defer rows.Close()

	found := make(map[int64]bool, len(tagIDs))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scanning tag id: %w", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating tag ids: %w", err)
	}

	for _, id := range tagIDs {
		if !found[id] {
			return &ValidationError{TaskID: taskID, MissingTagID: id}
		}
	}
	return nil
}

// ValidateRefs runs the reference checks outside of any write. Event
// creation repeats them inside its own transaction.
func (s *Store) ValidateRefs(ctx context.Context, taskID int64, tagIDs []int64) error {
	return validateRefs(ctx, s.db, taskID, tagIDs)
}
