package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"timetracker/logger"
	"timetracker/models"
)

// CreateEvent starts a new event for taskID tagged with tagIDs. Reference
// checks, the event row and all link rows share one transaction: either
// everything is written or nothing is. Repeated tag ids are stored once.
func (s *Store) CreateEvent(ctx context.Context, taskID int64, tagIDs []int64) (id int64, err error) {
	tagIDs = distinctIDs(tagIDs)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning create event transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logger.Error("CreateEvent: Rollback failed: %v", rbErr)
			}
		}
	}()

	if err = validateRefs(ctx, tx, taskID, tagIDs); err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx, "INSERT INTO events (task_id, created_at) VALUES (?, ?)", taskID, s.nowMicro())
	if err != nil {
		return 0, fmt.Errorf("inserting event for task %d: %w", taskID, err)
	}
	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert ID for event: %w", err)
	}

	if len(tagIDs) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx, "INSERT INTO event_tags (event_id, tag_id) VALUES (?, ?)")
		if err != nil {
			return 0, fmt.Errorf("preparing event tag insert: %w", err)
		}
		defer stmt.Close()
		for _, tagID := range tagIDs {
			if _, err = stmt.ExecContext(ctx, id, tagID); err != nil {
				return 0, fmt.Errorf("linking tag %d to event %d: %w", tagID, id, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing event %d: %w", id, err)
	}
	logger.Info("CreateEvent: Started event %d for task %d with %d tag(s)", id, taskID, len(tagIDs))
	return id, nil
}

// StopEvent sets stopped_at on a running event and returns its duration.
// The running check and the update are one conditional statement, so of
// several concurrent stops for the same id exactly one succeeds. An unknown
// id and an already stopped event both return ErrEventNotFound.
func (s *Store) StopEvent(ctx context.Context, eventID int64) (stopped models.StoppedEvent, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stopped, fmt.Errorf("beginning stop event transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logger.Error("StopEvent: Rollback failed: %v", rbErr)
			}
		}
	}()

	// MAX keeps stopped_at >= created_at if the wall clock stepped backwards.
	var createdAt, stoppedAt int64
	err = tx.QueryRowContext(ctx, `
		UPDATE events
		SET stopped_at = MAX(?, created_at)
		WHERE id = ? AND stopped_at IS NULL
		RETURNING created_at, stopped_at
	`, s.nowMicro(), eventID).Scan(&createdAt, &stoppedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return stopped, fmt.Errorf("event %d: %w", eventID, ErrEventNotFound)
		}
		return stopped, fmt.Errorf("stopping event %d: %w", eventID, err)
	}

	if err = tx.Commit(); err != nil {
		return stopped, fmt.Errorf("committing stop of event %d: %w", eventID, err)
	}

	stopped = models.StoppedEvent{
		ID:              eventID,
		CreatedAt:       timestamp(createdAt),
		StoppedAt:       timestamp(stoppedAt),
		DurationSeconds: durationSeconds(createdAt, stoppedAt),
	}
	logger.Info("StopEvent: Stopped event %d after %ds", eventID, stopped.DurationSeconds)
	return stopped, nil
}

// durationSeconds returns the whole seconds between two unix-microsecond
// timestamps, never negative.
func durationSeconds(createdAt, stoppedAt int64) int64 {
	if stoppedAt <= createdAt {
		return 0
	}
	return (stoppedAt - createdAt) / 1_000_000
}

// GetEvent retrieves a single event by its ID, running or stopped.
func (s *Store) GetEvent(ctx context.Context, id int64) (models.Event, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, task_id, created_at, stopped_at FROM events WHERE id = ?", id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return event, fmt.Errorf("event %d: %w", id, ErrEventNotFound)
		}
		return event, fmt.Errorf("querying event %d: %w", id, err)
	}
	return event, nil
}

// ListOpenEvents returns every running event, newest first.
func (s *Store) ListOpenEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, created_at, stopped_at
		FROM events
		WHERE stopped_at IS NULL
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		logger.Error("ListOpenEvents: Error querying open events: %v", err)
		return nil, fmt.Errorf("querying open events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating open events: %w", err)
	}
	return events, nil
}

// ListTagsFor returns the tags linked to an event in the order they were
// given when the event was started.
func (s *Store) ListTagsFor(ctx context.Context, eventID int64) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.created_at
		FROM event_tags et
		JOIN tags t ON t.id = et.tag_id
		WHERE et.event_id = ?
		ORDER BY et.rowid
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("querying tags for event %d: %w", eventID, err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		var createdAt int64
		if err := rows.Scan(&tag.ID, &tag.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning tag row for event %d: %w", eventID, err)
		}
		tag.CreatedAt = timestamp(createdAt)
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (models.Event, error) {
	var event models.Event
	var createdAt int64
	var stoppedAt sql.NullInt64
	if err := row.Scan(&event.ID, &event.TaskID, &createdAt, &stoppedAt); err != nil {
		return event, err
	}
	event.CreatedAt = timestamp(createdAt)
	if stoppedAt.Valid {
		t := timestamp(stoppedAt.Int64)
		event.StoppedAt = &t
	}
	return event, nil
}
