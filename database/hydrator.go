package database

import (
	"context"
	"fmt"
	"timetracker/models"
)

// HydrateEvents attaches each event's task and tags using one query for all
// tasks and one for all tag links. Output order matches the input order. An
// event whose task no longer exists gets a nil Task.
func (s *Store) HydrateEvents(ctx context.Context, events []models.Event) ([]models.HydratedEvent, error) {
	hydrated := make([]models.HydratedEvent, len(events))
	if len(events) == 0 {
		return hydrated, nil
	}

	taskIDs := make([]int64, 0, len(events))
	eventIDs := make([]int64, 0, len(events))
	for _, e := range events {
		taskIDs = append(taskIDs, e.TaskID)
		eventIDs = append(eventIDs, e.ID)
	}

	tasks, err := s.tasksByID(ctx, distinctIDs(taskIDs))
	if err != nil {
		return nil, err
	}
	tags, err := s.tagsByEvent(ctx, distinctIDs(eventIDs))
	if err != nil {
		return nil, err
	}

	for i, e := range events {
		hydrated[i] = models.HydratedEvent{Event: e, Tags: tags[e.ID]}
		if task, ok := tasks[e.TaskID]; ok {
			hydrated[i].Task = &task
		}
	}
	return hydrated, nil
}

func (s *Store) tasksByID(ctx context.Context, ids []int64) (map[int64]models.Task, error) {
	marks, args := placeholders(ids)
	rows, err := s.db.QueryContext(ctx, "SELECT id, description, created_at FROM tasks WHERE id IN ("+marks+")", args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks for hydration: %w", err)
	}
	defer rows.Close()

	tasks := make(map[int64]models.Task, len(ids))
	for rows.Next() {
		var task models.Task
		var createdAt int64
		if err := rows.Scan(&task.ID, &task.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning task for hydration: %w", err)
		}
		task.CreatedAt = timestamp(createdAt)
		tasks[task.ID] = task
	}
	return tasks, rows.Err()
}

func (s *Store) tagsByEvent(ctx context.Context, eventIDs []int64) (map[int64][]models.Tag, error) {
	marks, args := placeholders(eventIDs)
	rows, err := s.db.QueryContext(ctx, `
		SELECT et.event_id, t.id, t.name, t.created_at
		FROM event_tags et
		JOIN tags t ON t.id = et.tag_id
		WHERE et.event_id IN (`+marks+`)
		ORDER BY et.event_id, et.rowid
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tags for hydration: %w", err)
	}
	defer rows.Close()

	tags := make(map[int64][]models.Tag, len(eventIDs))
	for rows.Next() {
		var eventID, createdAt int64
		var tag models.Tag
		if err := rows.Scan(&eventID, &tag.ID, &tag.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning tag for hydration: %w", err)
		}
		tag.CreatedAt = timestamp(createdAt)
		tags[eventID] = append(tags[eventID], tag)
	}
	return tags, rows.Err()
}
