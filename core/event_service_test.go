package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"
	"timetracker/database"
	"timetracker/models"
)

// stubStore returns canned results and records what the service asked for.
type stubStore struct {
	createErr   error
	validateErr error
	getErr      error
	events      map[int64]models.Event
	tasks       map[int64]models.Task
	tags        map[int64][]models.Tag
	stopErr     error
	listErr     error
	hydrateErr  error
	open        []models.Event
	hydrated    []models.Event
}

func (s *stubStore) CreateEvent(ctx context.Context, taskID int64, tagIDs []int64) (int64, error) {
	if s.createErr != nil {
		return 0, s.createErr
	}
	return 42, nil
}

func (s *stubStore) StopEvent(ctx context.Context, eventID int64) (models.StoppedEvent, error) {
	if s.stopErr != nil {
		return models.StoppedEvent{}, s.stopErr
	}
	return models.StoppedEvent{ID: eventID, DurationSeconds: 3}, nil
}

func (s *stubStore) ListOpenEvents(ctx context.Context) ([]models.Event, error) {
	return s.open, s.listErr
}

func (s *stubStore) HydrateEvents(ctx context.Context, events []models.Event) ([]models.HydratedEvent, error) {
	if s.hydrateErr != nil {
		return nil, s.hydrateErr
	}
	s.hydrated = events
	out := make([]models.HydratedEvent, len(events))
	for i, e := range events {
		out[i] = models.HydratedEvent{Event: e}
	}
	return out, nil
}

func (s *stubStore) ValidateRefs(ctx context.Context, taskID int64, tagIDs []int64) error {
	return s.validateErr
}

func (s *stubStore) GetEvent(ctx context.Context, id int64) (models.Event, error) {
	if s.getErr != nil {
		return models.Event{}, s.getErr
	}
	e, ok := s.events[id]
	if !ok {
		return models.Event{}, fmt.Errorf("event %d: %w", id, database.ErrEventNotFound)
	}
	return e, nil
}

func (s *stubStore) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	return &task, nil
}

func (s *stubStore) ListTagsFor(ctx context.Context, eventID int64) ([]models.Tag, error) {
	return s.tags[eventID], nil
}

func (s *stubStore) CreateTag(ctx context.Context, name string) (models.Tag, error) {
	return models.Tag{}, s.createErr
}

func (s *stubStore) GetAllTags(ctx context.Context) ([]models.Tag, error) { return nil, nil }

func (s *stubStore) CreateTask(ctx context.Context, description string) (models.Task, error) {
	return models.Task{}, s.createErr
}

func (s *stubStore) GetAllTasks(ctx context.Context) ([]models.Task, error) { return nil, nil }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"missing task", &database.ValidationError{TaskID: 1, MissingTask: true}, ErrValidation},
		{"wrapped missing tag", fmt.Errorf("start: %w", &database.ValidationError{MissingTagID: 9}), ErrValidation},
		{"blank name", fmt.Errorf("tag: %w", database.ErrInvalidName), ErrValidation},
		{"not running", fmt.Errorf("event 3: %w", database.ErrEventNotFound), ErrNotFound},
		{"duplicate", fmt.Errorf("tag 'x': %w", database.ErrConflict), ErrConflict},
		{"anything else", errors.New("disk I/O error"), ErrStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if !errors.Is(got, tt.kind) {
				t.Errorf("classify(%v) is not %v", tt.err, tt.kind)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("classify(%v) lost the cause", tt.err)
			}
			if got.Error() != tt.err.Error() {
				t.Errorf("message changed: %q vs %q", got.Error(), tt.err.Error())
			}
		})
	}
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
}

func TestStartEventKeepsValidationDetail(t *testing.T) {
	svc := NewEventService(&stubStore{createErr: &database.ValidationError{MissingTagID: 5}})
	_, err := svc.StartEvent(context.Background(), 1, []int64{5})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	var vErr *database.ValidationError
	if !errors.As(err, &vErr) || vErr.MissingTagID != 5 {
		t.Errorf("validation detail lost: %v", err)
	}
}

func TestStopEventPassesThrough(t *testing.T) {
	svc := NewEventService(&stubStore{})
	stopped, err := svc.StopEvent(context.Background(), 8)
	if err != nil {
		t.Fatalf("StopEvent: %v", err)
	}
	if stopped.ID != 8 || stopped.DurationSeconds != 3 {
		t.Errorf("unexpected result %+v", stopped)
	}

	svc = NewEventService(&stubStore{stopErr: database.ErrEventNotFound})
	if _, err := svc.StopEvent(context.Background(), 8); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListRunningEventsHydratesOpenEvents(t *testing.T) {
	open := []models.Event{{ID: 2, TaskID: 1}, {ID: 1, TaskID: 1}}
	store := &stubStore{open: open}
	svc := NewEventService(store)

	got, err := svc.ListRunningEvents(context.Background())
	if err != nil {
		t.Fatalf("ListRunningEvents: %v", err)
	}
	if len(store.hydrated) != 2 || len(got) != 2 || got[0].ID != 2 || got[1].ID != 1 {
		t.Errorf("expected hydrated [2 1], got %+v", got)
	}

	svc = NewEventService(&stubStore{listErr: errors.New("boom")})
	if _, err := svc.ListRunningEvents(context.Background()); !errors.Is(err, ErrStorage) {
		t.Errorf("expected ErrStorage, got %v", err)
	}
	svc = NewEventService(&stubStore{hydrateErr: errors.New("boom")})
	if _, err := svc.ListRunningEvents(context.Background()); !errors.Is(err, ErrStorage) {
		t.Errorf("expected ErrStorage from hydration, got %v", err)
	}
}

func TestCheckStart(t *testing.T) {
	svc := NewEventService(&stubStore{})
	if err := svc.CheckStart(context.Background(), 1, []int64{2}); err != nil {
		t.Fatalf("expected valid refs, got %v", err)
	}

	svc = NewEventService(&stubStore{validateErr: &database.ValidationError{TaskID: 1, MissingTagID: 2}})
	err := svc.CheckStart(context.Background(), 1, []int64{2})
	var vErr *database.ValidationError
	if !errors.Is(err, ErrValidation) || !errors.As(err, &vErr) || vErr.MissingTagID != 2 {
		t.Errorf("expected validation error for tag 2, got %v", err)
	}
}

func TestGetEvent(t *testing.T) {
	stoppedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store := &stubStore{
		events: map[int64]models.Event{
			1: {ID: 1, TaskID: 5, StoppedAt: &stoppedAt},
			2: {ID: 2, TaskID: 404},
		},
		tasks: map[int64]models.Task{5: {ID: 5, Description: "Write docs"}},
		tags:  map[int64][]models.Tag{1: {{ID: 3, Name: "work"}}, 2: {}},
	}
	svc := NewEventService(store)
	ctx := context.Background()

	got, err := svc.GetEvent(ctx, 1)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.Task == nil || got.Task.Description != "Write docs" || len(got.Tags) != 1 || got.StoppedAt == nil {
		t.Errorf("unexpected hydrated event %+v", got)
	}

	orphan, err := svc.GetEvent(ctx, 2)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if orphan.Task != nil || orphan.Tags != nil {
		t.Errorf("expected no task and nil tags, got %+v", orphan)
	}

	if _, err := svc.GetEvent(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	svc = NewEventService(&stubStore{getErr: errors.New("disk I/O error")})
	if _, err := svc.GetEvent(ctx, 1); !errors.Is(err, ErrStorage) {
		t.Errorf("expected ErrStorage, got %v", err)
	}
}

// TestLifecycleScenario walks the documented round trip against SQLite.
func TestLifecycleScenario(t *testing.T) {
	store, err := database.Open(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()
	svc := NewEventService(store)
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, "work")
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	task, err := svc.CreateTask(ctx, "Write docs")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if tag.ID != 1 || task.ID != 1 {
		t.Fatalf("expected ids 1/1 on a fresh database, got %d/%d", tag.ID, task.ID)
	}

	id, err := svc.StartEvent(ctx, task.ID, []int64{tag.ID})
	if err != nil {
		t.Fatalf("StartEvent: %v", err)
	}
	if id != 1 {
		t.Errorf("expected event id 1, got %d", id)
	}

	running, err := svc.ListRunningEvents(ctx)
	if err != nil {
		t.Fatalf("ListRunningEvents: %v", err)
	}
	if len(running) != 1 || running[0].Task == nil || running[0].Task.Description != "Write docs" ||
		len(running[0].Tags) != 1 || running[0].Tags[0].Name != "work" {
		t.Fatalf("unexpected running events %+v", running)
	}

	time.Sleep(10 * time.Millisecond)
	stopped, err := svc.StopEvent(ctx, id)
	if err != nil {
		t.Fatalf("StopEvent: %v", err)
	}
	if stopped.DurationSeconds < 0 {
		t.Errorf("negative duration %d", stopped.DurationSeconds)
	}
	shown, err := svc.GetEvent(ctx, id)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if shown.StoppedAt == nil || !shown.StoppedAt.Equal(stopped.StoppedAt) ||
		shown.Task == nil || len(shown.Tags) != 1 || shown.Tags[0].Name != "work" {
		t.Errorf("unexpected stopped event %+v", shown)
	}

	running, err = svc.ListRunningEvents(ctx)
	if err != nil {
		t.Fatalf("ListRunningEvents: %v", err)
	}
	if len(running) != 0 {
		t.Errorf("expected no running events, got %d", len(running))
	}
	if _, err := svc.StopEvent(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second stop: expected ErrNotFound, got %v", err)
	}

	if _, err := svc.StartEvent(ctx, 9999, nil); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown task: expected ErrValidation, got %v", err)
	}
	if _, err := svc.CreateTag(ctx, "work"); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate tag: expected ErrConflict, got %v", err)
	}
}
