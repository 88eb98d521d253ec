package core

import (
	"context"
	"timetracker/logger"
	"timetracker/models"
)

// EventStore is the persistence the lifecycle service orchestrates.
// *database.Store implements it.
type EventStore interface {
	CreateEvent(ctx context.Context, taskID int64, tagIDs []int64) (int64, error)
	StopEvent(ctx context.Context, eventID int64) (models.StoppedEvent, error)
	ListOpenEvents(ctx context.Context) ([]models.Event, error)
	HydrateEvents(ctx context.Context, events []models.Event) ([]models.HydratedEvent, error)
	ValidateRefs(ctx context.Context, taskID int64, tagIDs []int64) error
	GetEvent(ctx context.Context, id int64) (models.Event, error)
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	ListTagsFor(ctx context.Context, eventID int64) ([]models.Tag, error)

	CreateTag(ctx context.Context, name string) (models.Tag, error)
	GetAllTags(ctx context.Context) ([]models.Tag, error)
	CreateTask(ctx context.Context, description string) (models.Task, error)
	GetAllTasks(ctx context.Context) ([]models.Task, error)
}

// EventService implements starting, stopping and listing events. It keeps
// no state of its own; every call goes straight to the store.
type EventService struct {
	store EventStore
}

// NewEventService creates a new instance of the EventService.
func NewEventService(store EventStore) *EventService {
	return &EventService{store: store}
}

// StartEvent validates the task and tag references and records a new
// running event in one atomic step.
func (s *EventService) StartEvent(ctx context.Context, taskID int64, tagIDs []int64) (int64, error) {
	id, err := s.store.CreateEvent(ctx, taskID, tagIDs)
	if err != nil {
		logger.Debug("EventService: start for task %d rejected: %v", taskID, err)
		return 0, classify(err)
	}
	return id, nil
}

// CheckStart runs the reference checks StartEvent would run without
// recording anything.
func (s *EventService) CheckStart(ctx context.Context, taskID int64, tagIDs []int64) error {
	return classify(s.store.ValidateRefs(ctx, taskID, tagIDs))
}

// StopEvent moves a running event to stopped. Stopping an unknown or
// already stopped event yields ErrNotFound.
func (s *EventService) StopEvent(ctx context.Context, eventID int64) (models.StoppedEvent, error) {
	stopped, err := s.store.StopEvent(ctx, eventID)
	if err != nil {
		logger.Debug("EventService: stop of event %d rejected: %v", eventID, err)
		return models.StoppedEvent{}, classify(err)
	}
	return stopped, nil
}

// ListRunningEvents returns every open event, newest first, with task and
// tags attached.
func (s *EventService) ListRunningEvents(ctx context.Context) ([]models.HydratedEvent, error) {
	open, err := s.store.ListOpenEvents(ctx)
	if err != nil {
		return nil, classify(err)
	}
	hydrated, err := s.store.HydrateEvents(ctx, open)
	if err != nil {
		return nil, classify(err)
	}
	return hydrated, nil
}

// GetEvent returns one event, running or stopped, with its task and tags.
func (s *EventService) GetEvent(ctx context.Context, id int64) (models.HydratedEvent, error) {
	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return models.HydratedEvent{}, classify(err)
	}
	task, err := s.store.GetTask(ctx, event.TaskID)
	if err != nil {
		return models.HydratedEvent{}, classify(err)
	}
	tags, err := s.store.ListTagsFor(ctx, id)
	if err != nil {
		return models.HydratedEvent{}, classify(err)
	}
	if len(tags) == 0 {
		tags = nil
	}
	return models.HydratedEvent{Event: event, Task: task, Tags: tags}, nil
}

func (s *EventService) CreateTag(ctx context.Context, name string) (models.Tag, error) {
	tag, err := s.store.CreateTag(ctx, name)
	return tag, classify(err)
}

func (s *EventService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.store.GetAllTags(ctx)
	return tags, classify(err)
}

func (s *EventService) CreateTask(ctx context.Context, description string) (models.Task, error) {
	task, err := s.store.CreateTask(ctx, description)
	return task, classify(err)
}

func (s *EventService) ListTasks(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.store.GetAllTasks(ctx)
	return tasks, classify(err)
}
