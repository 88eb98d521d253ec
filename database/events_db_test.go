package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock shared with a Store under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	store.now = clock.Now
	return store, clock
}

func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return n
}

func mustTag(t *testing.T, s *Store, name string) int64 {
	t.Helper()
	tag, err := s.CreateTag(context.Background(), name)
	if err != nil {
		t.Fatalf("CreateTag(%q): %v", name, err)
	}
	return tag.ID
}

func mustTask(t *testing.T, s *Store, description string) int64 {
	t.Helper()
	task, err := s.CreateTask(context.Background(), description)
	if err != nil {
		t.Fatalf("CreateTask(%q): %v", description, err)
	}
	return task.ID
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tracker.db")
	for i := 0; i < 2; i++ {
		store, err := Open(path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		if err := store.Ping(context.Background()); err != nil {
			t.Fatalf("Ping: %v", err)
		}
		store.Close()
	}
}

func TestCreateEventMissingTask(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	tagID := mustTag(t, s, "work")

	_, err := s.CreateEvent(ctx, 9999, []int64{tagID})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !vErr.MissingTask || vErr.TaskID != 9999 {
		t.Errorf("expected missing task 9999, got %+v", vErr)
	}
	if n := countRows(t, s, "events"); n != 0 {
		t.Errorf("expected no events, got %d", n)
	}
	if n := countRows(t, s, "event_tags"); n != 0 {
		t.Errorf("expected no links, got %d", n)
	}
}

func TestCreateEventMissingTagIsAllOrNothing(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	taskID := mustTask(t, s, "Write docs")
	good := mustTag(t, s, "work")

	_, err := s.CreateEvent(ctx, taskID, []int64{good, 404, 405})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.MissingTask {
		t.Error("task exists, should not be reported missing")
	}
	if vErr.MissingTagID != 404 {
		t.Errorf("expected first missing tag 404, got %d", vErr.MissingTagID)
	}
	if n := countRows(t, s, "events"); n != 0 {
		t.Errorf("expected no events, got %d", n)
	}
	if n := countRows(t, s, "event_tags"); n != 0 {
		t.Errorf("expected no links, got %d", n)
	}
}

func TestCreateEventStorageFailureRollsBack(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	taskID := mustTask(t, s, "Write docs")
	first := mustTag(t, s, "work")
	second := mustTag(t, s, "urgent")

	// Fails the second link insert, after the event row is already written.
	if _, err := s.db.Exec(fmt.Sprintf(`
		CREATE TRIGGER fail_second_link BEFORE INSERT ON event_tags
		WHEN NEW.tag_id = %d
		BEGIN SELECT RAISE(ABORT, 'link insert failed'); END;
	`, second)); err != nil {
		t.Fatalf("creating trigger: %v", err)
	}

	_, err := s.CreateEvent(ctx, taskID, []int64{first, second})
	if err == nil {
		t.Fatal("expected CreateEvent to fail")
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		t.Fatalf("expected a storage error, got validation error %v", err)
	}
	if n := countRows(t, s, "events"); n != 0 {
		t.Errorf("expected no events after rollback, got %d", n)
	}
	if n := countRows(t, s, "event_tags"); n != 0 {
		t.Errorf("expected no links after rollback, got %d", n)
	}
}

func TestStopEventStorageFailureLeavesEventRunning(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	id, err := s.CreateEvent(ctx, mustTask(t, s, "Write docs"), nil)
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	if _, err := s.db.Exec(`
		CREATE TRIGGER fail_stop BEFORE UPDATE ON events
		BEGIN SELECT RAISE(ABORT, 'stop failed'); END;
	`); err != nil {
		t.Fatalf("creating trigger: %v", err)
	}
	_, err = s.StopEvent(ctx, id)
	if err == nil || errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected a storage error, got %v", err)
	}
	assertRunning(t, s, id)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := s.StopEvent(cancelled, id); err == nil {
		t.Fatal("expected StopEvent to fail on a cancelled context")
	}
	assertRunning(t, s, id)

	if _, err := s.db.Exec("DROP TRIGGER fail_stop"); err != nil {
		t.Fatalf("dropping trigger: %v", err)
	}
	if _, err := s.StopEvent(ctx, id); err != nil {
		t.Fatalf("StopEvent after failures: %v", err)
	}
}

func assertRunning(t *testing.T, s *Store, id int64) {
	t.Helper()
	event, err := s.GetEvent(context.Background(), id)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if !event.Running() {
		t.Errorf("event %d should still be running, stopped_at=%v", id, event.StoppedAt)
	}
}

func TestCreateEventLinksTagsOnce(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	taskID := mustTask(t, s, "Fix critical bug")
	urgent := mustTag(t, s, "urgent")
	bugfix := mustTag(t, s, "bug-fix")

	id, err := s.CreateEvent(ctx, taskID, []int64{bugfix, urgent, bugfix})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	tags, err := s.ListTagsFor(ctx, id)
	if err != nil {
		t.Fatalf("ListTagsFor: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(tags))
	}
	if tags[0].Name != "bug-fix" || tags[1].Name != "urgent" {
		t.Errorf("expected request order [bug-fix urgent], got [%s %s]", tags[0].Name, tags[1].Name)
	}
}

func TestCreateEventWithoutTags(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	taskID := mustTask(t, s, "Untagged")

	id, err := s.CreateEvent(ctx, taskID, nil)
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if !event.Running() || event.TaskID != taskID {
		t.Errorf("unexpected event %+v", event)
	}
}

func TestStopEventNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.StopEvent(context.Background(), 9999); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestStopEventOnlyOnce(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()
	taskID := mustTask(t, s, "Write docs")
	id, err := s.CreateEvent(ctx, taskID, nil)
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	clock.Advance(90*time.Second + 900*time.Millisecond)
	stopped, err := s.StopEvent(ctx, id)
	if err != nil {
		t.Fatalf("StopEvent: %v", err)
	}
	if stopped.DurationSeconds != 90 {
		t.Errorf("expected 90 whole seconds, got %d", stopped.DurationSeconds)
	}
	if got := stopped.StoppedAt.Sub(stopped.CreatedAt); got != 90*time.Second+900*time.Millisecond {
		t.Errorf("unexpected interval %s", got)
	}

	for i := 0; i < 2; i++ {
		clock.Advance(time.Minute)
		if _, err := s.StopEvent(ctx, id); !errors.Is(err, ErrEventNotFound) {
			t.Fatalf("stop #%d: expected ErrEventNotFound, got %v", i+2, err)
		}
	}

	event, err := s.GetEvent(ctx, id)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if event.StoppedAt == nil || !event.StoppedAt.Equal(stopped.StoppedAt) {
		t.Errorf("stopped_at changed after repeated stops: %v vs %v", event.StoppedAt, stopped.StoppedAt)
	}
}

func TestStopEventClockSkew(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()
	id, err := s.CreateEvent(ctx, mustTask(t, s, "skew"), nil)
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	clock.Advance(-time.Hour)
	stopped, err := s.StopEvent(ctx, id)
	if err != nil {
		t.Fatalf("StopEvent: %v", err)
	}
	if stopped.DurationSeconds != 0 {
		t.Errorf("expected duration clamped to 0, got %d", stopped.DurationSeconds)
	}
	if stopped.StoppedAt.Before(stopped.CreatedAt) {
		t.Errorf("stopped_at %v before created_at %v", stopped.StoppedAt, stopped.CreatedAt)
	}
}

func TestConcurrentStopHasSingleWinner(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	id, err := s.CreateEvent(ctx, mustTask(t, s, "race"), nil)
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.StopEvent(ctx, id)
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	var ok, notFound int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrEventNotFound):
			notFound++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || notFound != workers-1 {
		t.Errorf("expected 1 success and %d not found, got %d and %d", workers-1, ok, notFound)
	}
}

func TestListOpenEvents(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()
	first, err := s.CreateEvent(ctx, mustTask(t, s, "Implement feature X"), nil)
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	clock.Advance(time.Second)
	second, err := s.CreateEvent(ctx, mustTask(t, s, "Write unit tests"), nil)
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	open, err := s.ListOpenEvents(ctx)
	if err != nil {
		t.Fatalf("ListOpenEvents: %v", err)
	}
	if len(open) != 2 || open[0].ID != second || open[1].ID != first {
		t.Fatalf("expected [%d %d] newest first, got %+v", second, first, open)
	}

	if _, err := s.StopEvent(ctx, first); err != nil {
		t.Fatalf("StopEvent: %v", err)
	}
	open, err = s.ListOpenEvents(ctx)
	if err != nil {
		t.Fatalf("ListOpenEvents: %v", err)
	}
	if len(open) != 1 || open[0].ID != second {
		t.Fatalf("expected only %d running, got %+v", second, open)
	}
	for _, e := range open {
		if e.StoppedAt != nil {
			t.Errorf("open list contains stopped event %d", e.ID)
		}
	}
}

func TestConcurrentStartsDoNotExclude(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	tasks := []int64{mustTask(t, s, "one"), mustTask(t, s, "two"), mustTask(t, s, "three")}
	tag := mustTag(t, s, "shared")

	var wg sync.WaitGroup
	errs := make(chan error, len(tasks))
	for _, taskID := range tasks {
		wg.Add(1)
		go func(taskID int64) {
			defer wg.Done()
			_, err := s.CreateEvent(ctx, taskID, []int64{tag})
			errs <- err
		}(taskID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	open, err := s.ListOpenEvents(ctx)
	if err != nil {
		t.Fatalf("ListOpenEvents: %v", err)
	}
	if len(open) != len(tasks) {
		t.Errorf("expected %d running events, got %d", len(tasks), len(open))
	}
}

func TestDurationSeconds(t *testing.T) {
	tests := []struct {
		name               string
		createdAt, stopped int64
		want               int64
	}{
		{"zero", 10, 10, 0},
		{"sub-second", 0, 999_999, 0},
		{"floor", 0, 2_500_000, 2},
		{"negative clamps", 5_000_000, 1_000_000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := durationSeconds(tt.createdAt, tt.stopped); got != tt.want {
				t.Errorf("durationSeconds(%d, %d) = %d, want %d", tt.createdAt, tt.stopped, got, tt.want)
			}
		})
	}
}
