package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"taskboard/internal/cache"
	dom "taskboard/internal/domain"
	"taskboard/internal/store"
	"taskboard/internal/views"

	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// ValidationError carries the field errors of a rejected form.
type ValidationError struct {
	Fields views.FieldErrors
}

func (e *ValidationError) Error() string { return ErrValidation.Error() + ": " + e.Fields.Error() }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// TaskService is the handle views and handlers use to reach the store.
type TaskService struct {
	store *store.Store
	cache *cache.DashboardCache
	sf    singleflight.Group
	log   *slog.Logger
}

// NewTaskService creates a TaskService. If c is nil, dashboard caching is disabled.
func NewTaskService(s *store.Store, c *cache.DashboardCache, log *slog.Logger) *TaskService {
	return &TaskService{store: s, cache: c, log: log}
}

// Submit runs the creation form against the store. A nil task means the
// form was rejected and the dialog stays open.
func (s *TaskService) Submit(ctx context.Context, form views.TaskForm) (*dom.Task, views.DialogState) {
	t, dialog := views.Submit(s.store, form)
	if t != nil {
		s.log.DebugContext(ctx, "task added", "task_id", t.ID, "priority", t.Priority)
	}
	return t, dialog
}

// Create adds a task from form or returns a *ValidationError.
func (s *TaskService) Create(ctx context.Context, form views.TaskForm) (dom.Task, error) {
	t, dialog := s.Submit(ctx, form)
	if t == nil {
		return dom.Task{}, &ValidationError{Fields: dialog.Errors}
	}
	return *t, nil
}

// Update replaces the editable fields of a task.
func (s *TaskService) Update(ctx context.Context, id string, form views.TaskForm) (dom.Task, error) {
	if errs := form.Validate(); errs != nil {
		return dom.Task{}, &ValidationError{Fields: errs}
	}
	t, ok := s.store.UpdateTask(id, form.NewTask())
	if !ok {
		return dom.Task{}, ErrNotFound
	}
	s.log.DebugContext(ctx, "task updated", "task_id", id)
	return t, nil
}

// Toggle flips completion. ErrNotFound reports a missing id; the store is
// left untouched in that case.
func (s *TaskService) Toggle(ctx context.Context, id string) (dom.Task, error) {
	t, ok := s.store.ToggleTask(id)
	if !ok {
		return dom.Task{}, ErrNotFound
	}
	s.log.DebugContext(ctx, "task toggled", "task_id", id, "completed", t.Completed)
	return t, nil
}

// Delete removes a task. ErrNotFound reports a missing id.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if _, ok := s.store.DeleteTask(id); !ok {
		return ErrNotFound
	}
	s.log.DebugContext(ctx, "task deleted", "task_id", id)
	return nil
}

func (s *TaskService) Get(_ context.Context, id string) (dom.Task, error) {
	t, ok := s.store.Get(id)
	if !ok {
		return dom.Task{}, ErrNotFound
	}
	return t, nil
}

// List returns the tasks matching f, newest first.
func (s *TaskService) List(_ context.Context, f views.Filter) []dom.Task {
	return views.ApplyFilter(s.store.Tasks(), f)
}

// Dashboard returns the dashboard stats for the current store state.
func (s *TaskService) Dashboard(ctx context.Context) views.DashboardStats {
	if s.cache == nil {
		return views.Dashboard(s.store.Tasks())
	}
	storeID, rev := s.store.ID(), s.store.Revision()
	key := "dashboard:" + strconv.FormatUint(rev, 10)
	v, _, _ := s.sf.Do(key, func() (interface{}, error) {
		if stats, err := s.cache.Get(ctx, storeID, rev); err == nil && stats != nil {
			return *stats, nil
		}
		tasks, snapRev := s.store.Snapshot()
		stats := views.Dashboard(tasks)
		if err := s.cache.Set(ctx, storeID, snapRev, stats); err != nil {
			s.log.WarnContext(ctx, "dashboard cache set", "revision", snapRev, "err", err)
		}
		return stats, nil
	})
	return v.(views.DashboardStats)
}

// Subscribe registers fn for store changes; see store.Store.Subscribe.
func (s *TaskService) Subscribe(fn store.Subscriber) (unsubscribe func()) {
	return s.store.Subscribe(fn)
}

// Revision is the current store revision.
func (s *TaskService) Revision() uint64 {
	return s.store.Revision()
}
