package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/notify"
	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

const (
	msgTaskCreated      = "Task created successfully!"
	msgTaskUpdated      = "Task updated successfully!"
	msgTaskDeleted      = "Task deleted successfully!"
	msgTaskCreateFailed = "Failed to create task"
	msgTaskUpdateFailed = "Failed to update task"
	msgTaskDeleteFailed = "Failed to delete task"
)

type taskServiceImpl struct {
	logger   zerolog.Logger
	store    storage.Storage
	notifier notify.Notifier
	now      func() time.Time

	mu    sync.RWMutex
	user  *models.User
	tasks []models.Task
}

type TaskServiceOption func(*taskServiceImpl)

// WithClock replaces time.Now as the source of task timestamps.
func WithClock(now func() time.Time) TaskServiceOption {
	return func(s *taskServiceImpl) {
		s.now = now
	}
}

func NewTaskService(
	logger zerolog.Logger,
	store storage.Storage,
	notifier notify.Notifier,
	opts ...TaskServiceOption,
) TaskService {
	s := &taskServiceImpl{
		logger:   logger,
		store:    store,
		notifier: notifier,
		now:      time.Now,
		tasks:    []models.Task{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *taskServiceImpl) Load(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, found, err := readState[[]models.Task](ctx, s.store, TasksKey)
	if err != nil {
		if errors.Is(err, ErrCorruptState) {
			s.logger.Error().
				Err(err).
				Str("user_id", user.ID).
				Msg("persisted tasks are corrupt, starting with an empty list")
			s.user = &user
			s.tasks = []models.Task{}
			return err
		}

		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to read tasks")
		s.unload()
		return err
	}

	if !found {
		seeded, err := s.sampleTasks(user.ID)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to build sample tasks")
			s.unload()
			return err
		}

		err = writeState(ctx, s.store, TasksKey, seeded)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to persist sample tasks")
			s.unload()
			return err
		}

		s.user = &user
		s.tasks = seeded
		s.logger.Info().
			Str("user_id", user.ID).
			Int("count", len(seeded)).
			Msg("seeded sample tasks")
		return nil
	}

	tasks := make([]models.Task, 0, len(all))
	for _, task := range all {
		if task.UserID == user.ID {
			tasks = append(tasks, task)
		}
	}
	s.user = &user
	s.tasks = tasks

	s.logger.Debug().
		Int("total", len(all)).
		Msg("read persisted tasks")

	s.logger.Info().
		Str("user_id", user.ID).
		Int("count", len(tasks)).
		Msg("loaded tasks")
	return nil
}

func (s *taskServiceImpl) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.unload()
	s.logger.Debug().Msg("reset task list")
}

// unload drops the loaded user and tasks. The caller must hold s.mu.
func (s *taskServiceImpl) unload() {
	s.user = nil
	s.tasks = []models.Task{}
}

func (s *taskServiceImpl) Add(ctx context.Context, fields models.TaskFields) (*models.Task, error) {
	err := validateFields(fields)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("invalid task fields")
		s.notifier.Notify(msgTaskCreateFailed, notify.KindError)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		s.logger.Error().Msg("no user loaded, refusing to create task")
		s.notifier.Notify(msgTaskCreateFailed, notify.KindError)
		return nil, ErrUnauthenticated
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		s.notifier.Notify(msgTaskCreateFailed, notify.KindError)
		return nil, err
	}

	now := s.timestamp()
	task := models.Task{
		ID:          taskUUID.String(),
		Title:       fields.Title,
		Description: fields.Description,
		Status:      fields.Status,
		Priority:    fields.Priority,
		DueDate:     fields.DueDate.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      s.user.ID,
		Tags:        cloneTags(fields.Tags),
	}

	updated := append(slices.Clone(s.tasks), task)
	err = s.persist(ctx, updated)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to persist created task")
		s.notifier.Notify(msgTaskCreateFailed, notify.KindError)
		return nil, err
	}
	s.tasks = updated

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("created task")
	s.notifier.Notify(msgTaskCreated, notify.KindSuccess)
	return copyTask(task), nil
}

func (s *taskServiceImpl) Update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	err := validatePatch(patch)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("invalid task patch")
		s.notifier.Notify(msgTaskUpdateFailed, notify.KindError)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		s.logger.Error().Msg("no user loaded, refusing to update task")
		s.notifier.Notify(msgTaskUpdateFailed, notify.KindError)
		return nil, ErrUnauthenticated
	}

	idx := s.indexOf(id)
	if idx < 0 {
		s.logger.Error().
			Str("task_id", id).
			Str("user_id", s.user.ID).
			Msg("task not found")
		s.notifier.Notify(msgTaskUpdateFailed, notify.KindError)
		return nil, ErrTaskNotFound
	}

	task := s.tasks[idx]
	applyPatch(&task, patch)
	task.UpdatedAt = s.touch(task.UpdatedAt)

	updated := slices.Clone(s.tasks)
	updated[idx] = task
	err = s.persist(ctx, updated)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to persist updated task")
		s.notifier.Notify(msgTaskUpdateFailed, notify.KindError)
		return nil, err
	}
	s.tasks = updated

	s.logger.Info().
		Str("task_id", id).
		Str("user_id", task.UserID).
		Msg("updated task")
	s.notifier.Notify(msgTaskUpdated, notify.KindSuccess)
	return copyTask(task), nil
}

func (s *taskServiceImpl) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		s.logger.Error().Msg("no user loaded, refusing to delete task")
		s.notifier.Notify(msgTaskDeleteFailed, notify.KindError)
		return ErrUnauthenticated
	}

	idx := s.indexOf(id)
	if idx < 0 {
		s.logger.Error().
			Str("task_id", id).
			Str("user_id", s.user.ID).
			Msg("task not found")
		s.notifier.Notify(msgTaskDeleteFailed, notify.KindError)
		return ErrTaskNotFound
	}

	updated := slices.Delete(slices.Clone(s.tasks), idx, idx+1)
	err := s.persist(ctx, updated)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to persist task deletion")
		s.notifier.Notify(msgTaskDeleteFailed, notify.KindError)
		return err
	}
	s.tasks = updated

	s.logger.Info().
		Str("task_id", id).
		Str("user_id", s.user.ID).
		Msg("deleted task")
	s.notifier.Notify(msgTaskDeleted, notify.KindSuccess)
	return nil
}

func (s *taskServiceImpl) GetByID(id string) (*models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, false
	}
	return copyTask(s.tasks[idx]), true
}

func (s *taskServiceImpl) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]models.Task, len(s.tasks))
	for i, task := range s.tasks {
		task.Tags = cloneTags(task.Tags)
		tasks[i] = task
	}
	return tasks
}

// persist writes the cross-user collection back: every persisted task of
// other users, untouched, followed by the current user's updated list.
// The caller must hold s.mu.
func (s *taskServiceImpl) persist(ctx context.Context, updated []models.Task) error {
	all, _, err := readState[[]models.Task](ctx, s.store, TasksKey)
	if err != nil {
		if !errors.Is(err, ErrCorruptState) {
			return err
		}
		s.logger.Warn().
			Err(err).
			Msg("persisted tasks are corrupt, overwriting them")
		all = nil
	}

	merged := make([]models.Task, 0, len(all)+len(updated))
	for _, task := range all {
		if task.UserID != s.user.ID {
			merged = append(merged, task)
		}
	}
	merged = append(merged, updated...)

	err = writeState(ctx, s.store, TasksKey, merged)
	if err != nil {
		return err
	}
	s.logger.Debug().
		Int("total", len(merged)).
		Int("own", len(updated)).
		Msg("persisted tasks")
	return nil
}

func (s *taskServiceImpl) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t models.Task) bool {
		return t.ID == id
	})
}

func (s *taskServiceImpl) timestamp() time.Time {
	return s.now().UTC()
}

// touch returns a timestamp strictly after prev.
func (s *taskServiceImpl) touch(prev time.Time) time.Time {
	now := s.timestamp()
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}

func (s *taskServiceImpl) sampleTasks(userID string) ([]models.Task, error) {
	samples := []struct {
		title       string
		description string
		status      models.Status
		priority    models.Priority
		dueIn       time.Duration
		tags        []string
	}{
		{
			title:       "Complete Project Proposal",
			description: "Finish the quarterly project proposal and submit to management",
			status:      models.StatusInProgress,
			priority:    models.PriorityHigh,
			dueIn:       3 * 24 * time.Hour,
			tags:        []string{"work", "urgent"},
		},
		{
			title:       "Review Code Changes",
			description: "Review and approve pending pull requests from the development team",
			status:      models.StatusPending,
			priority:    models.PriorityMedium,
			dueIn:       2 * 24 * time.Hour,
			tags:        []string{"development", "review"},
		},
		{
			title:       "Team Meeting Preparation",
			description: "Prepare agenda and materials for the weekly team meeting",
			status:      models.StatusCompleted,
			priority:    models.PriorityLow,
			dueIn:       24 * time.Hour,
			tags:        []string{"meeting", "planning"},
		},
	}

	now := s.timestamp()
	tasks := make([]models.Task, 0, len(samples))
	for _, sample := range samples {
		taskUUID, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate task uuid: %w", err)
		}
		tasks = append(tasks, models.Task{
			ID:          taskUUID.String(),
			Title:       sample.title,
			Description: sample.description,
			Status:      sample.status,
			Priority:    sample.priority,
			DueDate:     now.Add(sample.dueIn),
			CreatedAt:   now,
			UpdatedAt:   now,
			UserID:      userID,
			Tags:        sample.tags,
		})
	}
	return tasks, nil
}

func validateFields(fields models.TaskFields) error {
	switch {
	case strings.TrimSpace(fields.Title) == "":
		return fmt.Errorf("%w: empty title", ErrInvalidTask)
	case strings.TrimSpace(fields.Description) == "":
		return fmt.Errorf("%w: empty description", ErrInvalidTask)
	case !fields.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTask, fields.Status)
	case !fields.Priority.Valid():
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidTask, fields.Priority)
	}
	return nil
}

func validatePatch(patch models.TaskPatch) error {
	switch {
	case patch.Title != nil && strings.TrimSpace(*patch.Title) == "":
		return fmt.Errorf("%w: empty title", ErrInvalidTask)
	case patch.Description != nil && strings.TrimSpace(*patch.Description) == "":
		return fmt.Errorf("%w: empty description", ErrInvalidTask)
	case patch.Status != nil && !patch.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTask, *patch.Status)
	case patch.Priority != nil && !patch.Priority.Valid():
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidTask, *patch.Priority)
	}
	return nil
}

func applyPatch(task *models.Task, patch models.TaskPatch) {
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate.UTC()
	}
	if patch.Tags != nil {
		task.Tags = cloneTags(*patch.Tags)
	}
}

func cloneTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return slices.Clone(tags)
}

func copyTask(task models.Task) *models.Task {
	task.Tags = cloneTags(task.Tags)
	return &task
}
