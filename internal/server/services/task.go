package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

// CreateTaskInput is the payload of a task creation request.
type CreateTaskInput struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Completed   bool    `json:"completed"`
}

// UpdateTaskInput is a partial update; nil fields are left unchanged and an
// empty description clears it.
type UpdateTaskInput struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Completed   *bool   `json:"completed"`
}

func (in UpdateTaskInput) patch() models.TaskPatch {
	return models.TaskPatch{Title: in.Title, Description: in.Description, Completed: in.Completed}
}

// TaskService is the owner-scoped task store. Every method takes the id of
// the authenticated user; tasks of other users behave as if they did not exist.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *TaskService {
	return &TaskService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "tasks"),
		now:         time.Now,
	}
}

// timestamp is the clock reading at the precision Postgres stores.
func (s *TaskService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// parseID canonicalizes a task id. ok is false for malformed input.
func parseID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func (s *TaskService) Create(ctx context.Context, userID string, in CreateTaskInput) (*models.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Create")
	defer span.End()

	if err := validateStruct(in); err != nil {
		return nil, err
	}

	now := s.timestamp()
	task := &models.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Description != nil && *task.Description == "" {
		task.Description = nil
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Tasks(tx).Create(ctx, task); err != nil {
			return fmt.Errorf("error creating task: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "create task failed", "user_id", userID, "error", err)
		return nil, translate(err)
	}

	span.SetAttributes(attribute.String("task.id", task.ID))
	s.logger.Debug(ctx, "task created", "user_id", userID, "task_id", task.ID)
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*models.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Get")
	defer span.End()

	id, ok := parseID(taskID)
	if !ok {
		return nil, common.ErrorNotFound
	}

	task, err := s.repomanager.Tasks(s.db).Get(ctx, id, userID)
	if err != nil {
		return nil, translate(err)
	}
	return task, nil
}

// List returns the user's tasks in creation order.
func (s *TaskService) List(ctx context.Context, userID string) ([]*models.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskService.List")
	defer span.End()

	tasks, err := s.repomanager.Tasks(s.db).ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "list tasks failed", "user_id", userID, "error", err)
		return nil, translate(err)
	}
	span.SetAttributes(attribute.Int("tasks.count", len(tasks)))
	return tasks, nil
}

// Update applies a partial update. An empty patch returns the task unchanged.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, in UpdateTaskInput) (*models.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Update")
	defer span.End()

	id, ok := parseID(taskID)
	if !ok {
		return nil, common.ErrorNotFound
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	patch := in.patch()
	if patch.IsEmpty() {
		return s.Get(ctx, userID, id)
	}

	task, err := dbx.WithTxResult(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.Task, error) {
		return s.repomanager.Tasks(tx).Update(ctx, id, userID, patch, s.timestamp())
	})
	if err != nil {
		return nil, translate(err)
	}
	return task, nil
}

// Toggle flips the completion flag.
func (s *TaskService) Toggle(ctx context.Context, userID, taskID string) (*models.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Toggle")
	defer span.End()

	id, ok := parseID(taskID)
	if !ok {
		return nil, common.ErrorNotFound
	}

	task, err := dbx.WithTxResult(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.Task, error) {
		return s.repomanager.Tasks(tx).Toggle(ctx, id, userID, s.timestamp())
	})
	if err != nil {
		return nil, translate(err)
	}
	return task, nil
}

// Delete removes the task and reports whether it existed for this user.
// A malformed id removes nothing.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) (bool, error) {
	ctx, span := tracer.Start(ctx, "TaskService.Delete")
	defer span.End()

	id, ok := parseID(taskID)
	if !ok {
		return false, nil
	}

	deleted, err := dbx.WithTxResult(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (bool, error) {
		return s.repomanager.Tasks(tx).Delete(ctx, id, userID)
	})
	if err != nil {
		s.logger.Error(ctx, "delete task failed", "user_id", userID, "task_id", id, "error", err)
		return false, translate(err)
	}
	if deleted {
		s.logger.Debug(ctx, "task deleted", "user_id", userID, "task_id", id)
	}
	return deleted, nil
}
