package tasks

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Repository persists tasks. Every read and write is scoped to the owning user;
// a task owned by someone else is indistinguishable from a missing one.
type Repository interface {
	Create(ctx context.Context, task *models.Task) error
	Get(ctx context.Context, taskID, userID string) (*models.Task, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Task, error)
	Update(ctx context.Context, taskID, userID string, patch models.TaskPatch, updatedAt time.Time) (*models.Task, error)
	Toggle(ctx context.Context, taskID, userID string, updatedAt time.Time) (*models.Task, error)
	Delete(ctx context.Context, taskID, userID string) (bool, error)
}
