package client

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
)

type Client interface {
	SetToken(token string)
	Health(ctx context.Context) error
	Register(ctx context.Context, email string, name *string, password []byte) (*models.Token, error)
	Login(ctx context.Context, email string, password []byte) (*models.Token, error)
	Me(ctx context.Context) (*models.User, error)
	ListTasks(ctx context.Context) ([]*models.Task, error)
	CreateTask(ctx context.Context, in models.NewTask) (*models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)
	ToggleTask(ctx context.Context, id string) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}
