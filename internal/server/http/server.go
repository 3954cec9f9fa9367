// Package http is the public REST API of the TaskKeeper server: chi routes,
// bearer-token guard, JSON encoding and error mapping.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

// UserService is what the API needs from the authenticator.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, in services.LoginInput) (*models.User, error)
	IssueToken(user *models.User) (string, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// TaskService is what the API needs from the task store.
type TaskService interface {
	Create(ctx context.Context, userID string, in services.CreateTaskInput) (*models.Task, error)
	Get(ctx context.Context, userID, taskID string) (*models.Task, error)
	List(ctx context.Context, userID string) ([]*models.Task, error)
	Update(ctx context.Context, userID, taskID string, in services.UpdateTaskInput) (*models.Task, error)
	Toggle(ctx context.Context, userID, taskID string) (*models.Task, error)
	Delete(ctx context.Context, userID, taskID string) (bool, error)
}

// Pinger reports datastore reachability. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options holds the transport settings taken from the server config.
type Options struct {
	Address         string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

type Server struct {
	opts   Options
	logger logging.Logger
	users  UserService
	tasks  TaskService
	pinger Pinger
}

func NewServer(opts Options, l logging.Logger, us UserService, ts TaskService, p Pinger) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		opts:   opts,
		logger: l.With("module", "http_server"),
		users:  us,
		tasks:  ts,
		pinger: p,
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is cancelled, then drains in-flight requests
// for at most ShutdownTimeout.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(sctx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}
