package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	tasksrepo "github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	usersrepo "github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

// newTxDB returns a real database that only serves as a transaction engine
// for services whose repositories are faked.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.BcryptCost = bcrypt.MinCost
	cfg.AccessTokenValidityDuration = time.Hour
	return cfg
}

// memStore is an in-memory implementation of both repositories.
type memStore struct {
	mu    sync.Mutex
	users map[string]*models.User
	tasks map[string]*models.Task

	// forced failures
	usersErr error
	tasksErr error
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*models.User{}, tasks: map[string]*models.Task{}}
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.usersErr != nil {
		return nil, r.s.usersErr
	}
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	now := time.Now().UTC()
	cp := *u
	cp.ID = uuid.NewString()
	cp.CreatedAt, cp.UpdatedAt = now, now
	r.s.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.usersErr != nil {
		return nil, r.s.usersErr
	}
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.usersErr != nil {
		return nil, r.s.usersErr
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

type memTasks struct{ s *memStore }

func (r memTasks) owned(taskID, userID string) (*models.Task, error) {
	t, ok := r.s.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (r memTasks) Create(_ context.Context, t *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.tasksErr != nil {
		return r.s.tasksErr
	}
	cp := *t
	r.s.tasks[t.ID] = &cp
	return nil
}

func (r memTasks) Get(_ context.Context, taskID, userID string) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.tasksErr != nil {
		return nil, r.s.tasksErr
	}
	t, err := r.owned(taskID, userID)
	if err != nil {
		return nil, err
	}
	cp := *t
	return &cp, nil
}

func (r memTasks) ListByUser(_ context.Context, userID string) ([]*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.tasksErr != nil {
		return nil, r.s.tasksErr
	}
	out := []*models.Task{}
	for _, t := range r.s.tasks {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memTasks) Update(_ context.Context, taskID, userID string, p models.TaskPatch, updatedAt time.Time) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.tasksErr != nil {
		return nil, r.s.tasksErr
	}
	t, err := r.owned(taskID, userID)
	if err != nil {
		return nil, err
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		if *p.Description == "" {
			t.Description = nil
		} else {
			d := *p.Description
			t.Description = &d
		}
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	t.UpdatedAt = updatedAt
	cp := *t
	return &cp, nil
}

func (r memTasks) Toggle(_ context.Context, taskID, userID string, updatedAt time.Time) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.tasksErr != nil {
		return nil, r.s.tasksErr
	}
	t, err := r.owned(taskID, userID)
	if err != nil {
		return nil, err
	}
	t.Completed = !t.Completed
	t.UpdatedAt = updatedAt
	cp := *t
	return &cp, nil
}

func (r memTasks) Delete(_ context.Context, taskID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.tasksErr != nil {
		return false, r.s.tasksErr
	}
	if _, err := r.owned(taskID, userID); err != nil {
		return false, nil
	}
	delete(r.s.tasks, taskID)
	return true, nil
}

type fakeRepoManager struct {
	store *memStore
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository         { return memUsers{m.store} }
func (m *fakeRepoManager) Tasks(dbx.DBTX) tasksrepo.Repository         { return memTasks{m.store} }

func newUserService(t *testing.T, db *sql.DB, store *memStore) *UserService {
	t.Helper()
	return NewUserService(db, &fakeRepoManager{store: store}, testConfig(), logging.Nop{})
}

func newTaskService(t *testing.T, db *sql.DB, store *memStore) *TaskService {
	t.Helper()
	return NewTaskService(db, &fakeRepoManager{store: store}, logging.Nop{})
}

// stepClock returns a clock advancing by one second per reading.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Second)
		return cur
	}
}

func nopLogger() logging.Logger { return logging.Nop{} }
