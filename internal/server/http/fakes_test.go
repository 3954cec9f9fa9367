package http

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

type fakeUsers struct {
	mu        sync.Mutex
	byEmail   map[string]*models.User
	passwords map[string]string
	tokens    map[string]*models.User

	authErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byEmail:   map[string]*models.User{},
		passwords: map[string]string{},
		tokens:    map[string]*models.User{},
	}
}

func (f *fakeUsers) Register(_ context.Context, in services.RegisterInput) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email is required", common.ErrorValidation)
	}
	if _, ok := f.byEmail[in.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	now := time.Now().UTC()
	u := &models.User{ID: uuid.NewString(), Email: in.Email, Name: in.Name, CreatedAt: now, UpdatedAt: now, PasswordHash: "secret-hash"}
	f.byEmail[in.Email] = u
	f.passwords[in.Email] = in.Password
	return u, nil
}

func (f *fakeUsers) Login(_ context.Context, in services.LoginInput) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[in.Email]
	if !ok || f.passwords[in.Email] != in.Password {
		return nil, common.ErrorUnauthorized
	}
	return u, nil
}

func (f *fakeUsers) IssueToken(u *models.User) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok := "tok-" + uuid.NewString()
	f.tokens[tok] = u
	return tok, nil
}

func (f *fakeUsers) Authenticate(_ context.Context, token string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.authErr != nil {
		return nil, f.authErr
	}
	u, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	return u, nil
}

type fakeTasks struct {
	mu    sync.Mutex
	tasks map[string]*models.Task
	seq   int

	err error
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{tasks: map[string]*models.Task{}}
}

func (f *fakeTasks) owned(userID, taskID string) (*models.Task, error) {
	if _, err := uuid.Parse(taskID); err != nil {
		return nil, common.ErrorNotFound
	}
	t, ok := f.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (f *fakeTasks) Create(_ context.Context, userID string, in services.CreateTaskInput) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	f.seq++
	now := time.Date(2026, 1, 1, 0, 0, f.seq, 0, time.UTC)
	t := &models.Task{ID: uuid.NewString(), UserID: userID, Title: in.Title, Description: in.Description, Completed: in.Completed, CreatedAt: now, UpdatedAt: now}
	f.tasks[t.ID] = t
	cp := *t
	return &cp, nil
}

func (f *fakeTasks) Get(_ context.Context, userID, taskID string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.owned(userID, taskID)
	if err != nil {
		return nil, err
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTasks) List(_ context.Context, userID string) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []*models.Task{}
	for _, t := range f.tasks {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeTasks) Update(_ context.Context, userID, taskID string, in services.UpdateTaskInput) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.owned(userID, taskID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		if *in.Description == "" {
			t.Description = nil
		} else {
			d := *in.Description
			t.Description = &d
		}
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	t.UpdatedAt = t.UpdatedAt.Add(time.Second)
	cp := *t
	return &cp, nil
}

func (f *fakeTasks) Toggle(_ context.Context, userID, taskID string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.owned(userID, taskID)
	if err != nil {
		return nil, err
	}
	t.Completed = !t.Completed
	cp := *t
	return &cp, nil
}

func (f *fakeTasks) Delete(_ context.Context, userID, taskID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.owned(userID, taskID); err != nil {
		return false, nil
	}
	delete(f.tasks, taskID)
	return true, nil
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }
