package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/client/session"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
)

type fakeClient struct {
	token string
	err   error

	tasks []*models.Task
	user  *models.User

	loginEmail    string
	loginPassword []byte
	registerName  *string
	created       *models.NewTask
	patchedID     string
	patch         *models.TaskPatch
	deleted       []string
	calls         []string
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) SetToken(token string) { f.token = token }

func (f *fakeClient) Health(context.Context) error {
	f.calls = append(f.calls, "health")
	return f.err
}

func (f *fakeClient) Register(_ context.Context, email string, name *string, password []byte) (*models.Token, error) {
	f.calls = append(f.calls, "register")
	f.loginEmail, f.loginPassword, f.registerName = email, password, name
	if f.err != nil {
		return nil, f.err
	}
	return &models.Token{AccessToken: "tok-" + email, TokenType: "bearer"}, nil
}

func (f *fakeClient) Login(_ context.Context, email string, password []byte) (*models.Token, error) {
	f.calls = append(f.calls, "login")
	f.loginEmail, f.loginPassword = email, password
	if f.err != nil {
		return nil, f.err
	}
	return &models.Token{AccessToken: "tok-" + email, TokenType: "bearer"}, nil
}

func (f *fakeClient) Me(context.Context) (*models.User, error) {
	f.calls = append(f.calls, "me")
	return f.user, f.err
}

func (f *fakeClient) ListTasks(context.Context) ([]*models.Task, error) {
	f.calls = append(f.calls, "list")
	return f.tasks, f.err
}

func (f *fakeClient) CreateTask(_ context.Context, in models.NewTask) (*models.Task, error) {
	f.calls = append(f.calls, "create")
	f.created = &in
	if f.err != nil {
		return nil, f.err
	}
	return &models.Task{ID: "new-id", Title: in.Title, Description: in.Description, Completed: in.Completed}, nil
}

func (f *fakeClient) find(id string) (*models.Task, error) {
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Detail: "Task not found"}
}

func (f *fakeClient) GetTask(_ context.Context, id string) (*models.Task, error) {
	f.calls = append(f.calls, "get")
	if f.err != nil {
		return nil, f.err
	}
	return f.find(id)
}

func (f *fakeClient) UpdateTask(_ context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	f.calls = append(f.calls, "update")
	f.patchedID, f.patch = id, &patch
	if f.err != nil {
		return nil, f.err
	}
	t, err := f.find(id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	return t, nil
}

func (f *fakeClient) ToggleTask(_ context.Context, id string) (*models.Task, error) {
	f.calls = append(f.calls, "toggle")
	if f.err != nil {
		return nil, f.err
	}
	t, err := f.find(id)
	if err != nil {
		return nil, err
	}
	t.Completed = !t.Completed
	return t, nil
}

func (f *fakeClient) DeleteTask(_ context.Context, id string) error {
	f.calls = append(f.calls, "delete")
	if f.err != nil {
		return f.err
	}
	if _, err := f.find(id); err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type memStore struct {
	token   string
	loadErr error
	saveErr error
}

var _ session.Store = (*memStore)(nil)

func (m *memStore) Load() (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	if m.token == "" {
		return "", session.ErrNoToken
	}
	return m.token, nil
}

func (m *memStore) Save(token string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = token
	return nil
}

func (m *memStore) Clear() error {
	m.token = ""
	return nil
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = old })
}

// newTestApp builds an App over fakes. A non-empty token starts it logged in.
func newTestApp(t *testing.T, token, input string) (*App, *fakeClient, *memStore, *bytes.Buffer) {
	t.Helper()
	fc := &fakeClient{}
	st := &memStore{token: token}
	var out bytes.Buffer
	a := newApp(fc, st, logging.Nop{}, strings.NewReader(input), &out)
	a.restore(context.Background())
	return a, fc, st, &out
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func sampleTasks() []*models.Task {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []*models.Task{
		{ID: "t1", Title: "milk", Completed: false, CreatedAt: at, UpdatedAt: at},
		{ID: "t2", Title: "eggs", Description: strPtr("a dozen"), Completed: true, CreatedAt: at, UpdatedAt: at},
	}
}
