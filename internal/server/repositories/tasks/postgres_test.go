package tasks

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var taskCols = []string{"id", "user_id", "title", "description", "completed", "created_at", "updated_at"}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

var (
	t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Minute)
)

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)INSERT INTO tasks \(id, user_id, title, description, completed, created_at, updated_at\).*VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7\)`).
		WithArgs("t1", "u1", "Buy milk", nil, false, t0, t0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Task{
		ID: "t1", UserID: "u1", Title: "Buy milk", CreatedAt: t0, UpdatedAt: t0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO tasks`).WillReturnError(errors.New("exec fail"))

	err := repo.Create(context.Background(), &models.Task{ID: "t1", UserID: "u1", Title: "x"})
	if err == nil || !regexp.MustCompile(`db error: .*exec fail`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGet_ScopedToOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(taskCols).AddRow("t1", "u1", "Buy milk", "2 liters", false, t0, t0)
	mock.ExpectQuery(`(?s)SELECT .* FROM tasks\s+WHERE id = \$1 AND user_id = \$2`).
		WithArgs("t1", "u1").
		WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "t1", "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Buy milk" || got.Description == nil || *got.Description != "2 liters" {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM tasks`).
		WithArgs("t1", "intruder").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "t1", "intruder")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestListByUser_OrderedRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(taskCols).
		AddRow("t1", "u1", "first", nil, false, t0, t0).
		AddRow("t2", "u1", "second", nil, true, t1, t1)
	mock.ExpectQuery(`(?s)FROM tasks\s+WHERE user_id = \$1\s+ORDER BY created_at, id`).
		WithArgs("u1").
		WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "t1" || got[1].ID != "t2" || !got[1].Completed {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestListByUser_EmptyIsNotNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM tasks`).WithArgs("u1").WillReturnRows(sqlmock.NewRows(taskCols))

	got, err := repo.ListByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

func TestListByUser_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM tasks`).WillReturnError(errors.New("boom"))

	_, err := repo.ListByUser(context.Background(), "u1")
	if err == nil || !regexp.MustCompile(`failed to select tasks: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestListByUser_RowError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(taskCols).
		AddRow("t1", "u1", "first", nil, false, t0, t0).
		RowError(0, errors.New("row broke"))
	mock.ExpectQuery(`FROM tasks`).WillReturnRows(rows)

	if _, err := repo.ListByUser(context.Background(), "u1"); err == nil {
		t.Fatal("expected row error")
	}
}

func TestUpdate_PartialPatch(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(taskCols).AddRow("t1", "u1", "Buy oat milk", "2 liters", false, t0, t1)
	mock.ExpectQuery(`(?s)UPDATE tasks SET.*WHERE id = \$1 AND user_id = \$2\s+RETURNING`).
		WithArgs("t1", "u1", true, "Buy oat milk", false, nil, false, false, t1).
		WillReturnRows(rows)

	got, err := repo.Update(context.Background(), "t1", "u1", models.TaskPatch{Title: strPtr("Buy oat milk")}, t1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Buy oat milk" || !got.UpdatedAt.Equal(t1) {
		t.Fatalf("unexpected task: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdate_EmptyDescriptionClears(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(taskCols).AddRow("t1", "u1", "x", nil, true, t0, t1)
	mock.ExpectQuery(`UPDATE tasks SET`).
		WithArgs("t1", "u1", false, "", true, nil, true, true, t1).
		WillReturnRows(rows)

	got, err := repo.Update(context.Background(), "t1", "u1",
		models.TaskPatch{Description: strPtr(""), Completed: boolPtr(true)}, t1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Description != nil || !got.Completed {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE tasks SET`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), "t1", "u2", models.TaskPatch{Title: strPtr("x")}, t1)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestToggle(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(taskCols).AddRow("t1", "u1", "x", nil, true, t0, t1)
	mock.ExpectQuery(`(?s)UPDATE tasks SET completed = NOT completed, updated_at = \$3\s+WHERE id = \$1 AND user_id = \$2`).
		WithArgs("t1", "u1", t1).
		WillReturnRows(rows)

	got, err := repo.Toggle(context.Background(), "t1", "u1", t1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Completed {
		t.Fatalf("expected completed task: %+v", got)
	}
}

func TestToggle_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE tasks SET completed`).WillReturnError(errors.New("db err"))

	_, err := repo.Toggle(context.Background(), "t1", "u1", t1)
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
		wantErr  bool
	}{
		{name: "deleted", affected: 1, want: true},
		{name: "missing", affected: 0, want: false},
		{name: "unexpected", affected: 2, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1 AND user_id = \$2`).
				WithArgs("t1", "u1").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			got, err := repo.Delete(context.Background(), "t1", "u1")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDelete_RowsAffectedError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM tasks`).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("ra fail")))

	_, err := repo.Delete(context.Background(), "t1", "u1")
	if err == nil || !regexp.MustCompile(`rows affected error: .*ra fail`).MatchString(err.Error()) {
		t.Fatalf("expected rows affected error, got %v", err)
	}
}
