// Package tasks provides the PostgreSQL-backed, owner-scoped task store.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// PostgresRepository implements task storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const taskColumns = `id, user_id, title, description, completed, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*models.Task, error) {
	var t models.Task
	if err := s.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// scanOne maps sql.ErrNoRows to common.ErrorNotFound.
func scanOne(row *sql.Row) (*models.Task, error) {
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

// Create inserts a fully populated task. The caller assigns the id and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, user_id, title, description, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.UserID, task.Title, task.Description, task.Completed, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Get returns the task only if userID owns it.
func (r *PostgresRepository) Get(ctx context.Context, taskID, userID string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE id = $1 AND user_id = $2
		`
	return scanOne(r.db.QueryRowContext(ctx, query, taskID, userID))
}

// ListByUser returns all tasks of userID, oldest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1
		ORDER BY created_at, id
		`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	result := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update applies the non-nil fields of patch. An empty description clears it.
func (r *PostgresRepository) Update(ctx context.Context, taskID, userID string, patch models.TaskPatch, updatedAt time.Time) (*models.Task, error) {
	query := `
		UPDATE tasks SET
			title       = CASE WHEN $3::boolean THEN $4::varchar ELSE title END,
			description = CASE WHEN $5::boolean THEN $6::varchar ELSE description END,
			completed   = CASE WHEN $7::boolean THEN $8::boolean ELSE completed END,
			updated_at  = $9
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns

	var (
		title       string
		description *string
		completed   bool
	)
	if patch.Title != nil {
		title = *patch.Title
	}
	if patch.Description != nil && *patch.Description != "" {
		description = patch.Description
	}
	if patch.Completed != nil {
		completed = *patch.Completed
	}

	return scanOne(r.db.QueryRowContext(ctx, query,
		taskID, userID,
		patch.Title != nil, title,
		patch.Description != nil, description,
		patch.Completed != nil, completed,
		updatedAt,
	))
}

// Toggle flips the completion flag.
func (r *PostgresRepository) Toggle(ctx context.Context, taskID, userID string, updatedAt time.Time) (*models.Task, error) {
	query := `
		UPDATE tasks SET completed = NOT completed, updated_at = $3
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns
	return scanOne(r.db.QueryRowContext(ctx, query, taskID, userID, updatedAt))
}

// Delete removes the task and reports whether a row owned by userID existed.
func (r *PostgresRepository) Delete(ctx context.Context, taskID, userID string) (bool, error) {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("unexpected rows affected: %d", n)
	}
}
