package repositoryimpl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/oklog/ulid/v2"

	"github.com/sortbox/backend/internal/task"
	"github.com/sortbox/backend/pkg/storage"
)

const taskColumns = "id, user_id, project_id, text, status, is_key, is_golden, responsible, due_datetime, created_at, sorted_at, completed_at"

type SQLRepository struct {
	db sqlx.ExtContext
}

func NewSQLRepository(db sqlx.ExtContext) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, t *task.Task) error {
	if t.ID == "" {
		t.ID = ulid.Make().String()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.UserID, t.ProjectID, t.Text, t.Status, t.IsKey, t.IsGolden,
		t.Responsible, nullableUTC(t.DueDatetime), t.CreatedAt.UTC(),
		nullableUTC(t.SortedAt), nullableUTC(t.CompletedAt))
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, id, userID string) (*task.Task, error) {
	var t task.Task
	err := sqlx.GetContext(ctx, r.db, &t,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ? AND user_id = ?", id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

func (r *SQLRepository) List(ctx context.Context, userID string, status *task.Status) ([]*task.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE user_id = ?"
	args := []any{userID}
	if status != nil {
		query += " AND status = ?"
		args = append(args, *status)
	}
	query += " ORDER BY created_at DESC, id DESC"

	var tasks []*task.Task
	if err := sqlx.SelectContext(ctx, r.db, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (r *SQLRepository) Update(ctx context.Context, t *task.Task) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET project_id = ?, text = ?, status = ?, is_key = ?, is_golden = ?,
			responsible = ?, due_datetime = ?, sorted_at = ?, completed_at = ?
		WHERE id = ? AND user_id = ?`,
		t.ProjectID, t.Text, t.Status, t.IsKey, t.IsGolden,
		t.Responsible, nullableUTC(t.DueDatetime), nullableUTC(t.SortedAt), nullableUTC(t.CompletedAt),
		t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *SQLRepository) AddCollaborators(ctx context.Context, taskID string, externalIDs []string) error {
	for _, externalID := range externalIDs {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO task_collaborators (id, task_id, collaborator_external_id) VALUES (?, ?, ?)",
			ulid.Make().String(), taskID, externalID)
		if err != nil {
			return fmt.Errorf("failed to insert collaborator: %w", err)
		}
	}
	return nil
}

func (r *SQLRepository) ListCollaborators(ctx context.Context, taskID string) ([]string, error) {
	var ids []string
	err := sqlx.SelectContext(ctx, r.db, &ids,
		"SELECT collaborator_external_id FROM task_collaborators WHERE task_id = ? ORDER BY id", taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborators: %w", err)
	}
	return ids, nil
}

func (r *SQLRepository) CountCompletedSince(ctx context.Context, userID string, since time.Time) (int, int, error) {
	var row struct {
		Total int `db:"total"`
		Key   int `db:"key_total"`
	}
	err := sqlx.GetContext(ctx, r.db, &row,
		`SELECT COUNT(*) AS total, COALESCE(SUM(is_key), 0) AS key_total
		FROM tasks
		WHERE user_id = ? AND status = ? AND completed_at IS NOT NULL AND completed_at >= ?`,
		userID, task.StatusDone, since.UTC())
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count completed tasks: %w", err)
	}
	return row.Total, row.Key, nil
}

func (r *SQLRepository) CountDone(ctx context.Context, userID string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n,
		"SELECT COUNT(*) FROM tasks WHERE user_id = ? AND status = ?", userID, task.StatusDone)
	if err != nil {
		return 0, fmt.Errorf("failed to count done tasks: %w", err)
	}
	return n, nil
}

func nullableUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
