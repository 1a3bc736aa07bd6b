package repositoryimpl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/oklog/ulid/v2"

	"github.com/sortbox/backend/internal/project"
	"github.com/sortbox/backend/pkg/storage"
)

type SQLRepository struct {
	db sqlx.ExtContext
}

func NewSQLRepository(db sqlx.ExtContext) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, p *project.Project) error {
	if p.ID == "" {
		p.ID = ulid.Make().String()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO projects (id, user_id, title, outcome, steps, first_step) VALUES (?, ?, ?, ?, ?, ?)",
		p.ID, p.UserID, p.Title, p.Outcome, p.Steps, p.FirstStep)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, id, userID string) (*project.Project, error) {
	var p project.Project
	err := sqlx.GetContext(ctx, r.db, &p,
		"SELECT id, user_id, title, outcome, steps, first_step FROM projects WHERE id = ? AND user_id = ?",
		id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}
