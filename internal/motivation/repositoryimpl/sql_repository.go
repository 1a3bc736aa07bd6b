package repositoryimpl

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/oklog/ulid/v2"

	"github.com/sortbox/backend/internal/motivation"
)

type SQLRepository struct {
	db sqlx.ExtContext
}

func NewSQLRepository(db sqlx.ExtContext) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Ensure(ctx context.Context, m *motivation.Message) error {
	if m.ID == "" {
		m.ID = ulid.Make().String()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO motivation_messages (id, kind, text) VALUES (?, ?, ?) ON CONFLICT(kind, text) DO NOTHING",
		m.ID, m.Kind, m.Text)
	if err != nil {
		return fmt.Errorf("failed to insert motivation message: %w", err)
	}
	return nil
}

func (r *SQLRepository) ListByKind(ctx context.Context, kind motivation.Kind) ([]*motivation.Message, error) {
	var msgs []*motivation.Message
	err := sqlx.SelectContext(ctx, r.db, &msgs,
		"SELECT id, kind, text FROM motivation_messages WHERE kind = ? ORDER BY id", kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list motivation messages: %w", err)
	}
	return msgs, nil
}
