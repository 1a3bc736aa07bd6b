package repositoryimpl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/oklog/ulid/v2"

	"github.com/sortbox/backend/internal/user"
	"github.com/sortbox/backend/pkg/storage"
)

type SQLRepository struct {
	db sqlx.ExtContext
}

// NewSQLRepository binds the repository to db, which may be the shared
// connection or an open transaction.
func NewSQLRepository(db sqlx.ExtContext) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) GetByExternalID(ctx context.Context, externalID string) (*user.User, error) {
	var u user.User
	err := sqlx.GetContext(ctx, r.db, &u,
		"SELECT id, external_id, name, golden_hours FROM users WHERE external_id = ?", externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by external id: %w", err)
	}
	return &u, nil
}

func (r *SQLRepository) Upsert(ctx context.Context, u *user.User) (*user.User, error) {
	if u.ID == "" {
		u.ID = ulid.Make().String()
	}
	// ON CONFLICT DO NOTHING keeps the first writer's row when two
	// first-contact requests race on the same external identifier.
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (id, external_id, name, golden_hours) VALUES (?, ?, ?, ?) ON CONFLICT(external_id) DO NOTHING",
		u.ID, u.ExternalID, u.Name, u.GoldenHours)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return r.GetByExternalID(ctx, u.ExternalID)
}
