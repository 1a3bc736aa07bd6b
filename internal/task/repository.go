package task

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, t *Task) error
	// Get returns the task only when it exists and belongs to userID;
	// both misses surface as storage.ErrNotFound.
	Get(ctx context.Context, id, userID string) (*Task, error)
	// List returns userID's tasks newest-created first, optionally
	// filtered by exact status.
	List(ctx context.Context, userID string, status *Status) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	AddCollaborators(ctx context.Context, taskID string, externalIDs []string) error
	ListCollaborators(ctx context.Context, taskID string) ([]string, error)
	// CountCompletedSince counts done tasks with a completion stamp at
	// or after since, total and key-only.
	CountCompletedSince(ctx context.Context, userID string, since time.Time) (total, key int, err error)
	// CountDone counts all tasks ever marked done for userID.
	CountDone(ctx context.Context, userID string) (int, error)
}
