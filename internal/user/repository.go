package user

import "context"

type Repository interface {
	// GetByExternalID returns the user with the given external
	// identifier, or storage.ErrNotFound.
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
	// Upsert inserts the user if no row with its external identifier
	// exists yet and returns the stored row either way. Safe to run
	// concurrently for the same external identifier.
	Upsert(ctx context.Context, u *User) (*User, error)
}
