package motivation

import "context"

type Repository interface {
	// Ensure inserts the (kind, text) pair unless an identical row
	// already exists.
	Ensure(ctx context.Context, m *Message) error
	ListByKind(ctx context.Context, kind Kind) ([]*Message, error)
}
