package notifications

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("notification not found")

// Repository persists per-user notification feeds. MarkAllRead must be a
// single batched write: after a successful call no partially-flipped state is
// observable.
type Repository interface {
	Create(ctx context.Context, n *Notification) (string, error)
	ListByUser(ctx context.Context, uid string) ([]*Notification, error)
	MarkRead(ctx context.Context, uid, id string) error
	MarkAllRead(ctx context.Context, uid string) (int64, error)
}
