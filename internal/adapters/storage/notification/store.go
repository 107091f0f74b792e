package notification

import (
	"context"

	domain "syndicway/internal/domain/notification"
)

// Store persists Notification state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Notification, error)
	Save(ctx context.Context, value domain.Notification) error
	Delete(ctx context.Context, id string) error

	// ListForReceiver returns notifications for an account, newest first.
	ListForReceiver(ctx context.Context, receiverID string, limit, offset int) ([]domain.Notification, error)

	Count(ctx context.Context, receiverID string) (int, error)
}
