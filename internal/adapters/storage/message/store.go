package message

import (
	"context"

	domain "syndicway/internal/domain/message"
)

// Store persists Message state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Message, error)
	Save(ctx context.Context, value domain.Message) error
	Delete(ctx context.Context, id string) error

	// ListInbox returns messages received by an account, newest first.
	ListInbox(ctx context.Context, receiverID string, limit, offset int) ([]domain.Message, error)

	// ListSent returns messages sent by an account, newest first.
	ListSent(ctx context.Context, senderID string, limit, offset int) ([]domain.Message, error)

	// ListThread returns the full exchange between two accounts, oldest first.
	ListThread(ctx context.Context, accountA, accountB string) ([]domain.Message, error)

	UnreadCount(ctx context.Context, receiverID string) (int, error)
}
