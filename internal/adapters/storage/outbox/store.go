package outbox

import (
	"context"

	domain "syndicway/internal/domain/outbox"
)

// Store persists outbox entries for durable email delivery.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns entries awaiting delivery (pending or retrying),
	// oldest first.
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)

	// ListFailed returns entries that exhausted their retries, most
	// recently attempted first.
	ListFailed(ctx context.Context, limit int) ([]domain.Entry, error)

	// Delete removes an entry; intended for terminal entries only.
	Delete(ctx context.Context, id string) error
}
