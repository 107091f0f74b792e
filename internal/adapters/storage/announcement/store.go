package announcement

import (
	"context"
	"time"

	domain "syndicway/internal/domain/announcement"
)

// Store persists Announcement state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Announcement, error)

	// Create atomically inserts the announcement and one recipient row per
	// resident. No partial fan-out survives a failure.
	Create(ctx context.Context, a domain.Announcement, recipients []domain.Recipient) error

	// Delete atomically removes the announcement and all its recipient rows.
	Delete(ctx context.Context, id string) error

	// ListByPoster returns a poster's announcements with recipient stats,
	// newest first.
	ListByPoster(ctx context.Context, posterID string, limit, offset int) ([]WithStats, error)

	// ListForRecipient returns the announcements addressed to one resident,
	// newest first.
	ListForRecipient(ctx context.Context, residentID string, limit, offset int) ([]ForRecipient, error)

	// MarkRead records when a resident read an announcement (idempotent).
	MarkRead(ctx context.Context, announcementID, residentID string, at time.Time) error

	UnreadCount(ctx context.Context, residentID string) (int, error)
}

// WithStats is an announcement plus its fan-out counters, for the poster view.
type WithStats struct {
	domain.Announcement
	RecipientCount int
	ReadCount      int
}

// ForRecipient is one resident's copy of an announcement.
type ForRecipient struct {
	domain.Announcement
	ReadAt time.Time
}
