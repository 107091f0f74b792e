package notification

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"syndicway/internal/adapters/storage"
	domain "syndicway/internal/domain/notification"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

const notificationColumns = "id, sender_id, receiver_id, kind, reference_id, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new NotificationStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanNotification(scan func(dest ...any) error) (domain.Notification, error) {
	var entity domain.Notification
	var createdAt string
	err := scan(&entity.ID, &entity.SenderID, &entity.ReceiverID, &entity.Kind, &entity.ReferenceID, &createdAt)
	if err != nil {
		return domain.Notification{}, err
	}
	entity.CreatedAt, _ = time.Parse(dateLayout, createdAt)
	return entity, nil
}

// GetByID retrieves a Notification by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Notification, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+notificationColumns+" FROM notification WHERE id = ?", id)
	entity, err := scanNotification(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Notification{}, fmt.Errorf("notification not found: %w", err)
	}
	return entity, err
}

// Save persists a Notification to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Notification) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notification (`+notificationColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   kind=excluded.kind, reference_id=excluded.reference_id`,
		entity.ID, entity.SenderID, entity.ReceiverID, entity.Kind,
		entity.ReferenceID, entity.CreatedAt.Format(dateLayout))
	return err
}

// Delete removes a Notification from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM notification WHERE id = ?", id)
	return err
}

// ListForReceiver returns notifications for an account, newest first.
// PRE: receiverID is non-empty
// POST: Returns matching notifications
func (s *SQLiteStore) ListForReceiver(ctx context.Context, receiverID string, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+notificationColumns+" FROM notification WHERE receiver_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?",
		receiverID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Notification
	for rows.Next() {
		entity, err := scanNotification(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the number of notifications for an account.
// PRE: receiverID is non-empty
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context, receiverID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notification WHERE receiver_id = ?", receiverID).Scan(&count)
	return count, err
}
