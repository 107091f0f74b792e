package message

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"syndicway/internal/adapters/storage"
	domain "syndicway/internal/domain/message"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

const messageColumns = "id, sender_id, receiver_id, subject, content, read_at, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new MessageStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanMessage(scan func(dest ...any) error) (domain.Message, error) {
	var entity domain.Message
	var subject, readAt sql.NullString
	var createdAt string
	err := scan(&entity.ID, &entity.SenderID, &entity.ReceiverID, &subject, &entity.Content, &readAt, &createdAt)
	if err != nil {
		return domain.Message{}, err
	}
	if subject.Valid {
		entity.Subject = subject.String
	}
	if readAt.Valid {
		entity.ReadAt, _ = time.Parse(dateLayout, readAt.String)
	}
	entity.CreatedAt, _ = time.Parse(dateLayout, createdAt)
	return entity, nil
}

// GetByID retrieves a Message by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Message, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+messageColumns+" FROM message WHERE id = ?", id)
	entity, err := scanMessage(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Message{}, fmt.Errorf("message not found: %w", err)
	}
	return entity, err
}

// Save persists a Message to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Message) error {
	var readAt any
	if !entity.ReadAt.IsZero() {
		readAt = entity.ReadAt.Format(dateLayout)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO message (`+messageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   subject=excluded.subject, content=excluded.content, read_at=excluded.read_at`,
		entity.ID, entity.SenderID, entity.ReceiverID, entity.Subject,
		entity.Content, readAt, entity.CreatedAt.Format(dateLayout))
	return err
}

// Delete removes a Message from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM message WHERE id = ?", id)
	return err
}

func (s *SQLiteStore) list(ctx context.Context, where string, limit, offset int, args ...any) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 1000
	}
	query := "SELECT " + messageColumns + " FROM message " + where + " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Message
	for rows.Next() {
		entity, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// ListInbox returns messages received by an account, newest first.
// PRE: receiverID is non-empty
// POST: Returns matching messages
func (s *SQLiteStore) ListInbox(ctx context.Context, receiverID string, limit, offset int) ([]domain.Message, error) {
	return s.list(ctx, "WHERE receiver_id = ? ORDER BY created_at DESC", limit, offset, receiverID)
}

// ListSent returns messages sent by an account, newest first.
// PRE: senderID is non-empty
// POST: Returns matching messages
func (s *SQLiteStore) ListSent(ctx context.Context, senderID string, limit, offset int) ([]domain.Message, error) {
	return s.list(ctx, "WHERE sender_id = ? ORDER BY created_at DESC", limit, offset, senderID)
}

// ListThread returns the full exchange between two accounts, oldest first.
// PRE: both account IDs are non-empty
// POST: Returns messages in either direction
func (s *SQLiteStore) ListThread(ctx context.Context, accountA, accountB string) ([]domain.Message, error) {
	return s.list(ctx,
		`WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		 ORDER BY created_at ASC`,
		0, 0, accountA, accountB, accountB, accountA)
}

// UnreadCount returns the number of unread messages for an account.
// PRE: receiverID is non-empty
// POST: Returns count >= 0
func (s *SQLiteStore) UnreadCount(ctx context.Context, receiverID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM message WHERE receiver_id = ? AND read_at IS NULL",
		receiverID).Scan(&count)
	return count, err
}
