package announcement

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"syndicway/internal/adapters/storage"
	domain "syndicway/internal/domain/announcement"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

const announcementColumns = "id, poster_id, title, content, priority, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AnnouncementStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanAnnouncement(scan func(dest ...any) error) (domain.Announcement, error) {
	var entity domain.Announcement
	var createdAt string
	err := scan(&entity.ID, &entity.PosterID, &entity.Title, &entity.Content, &entity.Priority, &createdAt)
	if err != nil {
		return domain.Announcement{}, err
	}
	entity.CreatedAt, _ = time.Parse(dateLayout, createdAt)
	return entity, nil
}

// GetByID retrieves an Announcement by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Announcement, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+announcementColumns+" FROM announcement WHERE id = ?", id)
	entity, err := scanAnnouncement(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Announcement{}, fmt.Errorf("announcement not found: %w", err)
	}
	return entity, err
}

// Create atomically inserts the announcement and its recipient rows.
// PRE: a has been validated, recipients is non-empty
// POST: Group row and all fan-out rows committed, or none
func (s *SQLiteStore) Create(ctx context.Context, a domain.Announcement, recipients []domain.Recipient) error {
	if len(recipients) == 0 {
		return domain.ErrNoRecipients
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO announcement (`+announcementColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.PosterID, a.Title, a.Content, a.Priority, a.CreatedAt.Format(dateLayout))
	if err != nil {
		return err
	}

	for _, r := range recipients {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO announcement_recipient (id, announcement_id, recipient_id, read_at)
			 VALUES (?, ?, ?, NULL)`,
			r.ID, a.ID, r.RecipientID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete atomically removes the announcement and its recipient rows.
// PRE: id is non-empty
// POST: Group row and fan-out rows removed, or nothing
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM announcement_recipient WHERE announcement_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM announcement WHERE id = ?", id); err != nil {
		return err
	}

	return tx.Commit()
}

// ListByPoster returns a poster's announcements with read counters.
// PRE: posterID is non-empty
// POST: Returns announcements newest first
func (s *SQLiteStore) ListByPoster(ctx context.Context, posterID string, limit, offset int) ([]WithStats, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.poster_id, a.title, a.content, a.priority, a.created_at,
		        COUNT(r.id), COUNT(r.read_at)
		 FROM announcement a
		 LEFT JOIN announcement_recipient r ON r.announcement_id = a.id
		 WHERE a.poster_id = ?
		 GROUP BY a.id
		 ORDER BY a.created_at DESC
		 LIMIT ? OFFSET ?`,
		posterID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []WithStats
	for rows.Next() {
		var ws WithStats
		var createdAt string
		err := rows.Scan(&ws.ID, &ws.PosterID, &ws.Title, &ws.Content, &ws.Priority, &createdAt,
			&ws.RecipientCount, &ws.ReadCount)
		if err != nil {
			return nil, err
		}
		ws.CreatedAt, _ = time.Parse(dateLayout, createdAt)
		results = append(results, ws)
	}
	return results, rows.Err()
}

// ListForRecipient returns announcements addressed to one resident.
// PRE: residentID is non-empty
// POST: Returns announcements newest first with per-resident read markers
func (s *SQLiteStore) ListForRecipient(ctx context.Context, residentID string, limit, offset int) ([]ForRecipient, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.poster_id, a.title, a.content, a.priority, a.created_at, r.read_at
		 FROM announcement a
		 JOIN announcement_recipient r ON r.announcement_id = a.id
		 WHERE r.recipient_id = ?
		 ORDER BY a.created_at DESC
		 LIMIT ? OFFSET ?`,
		residentID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ForRecipient
	for rows.Next() {
		var fr ForRecipient
		var createdAt string
		var readAt sql.NullString
		err := rows.Scan(&fr.ID, &fr.PosterID, &fr.Title, &fr.Content, &fr.Priority, &createdAt, &readAt)
		if err != nil {
			return nil, err
		}
		fr.CreatedAt, _ = time.Parse(dateLayout, createdAt)
		if readAt.Valid {
			fr.ReadAt, _ = time.Parse(dateLayout, readAt.String)
		}
		results = append(results, fr)
	}
	return results, rows.Err()
}

// MarkRead records when a resident read an announcement.
// PRE: IDs are non-empty
// POST: read_at set once; repeated calls keep the first timestamp
func (s *SQLiteStore) MarkRead(ctx context.Context, announcementID, residentID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE announcement_recipient SET read_at = ?
		 WHERE announcement_id = ? AND recipient_id = ? AND read_at IS NULL`,
		at.Format(dateLayout), announcementID, residentID)
	return err
}

// UnreadCount returns the number of unread announcements for a resident.
// PRE: residentID is non-empty
// POST: Returns count >= 0
func (s *SQLiteStore) UnreadCount(ctx context.Context, residentID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM announcement_recipient WHERE recipient_id = ? AND read_at IS NULL",
		residentID).Scan(&count)
	return count, err
}
