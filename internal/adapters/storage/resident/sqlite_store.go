package resident

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"syndicway/internal/adapters/storage"
	domainAccount "syndicway/internal/domain/account"
	domainNotification "syndicway/internal/domain/notification"
	domain "syndicway/internal/domain/resident"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

const residentColumns = "id, account_id, residence_id, apartment_id, name, email, phone, status, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ResidentStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanResident(scan func(dest ...any) error) (domain.Resident, error) {
	var entity domain.Resident
	var apartmentID sql.NullString
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.AccountID,
		&entity.ResidenceID,
		&apartmentID,
		&entity.Name,
		&entity.Email,
		&entity.Phone,
		&entity.Status,
		&createdAt,
	)
	if err != nil {
		return domain.Resident{}, err
	}
	if apartmentID.Valid {
		entity.ApartmentID = apartmentID.String
	}
	entity.CreatedAt = parseTime(createdAt)
	return entity, nil
}

// GetByID retrieves a Resident by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Resident, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+residentColumns+" FROM resident WHERE id = ?", id)
	entity, err := scanResident(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Resident{}, fmt.Errorf("resident not found: %w", err)
	}
	return entity, err
}

// GetByEmail retrieves a Resident by email.
// PRE: email is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Resident, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+residentColumns+" FROM resident WHERE email = ?", email)
	entity, err := scanResident(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Resident{}, fmt.Errorf("resident not found: %w", err)
	}
	return entity, err
}

// GetByAccountID retrieves a Resident by the linked account.
// PRE: accountID is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByAccountID(ctx context.Context, accountID string) (domain.Resident, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+residentColumns+" FROM resident WHERE account_id = ?", accountID)
	entity, err := scanResident(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Resident{}, fmt.Errorf("resident not found: %w", err)
	}
	return entity, err
}

// Save persists a Resident to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Resident) error {
	var apartmentID any
	if entity.ApartmentID != "" {
		apartmentID = entity.ApartmentID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resident (`+residentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   account_id=excluded.account_id, residence_id=excluded.residence_id,
		   apartment_id=excluded.apartment_id, name=excluded.name,
		   email=excluded.email, phone=excluded.phone, status=excluded.status`,
		entity.ID, entity.AccountID, entity.ResidenceID, apartmentID,
		entity.Name, entity.Email, entity.Phone, entity.Status,
		entity.CreatedAt.Format(dateLayout))
	if storage.IsUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

// Provision atomically creates account, resident, apartment assignment
// and notification.
// PRE: acct, r and n have been validated; r.AccountID == acct.ID
// POST: All rows committed, or none on any failure
func (s *SQLiteStore) Provision(ctx context.Context, acct domainAccount.Account, r domain.Resident, n domainNotification.Notification) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	changeRequired := 0
	if acct.PasswordChangeRequired {
		changeRequired = 1
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO account (id, email, password_hash, role, status, created_at, failed_logins, locked_until, password_change_required)
		 VALUES (?, ?, ?, ?, ?, ?, 0, NULL, ?)`,
		acct.ID, acct.Email, acct.PasswordHash, acct.Role, acct.Status,
		acct.CreatedAt.Format(dateLayout), changeRequired)
	if storage.IsUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return err
	}

	var apartmentID any
	if r.ApartmentID != "" {
		apartmentID = r.ApartmentID
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO resident (`+residentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.AccountID, r.ResidenceID, apartmentID,
		r.Name, r.Email, r.Phone, r.Status, r.CreatedAt.Format(dateLayout))
	if storage.IsUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return err
	}

	if r.ApartmentID != "" {
		res, err := tx.ExecContext(ctx,
			`UPDATE apartment SET resident_id = ? WHERE id = ? AND resident_id IS NULL`,
			r.ID, r.ApartmentID)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("apartment %s is not available", r.ApartmentID)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO notification (id, sender_id, receiver_id, kind, reference_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.SenderID, n.ReceiverID, n.Kind, n.ReferenceID, n.CreatedAt.Format(dateLayout))
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Remove atomically deletes the resident, their dependent history
// (payments, announcement receipts, messages, notifications), vacates
// their apartment and deletes the linked account. Dependents go first:
// payment and announcement_recipient reference resident(id), message
// references account(id), and foreign keys are enforced in production.
// PRE: residentID is non-empty
// POST: Resident, account, history and apartment link removed, or nothing on failure
func (s *SQLiteStore) Remove(ctx context.Context, residentID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var accountID string
	err = tx.QueryRowContext(ctx, `SELECT account_id FROM resident WHERE id = ?`, residentID).Scan(&accountID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("resident not found: %w", err)
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM payment WHERE payer_id = ?`, residentID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM announcement_recipient WHERE recipient_id = ?`, residentID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM message WHERE sender_id = ? OR receiver_id = ?`, accountID, accountID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM notification WHERE sender_id = ? OR receiver_id = ?`, accountID, accountID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE apartment SET resident_id = NULL WHERE resident_id = ?`, residentID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM resident WHERE id = ?`, residentID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM account WHERE id = ?`, accountID); err != nil {
		return err
	}

	return tx.Commit()
}

// listWhereClause builds the WHERE clause and args for List/Count queries.
func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.ResidenceID != "" {
		where += " AND residence_id = ?"
		args = append(args, filter.ResidenceID)
	}
	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		where += " AND (name LIKE ? OR email LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	}
	return where, args
}

// sortClause returns a safe ORDER BY clause. Only allowed columns are accepted.
func sortClause(filter ListFilter) string {
	allowed := map[string]string{
		"name": "name", "email": "email", "status": "status", "created": "created_at",
	}
	col, ok := allowed[filter.Sort]
	if !ok {
		return " ORDER BY name ASC"
	}
	dir := "ASC"
	if filter.Dir == "desc" {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir
}

// List retrieves Residents based on the filter.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Resident, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + residentColumns + " FROM resident" + where + sortClause(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Resident
	for rows.Next() {
		entity, err := scanResident(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of residents matching the filter.
// PRE: filter has valid parameters
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM resident"+where, args...).Scan(&count)
	return count, err
}

// ListActive returns all active residents of a residence ordered by name.
// PRE: residenceID is non-empty
// POST: Returns active residents only
func (s *SQLiteStore) ListActive(ctx context.Context, residenceID string) ([]domain.Resident, error) {
	return s.List(ctx, ListFilter{ResidenceID: residenceID, Status: domain.StatusActive})
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}
