package payment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"syndicway/internal/adapters/storage"
	domainNotification "syndicway/internal/domain/notification"
	domain "syndicway/internal/domain/payment"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

const paymentColumns = "id, payer_id, receiver_id, month_paid, amount_cents, date_payment"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new PaymentStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanPayment(scan func(dest ...any) error) (domain.Payment, error) {
	var entity domain.Payment
	var datePayment string
	err := scan(&entity.ID, &entity.PayerID, &entity.ReceiverID, &entity.MonthPaid, &entity.AmountCents, &datePayment)
	if err != nil {
		return domain.Payment{}, err
	}
	entity.DatePayment, _ = time.Parse(dateLayout, datePayment)
	return entity, nil
}

// GetByID retrieves a Payment by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Payment, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM payment WHERE id = ?", id)
	entity, err := scanPayment(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Payment{}, fmt.Errorf("payment not found: %w", err)
	}
	return entity, err
}

// GetByKey retrieves a Payment by its composite key.
// PRE: payerID, receiverID and month are non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByKey(ctx context.Context, payerID, receiverID, month string) (domain.Payment, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payment WHERE payer_id = ? AND receiver_id = ? AND month_paid = ?",
		payerID, receiverID, month)
	entity, err := scanPayment(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Payment{}, fmt.Errorf("payment not found: %w", err)
	}
	return entity, err
}

// Record atomically inserts the payment and its notification row.
// The UNIQUE(payer_id, receiver_id, month_paid) constraint rejects
// duplicate months; a crash can no longer leave a payment without its
// notification.
// PRE: p and n have been validated
// POST: Both rows committed, or neither
func (s *SQLiteStore) Record(ctx context.Context, p domain.Payment, n domainNotification.Notification) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payment (`+paymentColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.PayerID, p.ReceiverID, p.MonthPaid, p.AmountCents, p.DatePayment.Format(dateLayout))
	if storage.IsUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	if err != nil {
		return err
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

// DeleteByKey removes the payment identified by its composite key.
// PRE: payerID, receiverID and month are non-empty
// POST: Matching row removed (no-op if absent)
func (s *SQLiteStore) DeleteByKey(ctx context.Context, payerID, receiverID, month string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM payment WHERE payer_id = ? AND receiver_id = ? AND month_paid = ?",
		payerID, receiverID, month)
	return err
}

// listWhereClause builds the WHERE clause and args for List/Count queries.
func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.ReceiverID != "" {
		where += " AND receiver_id = ?"
		args = append(args, filter.ReceiverID)
	}
	if filter.PayerID != "" {
		where += " AND payer_id = ?"
		args = append(args, filter.PayerID)
	}
	if filter.Month != "" {
		where += " AND month_paid = ?"
		args = append(args, filter.Month)
	}
	if filter.FromMonth != "" {
		where += " AND month_paid >= ?"
		args = append(args, filter.FromMonth)
	}
	if filter.ToMonth != "" {
		where += " AND month_paid <= ?"
		args = append(args, filter.ToMonth)
	}
	return where, args
}

// List retrieves Payments based on the filter, most recent month first.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Payment, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + paymentColumns + " FROM payment" + where + " ORDER BY month_paid DESC, date_payment DESC"

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

	var results []domain.Payment
	for rows.Next() {
		entity, err := scanPayment(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of payments matching the filter.
// PRE: filter has valid parameters
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM payment"+where, args...).Scan(&count)
	return count, err
}

// PaidPayerIDs returns resident IDs with a payment for the month.
// PRE: receiverID and month are non-empty
// POST: Returns payer IDs (possibly empty)
func (s *SQLiteStore) PaidPayerIDs(ctx context.Context, receiverID, month string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT payer_id FROM payment WHERE receiver_id = ? AND month_paid = ?",
		receiverID, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MonthTotals returns total collected cents per month, most recent first.
// PRE: receiverID is non-empty, limit > 0
// POST: Returns up to limit aggregates
func (s *SQLiteStore) MonthTotals(ctx context.Context, receiverID string, limit int) ([]MonthTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT month_paid, SUM(amount_cents), COUNT(*) FROM payment
		 WHERE receiver_id = ? GROUP BY month_paid ORDER BY month_paid DESC LIMIT ?`,
		receiverID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MonthTotal
	for rows.Next() {
		var mt MonthTotal
		if err := rows.Scan(&mt.Month, &mt.TotalCents, &mt.Count); err != nil {
			return nil, err
		}
		results = append(results, mt)
	}
	return results, rows.Err()
}
