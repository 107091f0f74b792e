package subscription

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"syndicway/internal/adapters/storage"
	domain "syndicway/internal/domain/subscription"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

const subscriptionColumns = "id, name, price_cents, duration_months, max_residents, max_apartments, active"

const purchaseColumns = "id, syndic_id, subscription_id, purchased_at, expires_at, status"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SubscriptionStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanSubscription(scan func(dest ...any) error) (domain.Subscription, error) {
	var entity domain.Subscription
	var active int
	err := scan(&entity.ID, &entity.Name, &entity.PriceCents, &entity.DurationMonths,
		&entity.MaxResidents, &entity.MaxApartments, &active)
	if err != nil {
		return domain.Subscription{}, err
	}
	entity.Active = active != 0
	return entity, nil
}

func scanPurchase(scan func(dest ...any) error) (domain.Purchase, error) {
	var entity domain.Purchase
	var purchasedAt, expiresAt string
	err := scan(&entity.ID, &entity.SyndicID, &entity.SubscriptionID, &purchasedAt, &expiresAt, &entity.Status)
	if err != nil {
		return domain.Purchase{}, err
	}
	entity.PurchasedAt, _ = time.Parse(dateLayout, purchasedAt)
	entity.ExpiresAt, _ = time.Parse(dateLayout, expiresAt)
	return entity, nil
}

// GetByID retrieves a Subscription by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Subscription, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+subscriptionColumns+" FROM subscription WHERE id = ?", id)
	entity, err := scanSubscription(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Subscription{}, fmt.Errorf("subscription not found: %w", err)
	}
	return entity, err
}

// Save persists a Subscription to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Subscription) error {
	active := 0
	if entity.Active {
		active = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subscription (`+subscriptionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, price_cents=excluded.price_cents,
		   duration_months=excluded.duration_months, max_residents=excluded.max_residents,
		   max_apartments=excluded.max_apartments, active=excluded.active`,
		entity.ID, entity.Name, entity.PriceCents, entity.DurationMonths,
		entity.MaxResidents, entity.MaxApartments, active)
	if storage.IsUniqueViolation(err) {
		return ErrDuplicateName
	}
	return err
}

// List retrieves subscriptions, cheapest first.
// PRE: none
// POST: Returns all plans, or only active ones when activeOnly is set
func (s *SQLiteStore) List(ctx context.Context, activeOnly bool) ([]domain.Subscription, error) {
	query := "SELECT " + subscriptionColumns + " FROM subscription"
	if activeOnly {
		query += " WHERE active = 1"
	}
	query += " ORDER BY price_cents ASC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Subscription
	for rows.Next() {
		entity, err := scanSubscription(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// GetPurchase retrieves a Purchase by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetPurchase(ctx context.Context, id string) (domain.Purchase, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+purchaseColumns+" FROM purchase WHERE id = ?", id)
	entity, err := scanPurchase(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Purchase{}, fmt.Errorf("purchase not found: %w", err)
	}
	return entity, err
}

// SavePurchase persists a Purchase to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) SavePurchase(ctx context.Context, entity domain.Purchase) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO purchase (`+purchaseColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   expires_at=excluded.expires_at, status=excluded.status`,
		entity.ID, entity.SyndicID, entity.SubscriptionID,
		entity.PurchasedAt.Format(dateLayout), entity.ExpiresAt.Format(dateLayout), entity.Status)
	return err
}

// ActivePurchase returns the syndic's current active purchase.
// PRE: syndicID is non-empty
// POST: Returns the latest active purchase or subscription.ErrNoActivePlan
func (s *SQLiteStore) ActivePurchase(ctx context.Context, syndicID string) (domain.Purchase, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+purchaseColumns+" FROM purchase WHERE syndic_id = ? AND status = ? ORDER BY expires_at DESC LIMIT 1",
		syndicID, domain.PurchaseActive)
	entity, err := scanPurchase(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Purchase{}, domain.ErrNoActivePlan
	}
	return entity, err
}

// ListPurchases returns purchase history, newest first.
// PRE: none (empty syndicID lists all)
// POST: Returns matching purchases
func (s *SQLiteStore) ListPurchases(ctx context.Context, syndicID string, limit, offset int) ([]domain.Purchase, error) {
	if limit <= 0 {
		limit = 1000
	}
	query := "SELECT " + purchaseColumns + " FROM purchase"
	var args []any
	if syndicID != "" {
		query += " WHERE syndic_id = ?"
		args = append(args, syndicID)
	}
	query += " ORDER BY purchased_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Purchase
	for rows.Next() {
		entity, err := scanPurchase(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// ExpireOverdue flips active purchases past their expiry to expired.
// PRE: none
// POST: Returns the number of purchases expired
func (s *SQLiteStore) ExpireOverdue(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE purchase SET status = ? WHERE status = ? AND expires_at < ?",
		domain.PurchaseExpired, domain.PurchaseActive, time.Now().Format(dateLayout))
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	return int(affected), err
}
