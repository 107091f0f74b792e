package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is a single versioned schema change, applied in a transaction.
type migration struct {
	version int
	name    string
	sql     string
}

// migrations are applied in order; each runs at most once per database.
// Uniqueness rules live here as real constraints: duplicate apartments,
// duplicate monthly payments and duplicate emails are rejected by SQLite,
// not by read-then-write checks in handlers.
var migrations = []migration{
	{
		version: 1,
		name:    "initial schema",
		sql: `
		CREATE TABLE IF NOT EXISTS account (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TEXT NOT NULL,
			failed_logins INTEGER NOT NULL DEFAULT 0,
			locked_until TEXT,
			password_change_required INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS residence (
			id TEXT PRIMARY KEY,
			syndic_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			address TEXT NOT NULL,
			city TEXT NOT NULL DEFAULT '',
			FOREIGN KEY (syndic_id) REFERENCES account(id)
		);

		CREATE TABLE IF NOT EXISTS apartment (
			id TEXT PRIMARY KEY,
			residence_id TEXT NOT NULL,
			resident_id TEXT,
			floor INTEGER NOT NULL,
			number TEXT NOT NULL,
			type TEXT NOT NULL,
			UNIQUE (residence_id, floor, number),
			FOREIGN KEY (residence_id) REFERENCES residence(id)
		);

		CREATE TABLE IF NOT EXISTS resident (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			residence_id TEXT NOT NULL,
			apartment_id TEXT,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			phone TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (account_id) REFERENCES account(id),
			FOREIGN KEY (residence_id) REFERENCES residence(id)
		);

		CREATE TABLE IF NOT EXISTS payment (
			id TEXT PRIMARY KEY,
			payer_id TEXT NOT NULL,
			receiver_id TEXT NOT NULL,
			month_paid TEXT NOT NULL,
			amount_cents INTEGER NOT NULL,
			date_payment TEXT NOT NULL,
			UNIQUE (payer_id, receiver_id, month_paid),
			FOREIGN KEY (payer_id) REFERENCES resident(id),
			FOREIGN KEY (receiver_id) REFERENCES account(id)
		);

		CREATE TABLE IF NOT EXISTS message (
			id TEXT PRIMARY KEY,
			sender_id TEXT NOT NULL,
			receiver_id TEXT NOT NULL,
			subject TEXT,
			content TEXT NOT NULL,
			read_at TEXT,
			created_at TEXT NOT NULL,
			FOREIGN KEY (sender_id) REFERENCES account(id),
			FOREIGN KEY (receiver_id) REFERENCES account(id)
		);

		CREATE TABLE IF NOT EXISTS announcement (
			id TEXT PRIMARY KEY,
			poster_id TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			priority TEXT NOT NULL DEFAULT 'normal',
			created_at TEXT NOT NULL,
			FOREIGN KEY (poster_id) REFERENCES account(id)
		);

		CREATE TABLE IF NOT EXISTS announcement_recipient (
			id TEXT PRIMARY KEY,
			announcement_id TEXT NOT NULL,
			recipient_id TEXT NOT NULL,
			read_at TEXT,
			UNIQUE (announcement_id, recipient_id),
			FOREIGN KEY (announcement_id) REFERENCES announcement(id),
			FOREIGN KEY (recipient_id) REFERENCES resident(id)
		);

		CREATE TABLE IF NOT EXISTS notification (
			id TEXT PRIMARY KEY,
			sender_id TEXT NOT NULL,
			receiver_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			reference_id TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS subscription (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			price_cents INTEGER NOT NULL,
			duration_months INTEGER NOT NULL,
			max_residents INTEGER NOT NULL,
			max_apartments INTEGER NOT NULL,
			active INTEGER NOT NULL DEFAULT 1
		);

		CREATE TABLE IF NOT EXISTS purchase (
			id TEXT PRIMARY KEY,
			syndic_id TEXT NOT NULL,
			subscription_id TEXT NOT NULL,
			purchased_at TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			status TEXT NOT NULL,
			FOREIGN KEY (syndic_id) REFERENCES account(id),
			FOREIGN KEY (subscription_id) REFERENCES subscription(id)
		);

		CREATE TABLE IF NOT EXISTS outbox (
			id TEXT PRIMARY KEY,
			action_type TEXT NOT NULL,
			payload TEXT NOT NULL,
			status TEXT NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			max_attempts INTEGER NOT NULL DEFAULT 5,
			last_attempted_at TEXT,
			created_at TEXT NOT NULL,
			external_id TEXT NOT NULL DEFAULT '',
			error_message TEXT NOT NULL DEFAULT ''
		);
		`,
	},
	{
		version: 2,
		name:    "list page indexes",
		sql: `
		CREATE INDEX IF NOT EXISTS idx_payment_month ON payment(receiver_id, month_paid);
		CREATE INDEX IF NOT EXISTS idx_resident_residence ON resident(residence_id, status);
		CREATE INDEX IF NOT EXISTS idx_announcement_recipient ON announcement_recipient(recipient_id);
		CREATE INDEX IF NOT EXISTS idx_message_receiver ON message(receiver_id, read_at);
		`,
	},
}

// LatestSchemaVersion returns the version the database reaches after all
// migrations have been applied.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// MigrateDB applies all pending migrations inside transactions.
// PRE: db is a valid connection with foreign keys enabled
// POST: schema_version equals LatestSchemaVersion()
func MigrateDB(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`DELETE FROM schema_version`); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: failed to clear version: %w", m.version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: failed to record version: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}
		slog.Info("migration_applied", "version", m.version, "name", m.name)
	}

	return nil
}

// SchemaVersion returns the current schema version (0 for a fresh database).
// PRE: schema_version table exists
// POST: Returns version >= 0
func SchemaVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
