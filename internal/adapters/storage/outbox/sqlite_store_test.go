package outbox

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"syndicway/internal/adapters/storage"
	domain "syndicway/internal/domain/outbox"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return NewSQLiteStore(db)
}

func testEntry(id string, at time.Time) domain.Entry {
	return domain.Entry{
		ID:          id,
		ActionType:  domain.ActionTypeEmail,
		Payload:     `{"to":"amal@residence.ma","subject":"Your credentials"}`,
		Status:      domain.StatusPending,
		MaxAttempts: 5,
		CreatedAt:   at,
	}
}

// TestSQLiteStore_SaveAndGet verifies an entry round-trips through the store.
func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if err := store.Save(ctx, testEntry("o1", now)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.GetByID(ctx, "o1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ActionType != domain.ActionTypeEmail {
		t.Errorf("ActionType = %q, want email", got.ActionType)
	}
	if got.Status != domain.StatusPending {
		t.Errorf("Status = %q, want pending", got.Status)
	}
	if got.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", got.MaxAttempts)
	}
}

// TestSQLiteStore_Lifecycle walks an entry from pending through retrying to done.
func TestSQLiteStore_Lifecycle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	e := testEntry("o1", now)
	if err := store.Save(ctx, e); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Failed first attempt
	e.Status = domain.StatusRetrying
	e.Attempts = 1
	e.LastAttemptedAt = now.Add(time.Minute)
	e.ErrorMessage = "provider timeout"
	if err := store.Save(ctx, e); err != nil {
		t.Fatalf("retry Save failed: %v", err)
	}

	pending, err := store.ListPending(ctx, 10)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending len = %d, want 1 (retrying entries are pending work)", len(pending))
	}
	if pending[0].ErrorMessage != "provider timeout" {
		t.Errorf("ErrorMessage = %q, want provider timeout", pending[0].ErrorMessage)
	}

	// Delivered
	e.Status = domain.StatusDone
	e.Attempts = 2
	e.ExternalID = "re_abc123"
	if err := store.Save(ctx, e); err != nil {
		t.Fatalf("done Save failed: %v", err)
	}

	pending, _ = store.ListPending(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("pending len = %d, want 0 after delivery", len(pending))
	}

	got, _ := store.GetByID(ctx, "o1")
	if got.ExternalID != "re_abc123" {
		t.Errorf("ExternalID = %q, want re_abc123", got.ExternalID)
	}
}

// TestSQLiteStore_ListPending_Order verifies oldest-first draining.
func TestSQLiteStore_ListPending_Order(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	store.Save(ctx, testEntry("newer", base.Add(time.Hour)))
	store.Save(ctx, testEntry("older", base))

	pending, err := store.ListPending(ctx, 10)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("len = %d, want 2", len(pending))
	}
	if pending[0].ID != "older" {
		t.Errorf("first = %q, want older (oldest first)", pending[0].ID)
	}
}

// TestSQLiteStore_ListFailed verifies only exhausted entries show up.
func TestSQLiteStore_ListFailed(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	exhausted := testEntry("o1", now)
	exhausted.Status = domain.StatusFailed
	exhausted.Attempts = 5
	exhausted.LastAttemptedAt = now.Add(time.Hour)
	exhausted.ErrorMessage = "mailbox does not exist"
	store.Save(ctx, exhausted)

	inFlight := testEntry("o2", now)
	inFlight.Status = domain.StatusRetrying
	inFlight.Attempts = 2
	store.Save(ctx, inFlight)

	failed, err := store.ListFailed(ctx, 10)
	if err != nil {
		t.Fatalf("ListFailed failed: %v", err)
	}
	if len(failed) != 1 || failed[0].ID != "o1" {
		t.Errorf("failed = %v, want [o1]", failed)
	}
}

// TestSQLiteStore_Delete verifies entry removal.
func TestSQLiteStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	store.Save(ctx, testEntry("o1", time.Now()))
	if err := store.Delete(ctx, "o1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, "o1"); err == nil {
		t.Error("entry should be gone after Delete")
	}
}
