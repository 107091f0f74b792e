package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	domainOutbox "syndicway/internal/domain/outbox"
)

func pendingEmailEntry(id string, createdAt time.Time) domainOutbox.Entry {
	return domainOutbox.Entry{
		ID:          id,
		ActionType:  domainOutbox.ActionTypeEmail,
		Payload:     `{"to":["amal@residence.ma"],"subject":"Your credentials","html":"<p>Hi</p>"}`,
		Status:      domainOutbox.StatusPending,
		MaxAttempts: 5,
		CreatedAt:   createdAt,
	}
}

// TestExecuteOutboxRetry_Success verifies a pending entry is delivered and
// marked done with the provider message ID.
func TestExecuteOutboxRetry_Success(t *testing.T) {
	store := newMockOutboxStore()
	store.entries["o1"] = pendingEmailEntry("o1", fixedTime)
	sender := &mockEmailSender{}

	err := ExecuteOutboxRetry(context.Background(), OutboxRetryDeps{
		OutboxStore: store,
		EmailSender: sender,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(sender.sent))
	}
	if sender.sent[0].Subject != "Your credentials" {
		t.Errorf("Subject = %q, want replayed payload subject", sender.sent[0].Subject)
	}

	got := store.entries["o1"]
	if got.Status != domainOutbox.StatusDone {
		t.Errorf("status = %q, want done", got.Status)
	}
	if got.ExternalID != "msg-1" {
		t.Errorf("ExternalID = %q, want msg-1", got.ExternalID)
	}
	if got.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", got.Attempts)
	}
}

// TestExecuteOutboxRetry_ProviderStillDown verifies a failed attempt is
// recorded without losing the entry.
func TestExecuteOutboxRetry_ProviderStillDown(t *testing.T) {
	store := newMockOutboxStore()
	store.entries["o1"] = pendingEmailEntry("o1", fixedTime)
	sender := &mockEmailSender{err: errors.New("still down")}

	if err := ExecuteOutboxRetry(context.Background(), OutboxRetryDeps{
		OutboxStore: store,
		EmailSender: sender,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := store.entries["o1"]
	if got.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", got.Attempts)
	}
	if got.Status != domainOutbox.StatusRetrying {
		t.Errorf("status = %q, want retrying (attempts not exhausted)", got.Status)
	}
	if got.ErrorMessage != "still down" {
		t.Errorf("ErrorMessage = %q, want the provider error", got.ErrorMessage)
	}
}

// TestExecuteOutboxRetry_ExhaustsAttempts verifies the entry goes failed on
// the final allowed attempt.
func TestExecuteOutboxRetry_ExhaustsAttempts(t *testing.T) {
	store := newMockOutboxStore()
	entry := pendingEmailEntry("o1", fixedTime)
	entry.Attempts = 4
	entry.Status = domainOutbox.StatusRetrying
	entry.LastAttemptedAt = time.Now().Add(-2 * time.Hour) // past any backoff
	store.entries["o1"] = entry
	sender := &mockEmailSender{err: errors.New("mailbox does not exist")}

	if err := ExecuteOutboxRetry(context.Background(), OutboxRetryDeps{
		OutboxStore: store,
		EmailSender: sender,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := store.entries["o1"]
	if got.Attempts != 5 {
		t.Errorf("Attempts = %d, want 5", got.Attempts)
	}
	if got.Status != domainOutbox.StatusFailed {
		t.Errorf("status = %q, want failed", got.Status)
	}
}

// TestExecuteOutboxRetry_HonoursBackoff verifies a recently attempted entry
// is left alone.
func TestExecuteOutboxRetry_HonoursBackoff(t *testing.T) {
	store := newMockOutboxStore()
	entry := pendingEmailEntry("o1", fixedTime)
	entry.Attempts = 3
	entry.Status = domainOutbox.StatusRetrying
	entry.LastAttemptedAt = time.Now() // just attempted
	store.entries["o1"] = entry
	sender := &mockEmailSender{}

	if err := ExecuteOutboxRetry(context.Background(), OutboxRetryDeps{
		OutboxStore: store,
		EmailSender: sender,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.sent) != 0 {
		t.Errorf("sent = %d, want 0 (inside backoff window)", len(sender.sent))
	}
	if store.entries["o1"].Attempts != 3 {
		t.Errorf("Attempts = %d, want unchanged 3", store.entries["o1"].Attempts)
	}
}

// TestExecuteOutboxRetry_EmptyQueue verifies a quiet queue is a no-op.
func TestExecuteOutboxRetry_EmptyQueue(t *testing.T) {
	sender := &mockEmailSender{}
	if err := ExecuteOutboxRetry(context.Background(), OutboxRetryDeps{
		OutboxStore: newMockOutboxStore(),
		EmailSender: sender,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent = %d, want 0", len(sender.sent))
	}
}

// TestExecuteOutboxRetry_BadPayload verifies a corrupt payload counts as a
// failed attempt rather than crashing the run.
func TestExecuteOutboxRetry_BadPayload(t *testing.T) {
	store := newMockOutboxStore()
	entry := pendingEmailEntry("o1", fixedTime)
	entry.Payload = "{not json"
	store.entries["o1"] = entry

	if err := ExecuteOutboxRetry(context.Background(), OutboxRetryDeps{
		OutboxStore: store,
		EmailSender: &mockEmailSender{},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := store.entries["o1"]
	if got.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", got.Attempts)
	}
	if got.ErrorMessage == "" {
		t.Error("ErrorMessage should record the payload error")
	}
}

// TestStartOutboxRetryScheduler_Disabled verifies a disabled scheduler is inert.
func TestStartOutboxRetryScheduler_Disabled(t *testing.T) {
	stop := StartOutboxRetryScheduler(context.Background(), OutboxRetryDeps{
		OutboxStore: newMockOutboxStore(),
		EmailSender: &mockEmailSender{},
	}, OutboxRetryConfig{Enabled: false})
	stop() // must be safe to call
}
