package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "syndicway/internal/adapters/email"
	outboxStore "syndicway/internal/adapters/storage/outbox"
	domainOutbox "syndicway/internal/domain/outbox"
)

// OutboxRetryDeps provides the dependencies for retrying outbox entries.
type OutboxRetryDeps struct {
	OutboxStore outboxStore.Store
	EmailSender emailAdapter.Sender
}

// ExecuteOutboxRetry processes pending and retryable outbox entries with
// exponential backoff, respecting max attempts.
// PRE: Deps are valid and store is connected
// POST: All eligible entries are processed, results logged
func ExecuteOutboxRetry(ctx context.Context, deps OutboxRetryDeps) error {
	entries, err := deps.OutboxStore.ListPending(ctx, 100)
	if err != nil {
		return fmt.Errorf("failed to list retryable outbox entries: %w", err)
	}

	if len(entries) == 0 {
		return nil
	}

	slog.Info("outbox_retry_start", "count", len(entries))

	var processed, succeeded, failed int
	baseDelay := 1 * time.Minute
	maxDelay := 1 * time.Hour

	for _, entry := range entries {
		// Honour the backoff window since the last attempt
		if !entry.LastAttemptedAt.IsZero() {
			nextRetry := entry.LastAttemptedAt.Add(entry.NextRetryDelay(baseDelay, maxDelay))
			if time.Now().Before(nextRetry) {
				slog.Debug("outbox_retry_skipped_backoff", "entry_id", entry.ID, "next_retry", nextRetry)
				continue
			}
		}
		processed++

		entry.MarkAttempt()

		var externalID string
		var execErr error
		switch entry.ActionType {
		case domainOutbox.ActionTypeEmail:
			externalID, execErr = retryEmail(ctx, entry, deps.EmailSender)
		default:
			execErr = fmt.Errorf("unknown action type: %s", entry.ActionType)
		}

		if execErr != nil {
			entry.MarkFailed(execErr)
			failed++
			slog.Error("outbox_retry_failed", "entry_id", entry.ID, "action", entry.ActionType, "attempt", entry.Attempts, "error", execErr)
		} else {
			entry.MarkSuccess(externalID)
			succeeded++
			slog.Info("outbox_retry_succeeded", "entry_id", entry.ID, "action", entry.ActionType, "attempt", entry.Attempts)
		}

		if saveErr := deps.OutboxStore.Save(ctx, entry); saveErr != nil {
			slog.Error("outbox_retry_save_failed", "entry_id", entry.ID, "error", saveErr)
		}
	}

	slog.Info("outbox_retry_complete", "processed", processed, "succeeded", succeeded, "failed", failed)
	return nil
}

// retryEmail replays a deferred email send from the outbox payload.
// PRE: Entry payload is a valid EmailPayload
// POST: Email sent or error returned; returns provider message ID
func retryEmail(ctx context.Context, entry domainOutbox.Entry, sender emailAdapter.Sender) (string, error) {
	var payload EmailPayload
	if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
		return "", fmt.Errorf("failed to unmarshal email payload: %w", err)
	}

	result, err := sender.Send(ctx, emailAdapter.SendRequest{
		To:      payload.To,
		Subject: payload.Subject,
		HTML:    payload.HTML,
		Kind:    payload.Kind,
	})
	if err != nil {
		return "", err
	}
	return result.MessageID, nil
}

// OutboxRetryConfig holds configuration for the retry scheduler.
type OutboxRetryConfig struct {
	Interval time.Duration // How often to run retries
	Enabled  bool
}

// DefaultOutboxRetryConfig returns sensible defaults.
func DefaultOutboxRetryConfig() OutboxRetryConfig {
	return OutboxRetryConfig{
		Interval: 5 * time.Minute,
		Enabled:  true,
	}
}

// StartOutboxRetryScheduler starts a background goroutine that periodically retries outbox entries.
// PRE: Context is valid, deps are initialized
// POST: Goroutine started, returns cancel function
func StartOutboxRetryScheduler(ctx context.Context, deps OutboxRetryDeps, cfg OutboxRetryConfig) func() {
	if !cfg.Enabled {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := ExecuteOutboxRetry(ctx, deps); err != nil {
					slog.Error("outbox_retry_scheduler_error", "error", err)
				}
			}
		}
	}()

	return cancel
}
