package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	emailAdapter "syndicway/internal/adapters/email"
	outboxStore "syndicway/internal/adapters/storage/outbox"
	domainOutbox "syndicway/internal/domain/outbox"
)

// EmailPayload is the JSON structure stored in the outbox for replay.
type EmailPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Kind    string   `json:"kind,omitempty"`
}

// SendEmailInput carries input for the send-email orchestrator.
type SendEmailInput struct {
	To      []string
	Subject string
	HTML    string
	Kind    string // email category (email.KindCredentials, ...)
}

// SendEmailDeps holds dependencies for SendEmail.
type SendEmailDeps struct {
	EmailSender emailAdapter.Sender
	OutboxStore outboxStore.Store
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteSendEmail attempts an immediate send and falls back to the
// outbox when the provider rejects it, so credential emails and
// reminders are never lost. Callers must not surface the email body to
// the browser on failure.
// PRE: input has at least one recipient and a subject
// POST: Email delivered, or a pending outbox entry persisted
func ExecuteSendEmail(ctx context.Context, input SendEmailInput, deps SendEmailDeps) error {
	if len(input.To) == 0 {
		return errors.New("at least one recipient is required")
	}
	if input.Subject == "" {
		return errors.New("subject is required")
	}

	result, err := deps.EmailSender.Send(ctx, emailAdapter.SendRequest{
		To:      input.To,
		Subject: input.Subject,
		HTML:    input.HTML,
		Kind:    input.Kind,
	})
	if err == nil {
		slog.Info("email_event", "event", "email_sent", "to", input.To, "kind", input.Kind, "subject", input.Subject, "message_id", result.MessageID)
		return nil
	}

	slog.Warn("email_event", "event", "email_deferred", "to", input.To, "kind", input.Kind, "subject", input.Subject, "error", err)
	return enqueueEmail(ctx, input, deps)
}

// enqueueEmail persists a pending outbox entry for the retry worker.
func enqueueEmail(ctx context.Context, input SendEmailInput, deps SendEmailDeps) error {
	payload, err := json.Marshal(EmailPayload{To: input.To, Subject: input.Subject, HTML: input.HTML, Kind: input.Kind})
	if err != nil {
		return err
	}
	entry := domainOutbox.Entry{
		ID:          deps.GenerateID(),
		ActionType:  domainOutbox.ActionTypeEmail,
		Payload:     string(payload),
		Status:      domainOutbox.StatusPending,
		MaxAttempts: 5,
		CreatedAt:   deps.Now(),
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	return deps.OutboxStore.Save(ctx, entry)
}
