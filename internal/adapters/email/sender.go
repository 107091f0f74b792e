package email

import (
	"context"
	"time"
)

// Email categories, attached to each send so the provider dashboard can
// split credential mail from payment traffic.
const (
	KindCredentials = "credentials"
	KindReminder    = "reminder"
	KindReceipt     = "receipt"
)

// SendRequest contains the data needed to send an email via an external provider.
type SendRequest struct {
	To      []string // Recipient email addresses
	From    string   // Sender address (e.g. "Syndic Way <noreply@syndicway.app>")
	Subject string
	HTML    string // HTML body
	ReplyTo string // Reply-to address
	Kind    string // Category (KindCredentials, KindReminder, KindReceipt)
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string    // Provider's message ID for tracking
	SentAt    time.Time // When the send was accepted
}

// Sender is the interface for sending emails via an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}
