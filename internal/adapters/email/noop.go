package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// NoopSender stands in for Resend when SYNDIC_RESEND_KEY is unset. It
// accepts every send, logs it, and hands back sequential message IDs so
// dev flows (credential emails, reminders) behave like real deliveries.
type NoopSender struct {
	seq atomic.Int64
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

func (s *NoopSender) accept(req SendRequest) SendResult {
	id := s.seq.Add(1)
	slog.Info("noop_email_send", "to", req.To, "kind", req.Kind, "subject", req.Subject, "message_id", id)
	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", id),
		SentAt:    time.Now(),
	}
}

// Send logs the email without delivering it.
// PRE: req is a valid SendRequest
// POST: Returns a noop result without actual delivery
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	return s.accept(req), nil
}

// SendBatch logs each email in the batch without delivering it.
// PRE: reqs is a slice of SendRequests
// POST: Returns noop results for each request without actual delivery
func (s *NoopSender) SendBatch(_ context.Context, reqs []SendRequest) ([]SendResult, error) {
	results := make([]SendResult, 0, len(reqs))
	for _, req := range reqs {
		results = append(results, s.accept(req))
	}
	return results, nil
}
