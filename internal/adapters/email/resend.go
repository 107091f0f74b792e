package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// resendBatchLimit is the maximum number of emails Resend accepts per
// batch call.
const resendBatchLimit = 100

// ResendSender delivers portal email (credentials, payment reminders,
// receipts) through the Resend API. Requests without an explicit From or
// ReplyTo fall back to the sender defaults configured at startup.
type ResendSender struct {
	client  *resend.Client
	from    string
	replyTo string
}

// NewResendSender creates a ResendSender. replyTo may be empty, in which
// case replies go to the From address.
// PRE: apiKey is a valid Resend API key; from is a valid sender address
// POST: Returns a ready-to-use sender
func NewResendSender(apiKey, from, replyTo string) *ResendSender {
	return &ResendSender{
		client:  resend.NewClient(apiKey),
		from:    from,
		replyTo: replyTo,
	}
}

// buildParams applies the sender defaults and the category tag.
func (s *ResendSender) buildParams(req SendRequest) *resend.SendEmailRequest {
	params := &resend.SendEmailRequest{
		From:    req.From,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
		ReplyTo: req.ReplyTo,
	}
	if params.From == "" {
		params.From = s.from
	}
	if params.ReplyTo == "" {
		params.ReplyTo = s.replyTo
	}
	if req.Kind != "" {
		params.Tags = []resend.Tag{{Name: "kind", Value: req.Kind}}
	}
	return params
}

// Send delivers a single email.
// PRE: req has at least one recipient and a subject
// POST: Email is queued for delivery; returns the Resend message ID
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, s.buildParams(req))
	if err != nil {
		slog.Error("resend_send_failed", "error", err, "to", req.To, "kind", req.Kind, "subject", req.Subject)
		return SendResult{}, fmt.Errorf("resend send failed: %w", err)
	}

	slog.Info("resend_sent", "message_id", sent.Id, "to", req.To, "kind", req.Kind)
	return SendResult{
		MessageID: sent.Id,
		SentAt:    time.Now(),
	}, nil
}

// SendBatch delivers multiple emails through Resend's batch API, chunked
// to the provider limit. Used by reminder runs that fan out to every
// unpaid resident.
// PRE: len(reqs) > 0
// POST: All emails are queued; returns results in the same order as requests
func (s *ResendSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	var results []SendResult
	for start := 0; start < len(reqs); start += resendBatchLimit {
		end := min(start+resendBatchLimit, len(reqs))

		chunk := make([]*resend.SendEmailRequest, 0, end-start)
		for _, req := range reqs[start:end] {
			chunk = append(chunk, s.buildParams(req))
		}

		resp, err := s.client.Batch.SendWithContext(ctx, chunk)
		if err != nil {
			slog.Error("resend_batch_failed", "error", err, "batch_size", len(chunk))
			return results, fmt.Errorf("resend batch send failed: %w", err)
		}

		for _, item := range resp.Data {
			results = append(results, SendResult{
				MessageID: item.Id,
				SentAt:    time.Now(),
			})
		}

		slog.Info("resend_batch_sent", "count", len(chunk), "total_sent", len(results))
	}

	return results, nil
}
