package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	emailAdapter "syndicway/internal/adapters/email"
	"syndicway/internal/domain/notification"
	"syndicway/internal/domain/payment"
	"syndicway/internal/domain/resident"
)

// ResidentStoreForReminder defines the store interface needed by SendReminder.
type ResidentStoreForReminder interface {
	ListActive(ctx context.Context, residenceID string) ([]resident.Resident, error)
	GetByID(ctx context.Context, id string) (resident.Resident, error)
}

// NotificationWriter persists reminder notifications.
type NotificationWriter interface {
	Save(ctx context.Context, n notification.Notification) error
}

// PaidLookup reports which residents already paid a month.
type PaidLookup interface {
	PaidPayerIDs(ctx context.Context, receiverID, month string) ([]string, error)
}

// SendReminderInput carries input for the payment-reminder orchestrator.
type SendReminderInput struct {
	SyndicID    string
	ResidenceID string
	Month       string // YYYY-MM; defaults to the current month
	ResidentID  string // when set, remind only this resident
}

// SendReminderResult summarises a reminder run.
type SendReminderResult struct {
	Reminded int
	Skipped  int // already paid
}

// SendReminderDeps holds dependencies for SendReminder.
type SendReminderDeps struct {
	ResidentStore     ResidentStoreForReminder
	PaymentStore      PaidLookup
	NotificationStore NotificationWriter
	SendEmail         func(ctx context.Context, input SendEmailInput) error
	GenerateID        func() string
	Now               func() time.Time
}

// ExecuteSendReminder emails unpaid residents about the month's charge
// and records a notification per reminded resident. Residents with a
// recorded payment for the month are skipped.
// PRE: Month is YYYY-MM (or empty for current)
// POST: One email and notification per unpaid active resident
func ExecuteSendReminder(ctx context.Context, input SendReminderInput, deps SendReminderDeps) (SendReminderResult, error) {
	if input.SyndicID == "" || input.ResidenceID == "" {
		return SendReminderResult{}, errors.New("syndic and residence are required")
	}
	month := input.Month
	if month == "" {
		month = payment.CurrentMonth(deps.Now())
	}
	if !payment.ValidMonth(month) {
		return SendReminderResult{}, payment.ErrInvalidMonth
	}

	var targets []resident.Resident
	if input.ResidentID != "" {
		r, err := deps.ResidentStore.GetByID(ctx, input.ResidentID)
		if err != nil {
			return SendReminderResult{}, err
		}
		if r.ResidenceID != input.ResidenceID {
			return SendReminderResult{}, ErrResidentNotOwned
		}
		targets = []resident.Resident{r}
	} else {
		var err error
		targets, err = deps.ResidentStore.ListActive(ctx, input.ResidenceID)
		if err != nil {
			return SendReminderResult{}, err
		}
	}

	paidIDs, err := deps.PaymentStore.PaidPayerIDs(ctx, input.SyndicID, month)
	if err != nil {
		return SendReminderResult{}, err
	}
	paid := make(map[string]bool, len(paidIDs))
	for _, id := range paidIDs {
		paid[id] = true
	}

	var result SendReminderResult
	now := deps.Now()
	for _, r := range targets {
		if paid[r.ID] {
			result.Skipped++
			continue
		}

		n := notification.Notification{
			ID:          deps.GenerateID(),
			SenderID:    input.SyndicID,
			ReceiverID:  r.AccountID,
			Kind:        notification.KindPaymentReminder,
			ReferenceID: month,
			CreatedAt:   now,
		}
		if err := deps.NotificationStore.Save(ctx, n); err != nil {
			slog.Error("reminder_notification_failed", "resident_id", r.ID, "error", err)
			continue
		}

		if err := deps.SendEmail(ctx, SendEmailInput{
			To:      []string{r.Email},
			Subject: "Payment reminder for " + month,
			HTML:    reminderEmailBody(r.Name, month),
			Kind:    emailAdapter.KindReminder,
		}); err != nil {
			slog.Error("reminder_email_failed", "resident_id", r.ID, "error", err)
		}
		result.Reminded++
	}

	slog.Info("payment_event", "event", "reminders_sent", "residence_id", input.ResidenceID, "month", month, "reminded", result.Reminded, "skipped", result.Skipped)
	return result, nil
}

// reminderEmailBody renders the payment reminder email.
func reminderEmailBody(name, month string) string {
	return "<p>Hello " + name + ",</p>" +
		"<p>This is a friendly reminder that your building charge for <strong>" + month + "</strong> has not been recorded yet.</p>" +
		"<p>Please settle it with your syndic at your earliest convenience.</p>"
}
