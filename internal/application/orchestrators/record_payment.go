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

// PaymentStoreForOrchestrator defines the store interface needed by payment operations.
type PaymentStoreForOrchestrator interface {
	Record(ctx context.Context, p payment.Payment, n notification.Notification) error
	GetByKey(ctx context.Context, payerID, receiverID, month string) (payment.Payment, error)
	DeleteByKey(ctx context.Context, payerID, receiverID, month string) error
	PaidPayerIDs(ctx context.Context, receiverID, month string) ([]string, error)
}

// ResidentLookup resolves residents for payment operations.
type ResidentLookup interface {
	GetByID(ctx context.Context, id string) (resident.Resident, error)
}

// RecordPaymentInput carries input for the record-payment orchestrator.
type RecordPaymentInput struct {
	SyndicID    string // receiver account
	ResidenceID string
	PayerID     string // resident ID
	Month       string // YYYY-MM
	AmountCents int
}

// RecordPaymentDeps holds dependencies for RecordPayment.
type RecordPaymentDeps struct {
	PaymentStore  PaymentStoreForOrchestrator
	ResidentStore ResidentLookup
	SendEmail     func(ctx context.Context, input SendEmailInput) error
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteRecordPayment records a monthly charge payment and its
// notification in one transaction. A second submission for the same
// (payer, month) returns payment.ErrDuplicate from the store.
// PRE: Payer is a resident of the syndic's residence; month is YYYY-MM
// POST: Payment and notification committed together, receipt emailed
func ExecuteRecordPayment(ctx context.Context, input RecordPaymentInput, deps RecordPaymentDeps) (payment.Payment, error) {
	if input.SyndicID == "" || input.PayerID == "" {
		return payment.Payment{}, errors.New("syndic and payer are required")
	}

	payer, err := deps.ResidentStore.GetByID(ctx, input.PayerID)
	if err != nil {
		return payment.Payment{}, err
	}
	if input.ResidenceID != "" && payer.ResidenceID != input.ResidenceID {
		return payment.Payment{}, ErrResidentNotOwned
	}

	now := deps.Now()
	p := payment.Payment{
		ID:          deps.GenerateID(),
		PayerID:     payer.ID,
		ReceiverID:  input.SyndicID,
		MonthPaid:   input.Month,
		AmountCents: input.AmountCents,
		DatePayment: now,
	}
	if err := p.Validate(); err != nil {
		return payment.Payment{}, err
	}

	n := notification.Notification{
		ID:          deps.GenerateID(),
		SenderID:    input.SyndicID,
		ReceiverID:  payer.AccountID,
		Kind:        notification.KindPaymentRecorded,
		ReferenceID: p.ID,
		CreatedAt:   now,
	}

	if err := deps.PaymentStore.Record(ctx, p, n); err != nil {
		return payment.Payment{}, err
	}

	if deps.SendEmail != nil {
		if err := deps.SendEmail(ctx, SendEmailInput{
			To:      []string{payer.Email},
			Subject: "Payment received for " + p.MonthPaid,
			HTML:    receiptEmailBody(payer.Name, p),
			Kind:    emailAdapter.KindReceipt,
		}); err != nil {
			slog.Error("payment_receipt_email_failed", "payment_id", p.ID, "error", err)
		}
	}

	slog.Info("payment_event", "event", "payment_recorded", "payment_id", p.ID, "payer_id", p.PayerID, "month", p.MonthPaid, "amount_cents", p.AmountCents)
	return p, nil
}

// DeletePaymentInput carries input for the delete-payment orchestrator.
type DeletePaymentInput struct {
	SyndicID    string
	ResidenceID string
	PayerID     string
	Month       string
}

// ExecuteDeletePayment removes a recorded payment by its composite key.
// PRE: Payment exists for (payer, syndic, month)
// POST: Payment row removed
func ExecuteDeletePayment(ctx context.Context, input DeletePaymentInput, deps RecordPaymentDeps) error {
	if input.SyndicID == "" || input.PayerID == "" || input.Month == "" {
		return errors.New("syndic, payer and month are required")
	}

	payer, err := deps.ResidentStore.GetByID(ctx, input.PayerID)
	if err != nil {
		return err
	}
	if input.ResidenceID != "" && payer.ResidenceID != input.ResidenceID {
		return ErrResidentNotOwned
	}

	if _, err := deps.PaymentStore.GetByKey(ctx, input.PayerID, input.SyndicID, input.Month); err != nil {
		return err
	}
	if err := deps.PaymentStore.DeleteByKey(ctx, input.PayerID, input.SyndicID, input.Month); err != nil {
		return err
	}

	slog.Info("payment_event", "event", "payment_deleted", "payer_id", input.PayerID, "month", input.Month)
	return nil
}

// receiptEmailBody renders the payment receipt email.
func receiptEmailBody(name string, p payment.Payment) string {
	return "<p>Hello " + name + ",</p>" +
		"<p>Your payment of <strong>" + payment.FormatAmount(p.AmountCents) + "</strong> for <strong>" + p.MonthPaid + "</strong> has been recorded.</p>"
}
