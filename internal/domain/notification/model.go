package notification

import (
	"errors"
	"time"
)

// Kind constants for notification provenance.
const (
	KindPaymentRecorded = "payment_recorded"
	KindPaymentReminder = "payment_reminder"
	KindResidentCreated = "resident_created"
	KindPasswordReset   = "password_reset"
)

// ValidKinds contains all valid notification kinds.
var ValidKinds = []string{KindPaymentRecorded, KindPaymentReminder, KindResidentCreated, KindPasswordReset}

// Domain errors
var (
	ErrEmptySender   = errors.New("notification sender is required")
	ErrEmptyReceiver = errors.New("notification receiver is required")
	ErrInvalidKind   = errors.New("invalid notification kind")
)

// Notification is a lightweight side-effect record written alongside
// payments, reminders and resident provisioning.
type Notification struct {
	ID          string
	SenderID    string // AccountID of the acting syndic
	ReceiverID  string // AccountID of the notified party
	Kind        string
	ReferenceID string // ID of the payment/resident the notification refers to
	CreatedAt   time.Time
}

// Validate checks if the Notification has valid data.
// PRE: Notification struct is populated
// POST: Returns nil if valid, error otherwise
func (n *Notification) Validate() error {
	if n.SenderID == "" {
		return ErrEmptySender
	}
	if n.ReceiverID == "" {
		return ErrEmptyReceiver
	}
	if !isValidKind(n.Kind) {
		return ErrInvalidKind
	}
	if n.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	return nil
}

func isValidKind(k string) bool {
	for _, v := range ValidKinds {
		if k == v {
			return true
		}
	}
	return false
}
