package payment

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Domain errors
var (
	ErrEmptyPayer    = errors.New("payment payer is required")
	ErrEmptyReceiver = errors.New("payment receiver is required")
	ErrInvalidMonth  = errors.New("payment month must be in YYYY-MM format")
	ErrInvalidAmount = errors.New("payment amount must be positive")
	ErrDuplicate     = errors.New("a payment for this resident and month already exists")
)

// monthRe matches the YYYY-MM month key.
var monthRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Payment records one monthly charge settled by a resident with their
// syndic. (PayerID, ReceiverID, MonthPaid) is unique, enforced by the
// schema.
type Payment struct {
	ID          string
	PayerID     string // Resident ID
	ReceiverID  string // AccountID of the receiving syndic
	MonthPaid   string // YYYY-MM
	AmountCents int
	DatePayment time.Time
}

// Validate checks if the Payment has valid data.
// PRE: Payment struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Payment) Validate() error {
	if p.PayerID == "" {
		return ErrEmptyPayer
	}
	if p.ReceiverID == "" {
		return ErrEmptyReceiver
	}
	if !ValidMonth(p.MonthPaid) {
		return ErrInvalidMonth
	}
	if p.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidMonth reports whether s is a well-formed YYYY-MM month key.
func ValidMonth(s string) bool {
	return monthRe.MatchString(s)
}

// CurrentMonth returns the month key for the given time.
func CurrentMonth(t time.Time) string {
	return t.Format("2006-01")
}

// FormatAmount renders an amount in cents as "123.45 MAD".
func FormatAmount(cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d MAD", sign, cents/100, cents%100)
}
