package payment

import (
	"context"

	domainNotification "syndicway/internal/domain/notification"
	domain "syndicway/internal/domain/payment"
)

// Store persists Payment state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Payment, error)
	GetByKey(ctx context.Context, payerID, receiverID, month string) (domain.Payment, error)

	// Record atomically inserts the payment and its notification row.
	// A duplicate (payer, receiver, month) returns payment.ErrDuplicate.
	Record(ctx context.Context, p domain.Payment, n domainNotification.Notification) error

	// DeleteByKey removes the payment identified by its composite key.
	DeleteByKey(ctx context.Context, payerID, receiverID, month string) error

	List(ctx context.Context, filter ListFilter) ([]domain.Payment, error)
	Count(ctx context.Context, filter ListFilter) (int, error)

	// PaidPayerIDs returns the IDs of residents with a payment row for the
	// given receiver and month.
	PaidPayerIDs(ctx context.Context, receiverID, month string) ([]string, error)

	// MonthTotals returns total collected cents per month for a receiver,
	// most recent month first, up to limit months.
	MonthTotals(ctx context.Context, receiverID string, limit int) ([]MonthTotal, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit      int
	Offset     int
	ReceiverID string
	PayerID    string
	Month      string // exact YYYY-MM
	FromMonth  string // inclusive lower bound for period filters
	ToMonth    string // inclusive upper bound for period filters
}

// MonthTotal aggregates collected amounts for one month.
type MonthTotal struct {
	Month      string
	TotalCents int
	Count      int
}
