package subscription

import (
	"context"
	"errors"

	domain "syndicway/internal/domain/subscription"
)

// ErrDuplicateName is returned when a plan name is already taken.
var ErrDuplicateName = errors.New("a subscription with this name already exists")

// Store persists Subscription plans and their Purchases.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Subscription, error)
	Save(ctx context.Context, value domain.Subscription) error
	List(ctx context.Context, activeOnly bool) ([]domain.Subscription, error)

	GetPurchase(ctx context.Context, id string) (domain.Purchase, error)
	SavePurchase(ctx context.Context, value domain.Purchase) error

	// ActivePurchase returns the syndic's current active purchase, or
	// subscription.ErrNoActivePlan when there is none.
	ActivePurchase(ctx context.Context, syndicID string) (domain.Purchase, error)

	// ListPurchases returns a syndic's purchase history, newest first. An
	// empty syndicID lists all purchases (admin view).
	ListPurchases(ctx context.Context, syndicID string, limit, offset int) ([]domain.Purchase, error)

	// ExpireOverdue flips active purchases past their expiry to expired.
	ExpireOverdue(ctx context.Context) (int, error)
}
