package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"syndicway/internal/domain/subscription"
)

// SubscriptionStoreForOrchestrator defines the store interface needed by plan operations.
type SubscriptionStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (subscription.Subscription, error)
	Save(ctx context.Context, s subscription.Subscription) error
	SavePurchase(ctx context.Context, p subscription.Purchase) error
	ActivePurchase(ctx context.Context, syndicID string) (subscription.Purchase, error)
}

// SavePlanInput carries input for creating or editing a plan.
type SavePlanInput struct {
	PlanID         string // empty creates a new plan
	Name           string
	PriceCents     int
	DurationMonths int
	MaxResidents   int
	MaxApartments  int
	Active         bool
}

// SubscriptionDeps holds dependencies for subscription orchestrators.
type SubscriptionDeps struct {
	SubscriptionStore SubscriptionStoreForOrchestrator
	GenerateID        func() string
	Now               func() time.Time
}

// ExecuteSavePlan creates or updates a subscription plan. Existing
// purchases keep the caps they were bought under; edits only affect
// future purchases.
// PRE: Caller is an admin; plan fields are valid
// POST: Plan persisted
func ExecuteSavePlan(ctx context.Context, input SavePlanInput, deps SubscriptionDeps) (subscription.Subscription, error) {
	s := subscription.Subscription{
		ID:             input.PlanID,
		Name:           input.Name,
		PriceCents:     input.PriceCents,
		DurationMonths: input.DurationMonths,
		MaxResidents:   input.MaxResidents,
		MaxApartments:  input.MaxApartments,
		Active:         input.Active,
	}
	if s.ID == "" {
		s.ID = deps.GenerateID()
	} else {
		if _, err := deps.SubscriptionStore.GetByID(ctx, s.ID); err != nil {
			return subscription.Subscription{}, err
		}
	}
	if err := s.Validate(); err != nil {
		return subscription.Subscription{}, err
	}

	if err := deps.SubscriptionStore.Save(ctx, s); err != nil {
		return subscription.Subscription{}, err
	}

	slog.Info("subscription_event", "event", "plan_saved", "plan_id", s.ID, "name", s.Name, "active", s.Active)
	return s, nil
}

// DeactivatePlanInput carries input for retiring a plan.
type DeactivatePlanInput struct {
	PlanID string
}

// ExecuteDeactivatePlan retires a plan from the catalogue without
// touching existing purchases.
// PRE: Plan exists
// POST: Plan marked inactive
func ExecuteDeactivatePlan(ctx context.Context, input DeactivatePlanInput, deps SubscriptionDeps) error {
	if input.PlanID == "" {
		return errors.New("plan ID is required")
	}

	s, err := deps.SubscriptionStore.GetByID(ctx, input.PlanID)
	if err != nil {
		return err
	}
	s.Active = false

	if err := deps.SubscriptionStore.Save(ctx, s); err != nil {
		return err
	}

	slog.Info("subscription_event", "event", "plan_deactivated", "plan_id", s.ID)
	return nil
}

// PurchasePlanInput carries input for a syndic buying a plan.
type PurchasePlanInput struct {
	SyndicID string
	PlanID   string
}

// ExecutePurchasePlan records a syndic buying a plan. A still-current
// purchase is cancelled and replaced; the new expiry runs from now.
// PRE: Plan exists and is active
// POST: New active purchase persisted with computed expiry
func ExecutePurchasePlan(ctx context.Context, input PurchasePlanInput, deps SubscriptionDeps) (subscription.Purchase, error) {
	if input.SyndicID == "" || input.PlanID == "" {
		return subscription.Purchase{}, errors.New("syndic and plan are required")
	}

	plan, err := deps.SubscriptionStore.GetByID(ctx, input.PlanID)
	if err != nil {
		return subscription.Purchase{}, err
	}
	if !plan.Active {
		return subscription.Purchase{}, subscription.ErrInactivePlan
	}

	now := deps.Now()

	// Replace any current purchase
	if current, err := deps.SubscriptionStore.ActivePurchase(ctx, input.SyndicID); err == nil {
		current.Status = subscription.PurchaseCancelled
		if err := deps.SubscriptionStore.SavePurchase(ctx, current); err != nil {
			return subscription.Purchase{}, err
		}
	} else if !errors.Is(err, subscription.ErrNoActivePlan) {
		return subscription.Purchase{}, err
	}

	p := subscription.Purchase{
		ID:             deps.GenerateID(),
		SyndicID:       input.SyndicID,
		SubscriptionID: plan.ID,
		PurchasedAt:    now,
		ExpiresAt:      plan.ExpiryFrom(now),
		Status:         subscription.PurchaseActive,
	}
	if err := p.Validate(); err != nil {
		return subscription.Purchase{}, err
	}

	if err := deps.SubscriptionStore.SavePurchase(ctx, p); err != nil {
		return subscription.Purchase{}, err
	}

	slog.Info("subscription_event", "event", "plan_purchased", "purchase_id", p.ID, "syndic_id", p.SyndicID, "plan_id", plan.ID, "expires_at", p.ExpiresAt)
	return p, nil
}
