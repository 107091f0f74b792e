package subscription

import (
	"errors"
	"strings"
	"time"
)

// Purchase status constants
const (
	PurchaseActive    = "active"
	PurchaseExpired   = "expired"
	PurchaseCancelled = "cancelled"
)

// Domain errors
var (
	ErrEmptyName       = errors.New("subscription name cannot be empty")
	ErrInvalidPrice    = errors.New("subscription price must be >= 0")
	ErrInvalidDuration = errors.New("subscription duration must be at least 1 month")
	ErrInvalidCaps     = errors.New("subscription caps must be positive")
	ErrInactivePlan    = errors.New("subscription plan is no longer offered")
	ErrNoActivePlan    = errors.New("syndic has no active subscription")
	ErrResidentCap     = errors.New("subscription resident cap reached")
	ErrApartmentCap    = errors.New("subscription apartment cap reached")
)

// Subscription is a plan offered to syndics: a price for a duration with
// resident and apartment caps.
type Subscription struct {
	ID             string
	Name           string
	PriceCents     int
	DurationMonths int
	MaxResidents   int
	MaxApartments  int
	Active         bool
}

// Purchase records a syndic buying a plan.
type Purchase struct {
	ID             string
	SyndicID       string // AccountID of the purchasing syndic
	SubscriptionID string
	PurchasedAt    time.Time
	ExpiresAt      time.Time
	Status         string // active, expired, cancelled
}

// Validate checks if the Subscription has valid data.
// PRE: Subscription struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Subscription) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if s.PriceCents < 0 {
		return ErrInvalidPrice
	}
	if s.DurationMonths < 1 {
		return ErrInvalidDuration
	}
	if s.MaxResidents < 1 || s.MaxApartments < 1 {
		return ErrInvalidCaps
	}
	return nil
}

// ExpiryFrom computes the purchase expiry for this plan from a start time.
// INVARIANT: Subscription fields are not mutated
func (s *Subscription) ExpiryFrom(start time.Time) time.Time {
	return start.AddDate(0, s.DurationMonths, 0)
}

// Validate checks if the Purchase has valid data.
// PRE: Purchase struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Purchase) Validate() error {
	if p.SyndicID == "" {
		return errors.New("purchase must have a syndic")
	}
	if p.SubscriptionID == "" {
		return errors.New("purchase must reference a subscription")
	}
	if p.Status != PurchaseActive && p.Status != PurchaseExpired && p.Status != PurchaseCancelled {
		return errors.New("purchase status must be one of: active, expired, cancelled")
	}
	if !p.ExpiresAt.After(p.PurchasedAt) {
		return errors.New("purchase expiry must be after purchase date")
	}
	return nil
}

// IsCurrent returns true if the purchase is active and unexpired at t.
// INVARIANT: Purchase fields are not mutated
func (p *Purchase) IsCurrent(t time.Time) bool {
	return p.Status == PurchaseActive && t.Before(p.ExpiresAt)
}
