package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"syndicway/internal/domain/account"
	"syndicway/internal/domain/apartment"
	"syndicway/internal/domain/residence"
	"syndicway/internal/domain/resident"
	"syndicway/internal/domain/subscription"
)

// SeedAccountStore defines the account store interface needed by seeding.
type SeedAccountStore interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// SeedSubscriptionStore defines the plan store interface needed by seeding.
type SeedSubscriptionStore interface {
	List(ctx context.Context, activeOnly bool) ([]subscription.Subscription, error)
	Save(ctx context.Context, s subscription.Subscription) error
	SavePurchase(ctx context.Context, p subscription.Purchase) error
}

// SeedResidenceStore defines the residence store interface needed by seeding.
type SeedResidenceStore interface {
	GetBySyndicID(ctx context.Context, syndicID string) (residence.Residence, error)
	Save(ctx context.Context, r residence.Residence) error
}

// SeedApartmentStore defines the apartment store interface needed by seeding.
type SeedApartmentStore interface {
	Save(ctx context.Context, a apartment.Apartment) error
}

// SeedResidentStore defines the resident store interface needed by seeding.
type SeedResidentStore interface {
	Save(ctx context.Context, r resident.Resident) error
}

// SeedDeps holds dependencies for seeding orchestrators.
type SeedDeps struct {
	AccountStore      SeedAccountStore
	SubscriptionStore SeedSubscriptionStore
	ResidenceStore    SeedResidenceStore
	ApartmentStore    SeedApartmentStore
	ResidentStore     SeedResidentStore
	GenerateID        func() string
	Now               func() time.Time
}

// ExecuteSeedAdmin ensures the admin account exists. Idempotent.
// PRE: email and password come from configuration
// POST: Admin account exists with the given credentials
func ExecuteSeedAdmin(ctx context.Context, email, password string, deps SeedDeps) error {
	if _, err := deps.AccountStore.GetByEmail(ctx, email); err == nil {
		return nil
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     email,
		Role:      account.RoleAdmin,
		Status:    account.StatusActive,
		CreatedAt: deps.Now(),
	}
	if err := acct.SetPassword(password); err != nil {
		return fmt.Errorf("seed admin password: %w", err)
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return fmt.Errorf("seed admin account: %w", err)
	}

	slog.Info("seed_event", "event", "admin_seeded", "email", email)
	return nil
}

// ExecuteSeedPlans installs the default plan catalogue when none exists.
// Idempotent: an existing catalogue is left untouched.
// POST: At least one active plan exists
func ExecuteSeedPlans(ctx context.Context, deps SeedDeps) error {
	existing, err := deps.SubscriptionStore.List(ctx, false)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	plans := []subscription.Subscription{
		{Name: "Starter", PriceCents: 19900, DurationMonths: 6, MaxResidents: 20, MaxApartments: 20, Active: true},
		{Name: "Standard", PriceCents: 34900, DurationMonths: 12, MaxResidents: 60, MaxApartments: 60, Active: true},
		{Name: "Premium", PriceCents: 59900, DurationMonths: 12, MaxResidents: 200, MaxApartments: 200, Active: true},
	}
	for _, p := range plans {
		p.ID = deps.GenerateID()
		if err := deps.SubscriptionStore.Save(ctx, p); err != nil {
			return fmt.Errorf("seed plan %s: %w", p.Name, err)
		}
	}

	slog.Info("seed_event", "event", "plans_seeded", "count", len(plans))
	return nil
}

// ExecuteSeedDemo creates a demo syndic with a residence, apartments and
// residents. Idempotent; intended for non-production environments only.
// POST: Demo syndic exists with a small populated residence
func ExecuteSeedDemo(ctx context.Context, deps SeedDeps) error {
	const demoEmail = "syndic@demo.syndicway.app"
	const demoPassword = "DemoSyndic123!"

	if _, err := deps.AccountStore.GetByEmail(ctx, demoEmail); err == nil {
		return nil
	}
	now := deps.Now()

	syndic := account.Account{
		ID:        deps.GenerateID(),
		Email:     demoEmail,
		Role:      account.RoleSyndic,
		Status:    account.StatusActive,
		CreatedAt: now,
	}
	if err := syndic.SetPassword(demoPassword); err != nil {
		return err
	}
	if err := deps.AccountStore.Save(ctx, syndic); err != nil {
		return err
	}

	res := residence.Residence{
		ID:       deps.GenerateID(),
		SyndicID: syndic.ID,
		Name:     "Résidence Al Andalous",
		Address:  "12 Rue des Orangers",
		City:     "Casablanca",
	}
	if err := deps.ResidenceStore.Save(ctx, res); err != nil {
		return err
	}

	plans, err := deps.SubscriptionStore.List(ctx, true)
	if err == nil && len(plans) > 0 {
		purchase := subscription.Purchase{
			ID:             deps.GenerateID(),
			SyndicID:       syndic.ID,
			SubscriptionID: plans[0].ID,
			PurchasedAt:    now,
			ExpiresAt:      plans[0].ExpiryFrom(now),
			Status:         subscription.PurchaseActive,
		}
		if err := deps.SubscriptionStore.SavePurchase(ctx, purchase); err != nil {
			return err
		}
	}

	demoResidents := []struct {
		name, email string
		floor       int
		number      string
	}{
		{"Yasmine Alaoui", "yasmine@demo.syndicway.app", 1, "A1"},
		{"Omar Benjelloun", "omar@demo.syndicway.app", 1, "A2"},
		{"Salma Idrissi", "salma@demo.syndicway.app", 2, "B1"},
	}
	for _, d := range demoResidents {
		acct := account.Account{
			ID:        deps.GenerateID(),
			Email:     d.email,
			Role:      account.RoleResident,
			Status:    account.StatusActive,
			CreatedAt: now,
		}
		if err := acct.SetPassword(demoPassword); err != nil {
			return err
		}
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return err
		}

		r := resident.Resident{
			ID:          deps.GenerateID(),
			AccountID:   acct.ID,
			ResidenceID: res.ID,
			Name:        d.name,
			Email:       d.email,
			Status:      resident.StatusActive,
			CreatedAt:   now,
		}
		apt := apartment.Apartment{
			ID:          deps.GenerateID(),
			ResidenceID: res.ID,
			ResidentID:  r.ID,
			Floor:       d.floor,
			Number:      d.number,
			Type:        apartment.TypeStandard,
		}
		r.ApartmentID = apt.ID
		if err := deps.ResidentStore.Save(ctx, r); err != nil {
			return err
		}
		if err := deps.ApartmentStore.Save(ctx, apt); err != nil {
			return err
		}
	}

	slog.Info("seed_event", "event", "demo_seeded", "residence_id", res.ID, "residents", len(demoResidents))
	return nil
}
