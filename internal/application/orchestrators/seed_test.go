package orchestrators

import (
	"context"
	"testing"

	"syndicway/internal/domain/account"
)

func seedDeps(accounts *mockAccountStore, plans *mockSubscriptionStore) SeedDeps {
	return SeedDeps{
		AccountStore:      accounts,
		SubscriptionStore: plans,
		ResidenceStore:    newMockResidenceStore(),
		ApartmentStore:    newMockApartmentStore(),
		ResidentStore:     newMockResidentStore(),
		GenerateID:        newSeqIDGen(),
		Now:               fixedNow,
	}
}

// TestExecuteSeedAdmin verifies the admin account is created once.
func TestExecuteSeedAdmin(t *testing.T) {
	accounts := newMockAccountStore()
	deps := seedDeps(accounts, newMockSubscriptionStore())

	if err := ExecuteSeedAdmin(context.Background(), "admin@syndicway.app", "adminpassword1", deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts.accounts) != 1 {
		t.Fatalf("accounts = %d, want 1", len(accounts.accounts))
	}
	for _, a := range accounts.accounts {
		if a.Role != account.RoleAdmin {
			t.Errorf("Role = %q, want admin", a.Role)
		}
		if err := a.CheckPassword("adminpassword1"); err != nil {
			t.Errorf("seeded password should verify: %v", err)
		}
	}

	// second run is a no-op
	if err := ExecuteSeedAdmin(context.Background(), "admin@syndicway.app", "adminpassword1", deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts.accounts) != 1 {
		t.Errorf("accounts = %d after re-run, want still 1", len(accounts.accounts))
	}
}

// TestExecuteSeedAdmin_ShortPassword verifies the password rule applies to
// the configured credential too.
func TestExecuteSeedAdmin_ShortPassword(t *testing.T) {
	deps := seedDeps(newMockAccountStore(), newMockSubscriptionStore())
	if err := ExecuteSeedAdmin(context.Background(), "admin@syndicway.app", "short", deps); err == nil {
		t.Error("expected error for a short admin password")
	}
}

// TestExecuteSeedPlans verifies the default catalogue lands once.
func TestExecuteSeedPlans(t *testing.T) {
	plans := newMockSubscriptionStore()
	deps := seedDeps(newMockAccountStore(), plans)

	if err := ExecuteSeedPlans(context.Background(), deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plans.plans) != 3 {
		t.Fatalf("plans = %d, want 3", len(plans.plans))
	}
	for _, p := range plans.plans {
		if !p.Active {
			t.Errorf("plan %s should be active", p.Name)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("seeded plan %s invalid: %v", p.Name, err)
		}
	}

	// an existing catalogue is left untouched, even an all-inactive one
	if err := ExecuteSeedPlans(context.Background(), deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plans.plans) != 3 {
		t.Errorf("plans = %d after re-run, want still 3", len(plans.plans))
	}
}

// TestExecuteSeedDemo verifies the demo residence and its idempotency.
func TestExecuteSeedDemo(t *testing.T) {
	accounts := newMockAccountStore()
	plans := newMockSubscriptionStore()
	deps := seedDeps(accounts, plans)
	residences := deps.ResidenceStore.(*mockResidenceStore)
	apartments := deps.ApartmentStore.(*mockApartmentStore)
	residents := deps.ResidentStore.(*mockResidentStore)

	if err := ExecuteSeedPlans(context.Background(), deps); err != nil {
		t.Fatalf("seed plans: %v", err)
	}
	if err := ExecuteSeedDemo(context.Background(), deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// one syndic plus three resident accounts
	if len(accounts.accounts) != 4 {
		t.Errorf("accounts = %d, want 4", len(accounts.accounts))
	}
	if len(residences.residences) != 1 {
		t.Errorf("residences = %d, want 1", len(residences.residences))
	}
	if len(apartments.apartments) != 3 {
		t.Errorf("apartments = %d, want 3", len(apartments.apartments))
	}
	if len(residents.residents) != 3 {
		t.Errorf("residents = %d, want 3", len(residents.residents))
	}
	if len(plans.purchases) != 1 {
		t.Errorf("purchases = %d, want 1 (demo syndic subscribed)", len(plans.purchases))
	}
	for _, a := range apartments.apartments {
		if a.IsVacant() {
			t.Errorf("demo apartment %s should be occupied", a.ID)
		}
	}

	if err := ExecuteSeedDemo(context.Background(), deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts.accounts) != 4 {
		t.Errorf("accounts = %d after re-run, want still 4", len(accounts.accounts))
	}
}
