package projections

import (
	"context"
	"testing"

	announcementStore "syndicway/internal/adapters/storage/announcement"
	apartmentStore "syndicway/internal/adapters/storage/apartment"
	residentStore "syndicway/internal/adapters/storage/resident"
	"syndicway/internal/domain/announcement"
	"syndicway/internal/domain/resident"
	"syndicway/internal/domain/subscription"
)

// mockDashboardStores bundles every dashboard dependency behind one struct.
type mockDashboardStores struct {
	activeResidents   int
	inactiveResidents int
	totalApartments   int
	vacantApartments  int
	paidIDs           []string
	unread            int
	announcements     []announcementStore.WithStats
	purchase          subscription.Purchase
	purchaseErr       error
	plan              subscription.Subscription
}

// The resident and apartment Count signatures differ, so each dependency
// gets a thin adapter over the shared fixture.
type dashboardResidentCounter struct{ m *mockDashboardStores }

func (c dashboardResidentCounter) List(_ context.Context, _ residentStore.ListFilter) ([]resident.Resident, error) {
	return nil, nil
}

func (c dashboardResidentCounter) Count(_ context.Context, filter residentStore.ListFilter) (int, error) {
	switch filter.Status {
	case resident.StatusActive:
		return c.m.activeResidents, nil
	case resident.StatusInactive:
		return c.m.inactiveResidents, nil
	}
	return 0, nil
}

type dashboardApartmentCounter struct{ m *mockDashboardStores }

func (c dashboardApartmentCounter) Count(_ context.Context, filter apartmentStore.ListFilter) (int, error) {
	if filter.VacantOnly {
		return c.m.vacantApartments, nil
	}
	return c.m.totalApartments, nil
}

type dashboardPaymentReader struct{ m *mockDashboardStores }

func (r dashboardPaymentReader) PaidPayerIDs(_ context.Context, _, _ string) ([]string, error) {
	return r.m.paidIDs, nil
}

type dashboardMessageReader struct{ m *mockDashboardStores }

func (r dashboardMessageReader) UnreadCount(_ context.Context, _ string) (int, error) {
	return r.m.unread, nil
}

type dashboardAnnouncementReader struct{ m *mockDashboardStores }

func (r dashboardAnnouncementReader) ListByPoster(_ context.Context, _ string, limit, _ int) ([]announcementStore.WithStats, error) {
	if len(r.m.announcements) > limit {
		return r.m.announcements[:limit], nil
	}
	return r.m.announcements, nil
}

type dashboardPlanReader struct{ m *mockDashboardStores }

func (r dashboardPlanReader) ActivePurchase(_ context.Context, _ string) (subscription.Purchase, error) {
	if r.m.purchaseErr != nil {
		return subscription.Purchase{}, r.m.purchaseErr
	}
	return r.m.purchase, nil
}

func (r dashboardPlanReader) GetByID(_ context.Context, _ string) (subscription.Subscription, error) {
	return r.m.plan, nil
}

func dashboardDeps(m *mockDashboardStores) GetDashboardDeps {
	return GetDashboardDeps{
		ResidentStore:     dashboardResidentCounter{m},
		ApartmentStore:    dashboardApartmentCounter{m},
		PaymentStore:      dashboardPaymentReader{m},
		MessageStore:      dashboardMessageReader{m},
		AnnouncementStore: dashboardAnnouncementReader{m},
		PlanStore:         dashboardPlanReader{m},
	}
}

// TestQueryGetDashboard verifies the aggregated landing page numbers.
func TestQueryGetDashboard(t *testing.T) {
	expires := reportNow.AddDate(0, 6, 0)
	m := &mockDashboardStores{
		activeResidents:   10,
		inactiveResidents: 2,
		totalApartments:   12,
		vacantApartments:  1,
		paidIDs:           []string{"r1", "r2", "r3"},
		unread:            4,
		announcements: []announcementStore.WithStats{
			{Announcement: announcement.Announcement{ID: "an1", Title: "Water cut"}, RecipientCount: 10, ReadCount: 6},
		},
		purchase: subscription.Purchase{ID: "pur1", SubscriptionID: "plan1", ExpiresAt: expires, Status: subscription.PurchaseActive},
		plan:     subscription.Subscription{ID: "plan1", Name: "Standard"},
	}

	result, err := QueryGetDashboard(context.Background(), GetDashboardQuery{
		SyndicID:    "syn1",
		ResidenceID: "res1",
	}, dashboardDeps(m), reportNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ActiveResidents != 10 || result.InactiveResidents != 2 {
		t.Errorf("residents = %d/%d, want 10/2", result.ActiveResidents, result.InactiveResidents)
	}
	if result.TotalApartments != 12 || result.VacantApartments != 1 {
		t.Errorf("apartments = %d/%d, want 12/1", result.TotalApartments, result.VacantApartments)
	}
	if result.CurrentMonth != "2026-03" {
		t.Errorf("CurrentMonth = %q, want 2026-03", result.CurrentMonth)
	}
	if result.PaidCount != 3 || result.UnpaidCount != 7 {
		t.Errorf("paid/unpaid = %d/%d, want 3/7", result.PaidCount, result.UnpaidCount)
	}
	if result.UnreadMessages != 4 {
		t.Errorf("UnreadMessages = %d, want 4", result.UnreadMessages)
	}
	if len(result.LatestAnnouncements) != 1 {
		t.Errorf("announcements = %d, want 1", len(result.LatestAnnouncements))
	}
	if result.PlanName != "Standard" {
		t.Errorf("PlanName = %q, want Standard", result.PlanName)
	}
	if !result.PlanExpires.Equal(expires) {
		t.Errorf("PlanExpires = %v, want %v", result.PlanExpires, expires)
	}
}

// TestQueryGetDashboard_NoActivePlan verifies the plan summary stays zero
// when the subscription lapsed.
func TestQueryGetDashboard_NoActivePlan(t *testing.T) {
	m := &mockDashboardStores{purchaseErr: subscription.ErrNoActivePlan}

	result, err := QueryGetDashboard(context.Background(), GetDashboardQuery{
		SyndicID:    "syn1",
		ResidenceID: "res1",
	}, dashboardDeps(m), reportNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PlanName != "" {
		t.Errorf("PlanName = %q, want empty", result.PlanName)
	}
	if !result.PlanExpires.IsZero() {
		t.Error("PlanExpires should stay zero")
	}
}

// TestQueryGetDashboard_NilPlanStore verifies the plan section is optional.
func TestQueryGetDashboard_NilPlanStore(t *testing.T) {
	deps := dashboardDeps(&mockDashboardStores{activeResidents: 1})
	deps.PlanStore = nil

	result, err := QueryGetDashboard(context.Background(), GetDashboardQuery{
		SyndicID:    "syn1",
		ResidenceID: "res1",
	}, deps, reportNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ActiveResidents != 1 {
		t.Errorf("ActiveResidents = %d, want 1", result.ActiveResidents)
	}
}
