package projections

import (
	"context"
	"time"

	announcementStore "syndicway/internal/adapters/storage/announcement"
	apartmentStore "syndicway/internal/adapters/storage/apartment"
	residentStore "syndicway/internal/adapters/storage/resident"
	"syndicway/internal/domain/payment"
	"syndicway/internal/domain/resident"
	"syndicway/internal/domain/subscription"
)

// DashboardResidentStore defines the resident store interface needed by the dashboard.
type DashboardResidentStore interface {
	List(ctx context.Context, filter residentStore.ListFilter) ([]resident.Resident, error)
	Count(ctx context.Context, filter residentStore.ListFilter) (int, error)
}

// DashboardApartmentStore defines the apartment store interface needed by the dashboard.
type DashboardApartmentStore interface {
	Count(ctx context.Context, filter apartmentStore.ListFilter) (int, error)
}

// DashboardPaymentStore defines the payment store interface needed by the dashboard.
type DashboardPaymentStore interface {
	PaidPayerIDs(ctx context.Context, receiverID, month string) ([]string, error)
}

// DashboardMessageStore defines the message store interface needed by the dashboard.
type DashboardMessageStore interface {
	UnreadCount(ctx context.Context, receiverID string) (int, error)
}

// DashboardAnnouncementStore defines the announcement store interface needed by the dashboard.
type DashboardAnnouncementStore interface {
	ListByPoster(ctx context.Context, posterID string, limit, offset int) ([]announcementStore.WithStats, error)
}

// DashboardPlanStore resolves the syndic's active purchase and its plan.
type DashboardPlanStore interface {
	ActivePurchase(ctx context.Context, syndicID string) (subscription.Purchase, error)
	GetByID(ctx context.Context, id string) (subscription.Subscription, error)
}

// GetDashboardQuery carries input for the syndic dashboard projection.
type GetDashboardQuery struct {
	SyndicID    string
	ResidenceID string
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	ResidentStore     DashboardResidentStore
	ApartmentStore    DashboardApartmentStore
	PaymentStore      DashboardPaymentStore
	MessageStore      DashboardMessageStore
	AnnouncementStore DashboardAnnouncementStore
	PlanStore         DashboardPlanStore // optional: nil skips plan summary
}

// DashboardResult carries the output of the syndic dashboard projection.
type DashboardResult struct {
	ActiveResidents   int
	InactiveResidents int

	TotalApartments  int
	VacantApartments int

	CurrentMonth string
	PaidCount    int
	UnpaidCount  int

	UnreadMessages int

	LatestAnnouncements []announcementStore.WithStats

	// Plan summary (zero values when no active plan)
	PlanName    string
	PlanExpires time.Time
}

// QueryGetDashboard aggregates the syndic's landing page numbers.
// Sub-queries that fail leave their section at zero rather than failing
// the whole page.
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps, now time.Time) (DashboardResult, error) {
	result := DashboardResult{CurrentMonth: payment.CurrentMonth(now)}

	if n, err := deps.ResidentStore.Count(ctx, residentStore.ListFilter{ResidenceID: query.ResidenceID, Status: resident.StatusActive}); err == nil {
		result.ActiveResidents = n
	}
	if n, err := deps.ResidentStore.Count(ctx, residentStore.ListFilter{ResidenceID: query.ResidenceID, Status: resident.StatusInactive}); err == nil {
		result.InactiveResidents = n
	}

	if n, err := deps.ApartmentStore.Count(ctx, apartmentStore.ListFilter{ResidenceID: query.ResidenceID, Floor: -1}); err == nil {
		result.TotalApartments = n
	}
	if n, err := deps.ApartmentStore.Count(ctx, apartmentStore.ListFilter{ResidenceID: query.ResidenceID, Floor: -1, VacantOnly: true}); err == nil {
		result.VacantApartments = n
	}

	if paid, err := deps.PaymentStore.PaidPayerIDs(ctx, query.SyndicID, result.CurrentMonth); err == nil {
		result.PaidCount = len(paid)
		if result.ActiveResidents > result.PaidCount {
			result.UnpaidCount = result.ActiveResidents - result.PaidCount
		}
	}

	if n, err := deps.MessageStore.UnreadCount(ctx, query.SyndicID); err == nil {
		result.UnreadMessages = n
	}

	if latest, err := deps.AnnouncementStore.ListByPoster(ctx, query.SyndicID, 5, 0); err == nil {
		result.LatestAnnouncements = latest
	}

	if deps.PlanStore != nil {
		if purchase, err := deps.PlanStore.ActivePurchase(ctx, query.SyndicID); err == nil {
			result.PlanExpires = purchase.ExpiresAt
			if plan, err := deps.PlanStore.GetByID(ctx, purchase.SubscriptionID); err == nil {
				result.PlanName = plan.Name
			}
		}
	}

	return result, nil
}
