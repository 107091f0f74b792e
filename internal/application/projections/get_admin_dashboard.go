package projections

import (
	"context"
	"sort"
	"time"

	accountStore "syndicway/internal/adapters/storage/account"
	"syndicway/internal/domain/account"
	"syndicway/internal/domain/subscription"
)

// AdminAccountStore defines the account store interface needed by the admin dashboard.
type AdminAccountStore interface {
	List(ctx context.Context, filter accountStore.ListFilter) ([]account.Account, error)
}

// AdminPurchaseStore defines the purchase store interface needed by the admin dashboard.
type AdminPurchaseStore interface {
	ListPurchases(ctx context.Context, syndicID string, limit, offset int) ([]subscription.Purchase, error)
	GetByID(ctx context.Context, id string) (subscription.Subscription, error)
	List(ctx context.Context, activeOnly bool) ([]subscription.Subscription, error)
}

// GetAdminDashboardDeps holds dependencies for the admin dashboard projection.
type GetAdminDashboardDeps struct {
	AccountStore  AdminAccountStore
	PurchaseStore AdminPurchaseStore
}

// MonthRevenue aggregates plan revenue for one purchase month.
type MonthRevenue struct {
	Month        string // YYYY-MM
	RevenueCents int
	Purchases    int
}

// AdminDashboardResult carries the output of the admin dashboard projection.
type AdminDashboardResult struct {
	SyndicCount     int
	ActiveSyndics   int
	ActivePurchases int
	PlanCount       int

	RevenueByMonth []MonthRevenue // newest month first
}

// QueryGetAdminDashboard aggregates platform-level numbers for the admin
// landing page: syndic counts, active purchases and revenue by month.
func QueryGetAdminDashboard(ctx context.Context, deps GetAdminDashboardDeps, now time.Time) (AdminDashboardResult, error) {
	var result AdminDashboardResult

	syndics, err := deps.AccountStore.List(ctx, accountStore.ListFilter{Role: account.RoleSyndic})
	if err != nil {
		return AdminDashboardResult{}, err
	}
	result.SyndicCount = len(syndics)
	for _, s := range syndics {
		if s.IsActive() {
			result.ActiveSyndics++
		}
	}

	if plans, err := deps.PurchaseStore.List(ctx, false); err == nil {
		result.PlanCount = len(plans)
	}

	purchases, err := deps.PurchaseStore.ListPurchases(ctx, "", 1000, 0)
	if err != nil {
		return AdminDashboardResult{}, err
	}

	priceByPlan := make(map[string]int)
	revenue := make(map[string]*MonthRevenue)
	for _, p := range purchases {
		if p.IsCurrent(now) {
			result.ActivePurchases++
		}
		price, ok := priceByPlan[p.SubscriptionID]
		if !ok {
			plan, err := deps.PurchaseStore.GetByID(ctx, p.SubscriptionID)
			if err != nil {
				continue
			}
			price = plan.PriceCents
			priceByPlan[p.SubscriptionID] = price
		}
		month := p.PurchasedAt.Format("2006-01")
		mr, ok := revenue[month]
		if !ok {
			mr = &MonthRevenue{Month: month}
			revenue[month] = mr
		}
		mr.RevenueCents += price
		mr.Purchases++
	}

	for _, mr := range revenue {
		result.RevenueByMonth = append(result.RevenueByMonth, *mr)
	}
	sort.Slice(result.RevenueByMonth, func(i, j int) bool {
		return result.RevenueByMonth[i].Month > result.RevenueByMonth[j].Month
	})

	return result, nil
}
