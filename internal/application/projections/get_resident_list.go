package projections

import (
	"context"
	"time"

	apartmentStore "syndicway/internal/adapters/storage/apartment"
	residentStore "syndicway/internal/adapters/storage/resident"
	"syndicway/internal/application/listutil"
	"syndicway/internal/domain/apartment"
	"syndicway/internal/domain/payment"
	"syndicway/internal/domain/resident"
)

// ResidentListResidentStore defines the resident store interface needed by the list.
type ResidentListResidentStore interface {
	List(ctx context.Context, filter residentStore.ListFilter) ([]resident.Resident, error)
	Count(ctx context.Context, filter residentStore.ListFilter) (int, error)
}

// ResidentListApartmentStore defines the apartment store interface needed by the list.
type ResidentListApartmentStore interface {
	List(ctx context.Context, filter apartmentStore.ListFilter) ([]apartment.Apartment, error)
}

// GetResidentListQuery carries query parameters for the resident list.
type GetResidentListQuery struct {
	SyndicID    string
	ResidenceID string
	Status      string
	Params      listutil.ListParams
}

// ResidentRow is one row of the resident list with joined context.
type ResidentRow struct {
	resident.Resident
	ApartmentLabel string // "2 / B4" when assigned
	PaidThisMonth  bool
}

// GetResidentListResult carries the query result.
type GetResidentListResult struct {
	Residents []ResidentRow
	PageInfo  listutil.PageInfo
}

// GetResidentListDeps holds dependencies for GetResidentList.
type GetResidentListDeps struct {
	ResidentStore  ResidentListResidentStore
	ApartmentStore ResidentListApartmentStore
	PaymentStore   DashboardPaymentStore
}

// QueryGetResidentList retrieves a paginated, sortable resident list
// with apartment labels and current-month payment flags.
// PRE: Valid query parameters
// POST: Returns residents of the residence matching search and status
func QueryGetResidentList(ctx context.Context, query GetResidentListQuery, deps GetResidentListDeps, now time.Time) (GetResidentListResult, error) {
	filter := residentStore.ListFilter{
		ResidenceID: query.ResidenceID,
		Status:      query.Status,
		Search:      query.Params.Search,
		Sort:        query.Params.Sort,
		Dir:         query.Params.Dir,
	}

	total, err := deps.ResidentStore.Count(ctx, filter)
	if err != nil {
		return GetResidentListResult{}, err
	}
	pageInfo := listutil.NewPageInfo(query.Params.Page, query.Params.PerPage, total)

	filter.Limit = pageInfo.PerPage
	filter.Offset = pageInfo.Offset()
	residents, err := deps.ResidentStore.List(ctx, filter)
	if err != nil {
		return GetResidentListResult{}, err
	}

	// Apartment labels by resident
	labels := make(map[string]string)
	if apartments, err := deps.ApartmentStore.List(ctx, apartmentStore.ListFilter{ResidenceID: query.ResidenceID, Floor: -1}); err == nil {
		for _, a := range apartments {
			if a.ResidentID != "" {
				labels[a.ResidentID] = a.Label()
			}
		}
	}

	// Current month payment flags
	paid := make(map[string]bool)
	if ids, err := deps.PaymentStore.PaidPayerIDs(ctx, query.SyndicID, payment.CurrentMonth(now)); err == nil {
		for _, id := range ids {
			paid[id] = true
		}
	}

	rows := make([]ResidentRow, 0, len(residents))
	for _, r := range residents {
		rows = append(rows, ResidentRow{
			Resident:       r,
			ApartmentLabel: labels[r.ID],
			PaidThisMonth:  paid[r.ID],
		})
	}

	return GetResidentListResult{Residents: rows, PageInfo: pageInfo}, nil
}
