package projections

import (
	"context"

	apartmentStore "syndicway/internal/adapters/storage/apartment"
	residentStore "syndicway/internal/adapters/storage/resident"
	"syndicway/internal/application/listutil"
	"syndicway/internal/domain/apartment"
	"syndicway/internal/domain/resident"
)

// ApartmentListStore defines the apartment store interface needed by the list.
type ApartmentListStore interface {
	List(ctx context.Context, filter apartmentStore.ListFilter) ([]apartment.Apartment, error)
	Count(ctx context.Context, filter apartmentStore.ListFilter) (int, error)
}

// ApartmentListResidentStore resolves occupant names.
type ApartmentListResidentStore interface {
	List(ctx context.Context, filter residentStore.ListFilter) ([]resident.Resident, error)
}

// GetApartmentListQuery carries query parameters for the apartment list.
type GetApartmentListQuery struct {
	ResidenceID string
	Floor       int // -1 for any
	Type        string
	VacantOnly  bool
	Params      listutil.ListParams
}

// ApartmentRow is one row of the apartment list with the occupant joined in.
type ApartmentRow struct {
	apartment.Apartment
	OccupantName string // empty when vacant
}

// GetApartmentListResult carries the query result.
type GetApartmentListResult struct {
	Apartments []ApartmentRow
	PageInfo   listutil.PageInfo
}

// GetApartmentListDeps holds dependencies for GetApartmentList.
type GetApartmentListDeps struct {
	ApartmentStore ApartmentListStore
	ResidentStore  ApartmentListResidentStore
}

// QueryGetApartmentList retrieves a paginated apartment list with
// occupant names, filtered by floor, type and vacancy.
// PRE: Valid query parameters
// POST: Returns apartments ordered by floor then number
func QueryGetApartmentList(ctx context.Context, query GetApartmentListQuery, deps GetApartmentListDeps) (GetApartmentListResult, error) {
	filter := apartmentStore.ListFilter{
		ResidenceID: query.ResidenceID,
		Floor:       query.Floor,
		Type:        query.Type,
		VacantOnly:  query.VacantOnly,
	}

	total, err := deps.ApartmentStore.Count(ctx, filter)
	if err != nil {
		return GetApartmentListResult{}, err
	}
	pageInfo := listutil.NewPageInfo(query.Params.Page, query.Params.PerPage, total)

	filter.Limit = pageInfo.PerPage
	filter.Offset = pageInfo.Offset()
	apartments, err := deps.ApartmentStore.List(ctx, filter)
	if err != nil {
		return GetApartmentListResult{}, err
	}

	names := make(map[string]string)
	if residents, err := deps.ResidentStore.List(ctx, residentStore.ListFilter{ResidenceID: query.ResidenceID}); err == nil {
		for _, r := range residents {
			names[r.ID] = r.Name
		}
	}

	rows := make([]ApartmentRow, 0, len(apartments))
	for _, a := range apartments {
		rows = append(rows, ApartmentRow{
			Apartment:    a,
			OccupantName: names[a.ResidentID],
		})
	}

	return GetApartmentListResult{Apartments: rows, PageInfo: pageInfo}, nil
}
