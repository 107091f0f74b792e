package projections

import (
	"context"
	"strings"
	"testing"

	apartmentStore "syndicway/internal/adapters/storage/apartment"
	residentStore "syndicway/internal/adapters/storage/resident"
	"syndicway/internal/application/listutil"
	"syndicway/internal/domain/apartment"
	"syndicway/internal/domain/resident"
)

// mockResidentPageStore implements ResidentListResidentStore with filter
// support over a fixed slice.
type mockResidentPageStore struct {
	residents []resident.Resident
}

func (m *mockResidentPageStore) matching(filter residentStore.ListFilter) []resident.Resident {
	var out []resident.Resident
	for _, r := range m.residents {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (m *mockResidentPageStore) List(_ context.Context, filter residentStore.ListFilter) ([]resident.Resident, error) {
	out := m.matching(filter)
	if filter.Offset > len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *mockResidentPageStore) Count(_ context.Context, filter residentStore.ListFilter) (int, error) {
	return len(m.matching(filter)), nil
}

// mockApartmentPageStore implements ResidentListApartmentStore.
type mockApartmentPageStore struct {
	apartments []apartment.Apartment
}

func (m *mockApartmentPageStore) List(_ context.Context, _ apartmentStore.ListFilter) ([]apartment.Apartment, error) {
	return m.apartments, nil
}

func residentListDeps(residents *mockResidentPageStore, apartments *mockApartmentPageStore, paidIDs []string) GetResidentListDeps {
	return GetResidentListDeps{
		ResidentStore:  residents,
		ApartmentStore: apartments,
		PaymentStore:   dashboardPaymentReader{&mockDashboardStores{paidIDs: paidIDs}},
	}
}

// TestQueryGetResidentList verifies apartment labels and payment flags are
// joined onto the rows.
func TestQueryGetResidentList(t *testing.T) {
	residents := &mockResidentPageStore{residents: []resident.Resident{
		namedResident("r1", "Amal"),
		namedResident("r2", "Karim"),
	}}
	apartments := &mockApartmentPageStore{apartments: []apartment.Apartment{
		{ID: "ap1", ResidenceID: "res1", ResidentID: "r1", Floor: 2, Number: "B4", Type: apartment.TypeStandard},
		{ID: "ap2", ResidenceID: "res1", Floor: 3, Number: "C1", Type: apartment.TypeStudio},
	}}

	result, err := QueryGetResidentList(context.Background(), GetResidentListQuery{
		SyndicID:    "syn1",
		ResidenceID: "res1",
		Params:      listutil.ListParams{PageParams: listutil.PageParams{Page: 1, PerPage: 20}},
	}, residentListDeps(residents, apartments, []string{"r2"}), reportNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Residents) != 2 {
		t.Fatalf("rows = %d, want 2", len(result.Residents))
	}
	if result.Residents[0].ApartmentLabel != "2 / B4" {
		t.Errorf("ApartmentLabel = %q, want \"2 / B4\"", result.Residents[0].ApartmentLabel)
	}
	if result.Residents[1].ApartmentLabel != "" {
		t.Errorf("unassigned resident should have no label, got %q", result.Residents[1].ApartmentLabel)
	}
	if result.Residents[0].PaidThisMonth {
		t.Error("r1 has not paid this month")
	}
	if !result.Residents[1].PaidThisMonth {
		t.Error("r2 paid this month")
	}
}

// TestQueryGetResidentList_SearchAndStatus verifies the filters reach the store.
func TestQueryGetResidentList_SearchAndStatus(t *testing.T) {
	inactive := namedResident("r3", "Karima")
	inactive.Status = resident.StatusInactive
	residents := &mockResidentPageStore{residents: []resident.Resident{
		namedResident("r1", "Amal"),
		namedResident("r2", "Karim"),
		inactive,
	}}

	result, err := QueryGetResidentList(context.Background(), GetResidentListQuery{
		SyndicID:    "syn1",
		ResidenceID: "res1",
		Status:      resident.StatusActive,
		Params: listutil.ListParams{
			PageParams:   listutil.PageParams{Page: 1, PerPage: 20},
			FilterParams: listutil.FilterParams{Search: "karim"},
		},
	}, residentListDeps(residents, &mockApartmentPageStore{}, nil), reportNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Residents) != 1 || result.Residents[0].ID != "r2" {
		t.Errorf("rows = %+v, want only the active Karim", result.Residents)
	}
}

// TestQueryGetResidentList_Pagination verifies the page window and metadata.
func TestQueryGetResidentList_Pagination(t *testing.T) {
	store := &mockResidentPageStore{}
	for i := 0; i < 45; i++ {
		store.residents = append(store.residents, namedResident(string(rune('a'+i)), "Resident"))
	}

	result, err := QueryGetResidentList(context.Background(), GetResidentListQuery{
		SyndicID:    "syn1",
		ResidenceID: "res1",
		Params:      listutil.ListParams{PageParams: listutil.PageParams{Page: 3, PerPage: 20}},
	}, residentListDeps(store, &mockApartmentPageStore{}, nil), reportNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Residents) != 5 {
		t.Errorf("rows on page 3 = %d, want 5", len(result.Residents))
	}
	if result.PageInfo.TotalPages != 3 || result.PageInfo.Total != 45 {
		t.Errorf("PageInfo = %+v, want 45 total over 3 pages", result.PageInfo)
	}
}
