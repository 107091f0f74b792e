package projections

import (
	"context"
	"errors"
	"testing"
	"time"

	paymentStore "syndicway/internal/adapters/storage/payment"
	residentStore "syndicway/internal/adapters/storage/resident"
	"syndicway/internal/application/listutil"
	"syndicway/internal/domain/payment"
	"syndicway/internal/domain/resident"
)

var reportNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

// mockPaymentListStore implements PaymentListStore over fixed slices.
type mockPaymentListStore struct {
	payments []payment.Payment
	paidIDs  []string
	totals   []paymentStore.MonthTotal
	err      error
}

func (m *mockPaymentListStore) List(_ context.Context, filter paymentStore.ListFilter) ([]payment.Payment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []payment.Payment
	for _, p := range m.payments {
		if filter.Month != "" && p.MonthPaid != filter.Month {
			continue
		}
		out = append(out, p)
	}
	if filter.Offset > len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *mockPaymentListStore) Count(_ context.Context, filter paymentStore.ListFilter) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	n := 0
	for _, p := range m.payments {
		if filter.Month != "" && p.MonthPaid != filter.Month {
			continue
		}
		n++
	}
	return n, nil
}

func (m *mockPaymentListStore) PaidPayerIDs(_ context.Context, _, _ string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.paidIDs, nil
}

func (m *mockPaymentListStore) MonthTotals(_ context.Context, _ string, _ int) ([]paymentStore.MonthTotal, error) {
	return m.totals, nil
}

// mockResidentListStore implements PaymentListResidentStore over a fixed slice.
type mockResidentListStore struct {
	residents []resident.Resident
}

func (m *mockResidentListStore) ListActive(_ context.Context, _ string) ([]resident.Resident, error) {
	var out []resident.Resident
	for _, r := range m.residents {
		if r.Status == resident.StatusActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockResidentListStore) List(_ context.Context, _ residentStore.ListFilter) ([]resident.Resident, error) {
	return m.residents, nil
}

func namedResident(id, name string) resident.Resident {
	return resident.Resident{
		ID:          id,
		AccountID:   "acct-" + id,
		ResidenceID: "res1",
		Name:        name,
		Email:       id + "@residence.ma",
		Status:      resident.StatusActive,
		CreatedAt:   reportNow,
	}
}

// TestQueryGetPaymentReport_Partition verifies paid and unpaid partition
// the active residents.
func TestQueryGetPaymentReport_Partition(t *testing.T) {
	residents := &mockResidentListStore{residents: []resident.Resident{
		namedResident("r1", "Amal"),
		namedResident("r2", "Karim"),
		namedResident("r3", "Salma"),
	}}
	payments := &mockPaymentListStore{
		paidIDs: []string{"r2"},
		totals: []paymentStore.MonthTotal{
			{Month: "2026-03", TotalCents: 40000, Count: 1},
			{Month: "2026-02", TotalCents: 120000, Count: 3},
		},
	}

	result, err := QueryGetPaymentReport(context.Background(), GetPaymentReportQuery{
		SyndicID:    "syn1",
		ResidenceID: "res1",
		Month:       "2026-03",
	}, GetPaymentListDeps{PaymentStore: payments, ResidentStore: residents}, reportNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.PaidCount != 1 || result.UnpaidCount != 2 {
		t.Errorf("paid/unpaid = %d/%d, want 1/2", result.PaidCount, result.UnpaidCount)
	}
	if len(result.Paid) != 1 || result.Paid[0].ID != "r2" {
		t.Errorf("Paid = %v, want [r2]", result.Paid)
	}
	if result.TotalCents != 40000 {
		t.Errorf("TotalCents = %d, want 40000 (the requested month)", result.TotalCents)
	}
	if result.Total != "400.00 MAD" {
		t.Errorf("Total = %q, want formatted amount", result.Total)
	}
	if len(result.MonthTotals) != 2 {
		t.Errorf("MonthTotals = %d, want 2", len(result.MonthTotals))
	}
}

// TestQueryGetPaymentReport_DefaultMonth verifies an empty month means the
// current one.
func TestQueryGetPaymentReport_DefaultMonth(t *testing.T) {
	result, err := QueryGetPaymentReport(context.Background(), GetPaymentReportQuery{
		SyndicID:    "syn1",
		ResidenceID: "res1",
	}, GetPaymentListDeps{
		PaymentStore:  &mockPaymentListStore{},
		ResidentStore: &mockResidentListStore{},
	}, reportNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Month != payment.CurrentMonth(reportNow) {
		t.Errorf("Month = %q, want %q", result.Month, payment.CurrentMonth(reportNow))
	}
}

// TestQueryGetPaymentReport_InvalidMonth verifies the month gate.
func TestQueryGetPaymentReport_InvalidMonth(t *testing.T) {
	_, err := QueryGetPaymentReport(context.Background(), GetPaymentReportQuery{
		SyndicID: "syn1",
		Month:    "march 2026",
	}, GetPaymentListDeps{
		PaymentStore:  &mockPaymentListStore{},
		ResidentStore: &mockResidentListStore{},
	}, reportNow)
	if !errors.Is(err, payment.ErrInvalidMonth) {
		t.Errorf("err = %v, want ErrInvalidMonth", err)
	}
}

// TestQueryGetPaymentList verifies payer names and formatted amounts are
// joined onto the rows.
func TestQueryGetPaymentList(t *testing.T) {
	residents := &mockResidentListStore{residents: []resident.Resident{
		namedResident("r1", "Amal"),
		namedResident("r2", "Karim"),
	}}
	payments := &mockPaymentListStore{payments: []payment.Payment{
		{ID: "p1", PayerID: "r1", ReceiverID: "syn1", AmountCents: 40000, MonthPaid: "2026-03"},
		{ID: "p2", PayerID: "r2", ReceiverID: "syn1", AmountCents: 35050, MonthPaid: "2026-03"},
	}}

	result, err := QueryGetPaymentList(context.Background(), GetPaymentListQuery{
		SyndicID:    "syn1",
		ResidenceID: "res1",
		Month:       "2026-03",
		Params:      listutil.ListParams{PageParams: listutil.PageParams{Page: 1, PerPage: 20}},
	}, GetPaymentListDeps{PaymentStore: payments, ResidentStore: residents})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Payments) != 2 {
		t.Fatalf("rows = %d, want 2", len(result.Payments))
	}
	if result.Payments[0].PayerName != "Amal" {
		t.Errorf("PayerName = %q, want Amal", result.Payments[0].PayerName)
	}
	if result.Payments[1].Amount != "350.50 MAD" {
		t.Errorf("Amount = %q, want 350.50 MAD", result.Payments[1].Amount)
	}
	if result.PageInfo.Total != 2 {
		t.Errorf("Total = %d, want 2", result.PageInfo.Total)
	}
}

// TestQueryGetPaymentList_Pagination verifies the page window.
func TestQueryGetPaymentList_Pagination(t *testing.T) {
	store := &mockPaymentListStore{}
	for i := 0; i < 25; i++ {
		store.payments = append(store.payments, payment.Payment{
			ID: string(rune('a' + i)), PayerID: "r1", ReceiverID: "syn1",
			AmountCents: 40000, MonthPaid: "2026-03",
		})
	}

	result, err := QueryGetPaymentList(context.Background(), GetPaymentListQuery{
		SyndicID: "syn1",
		Params:   listutil.ListParams{PageParams: listutil.PageParams{Page: 2, PerPage: 20}},
	}, GetPaymentListDeps{PaymentStore: store, ResidentStore: &mockResidentListStore{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Payments) != 5 {
		t.Errorf("rows on page 2 = %d, want 5", len(result.Payments))
	}
	if result.PageInfo.TotalPages != 2 {
		t.Errorf("TotalPages = %d, want 2", result.PageInfo.TotalPages)
	}
}
