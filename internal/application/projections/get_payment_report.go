package projections

import (
	"context"
	"time"

	paymentStore "syndicway/internal/adapters/storage/payment"
	residentStore "syndicway/internal/adapters/storage/resident"
	"syndicway/internal/application/listutil"
	"syndicway/internal/domain/payment"
	"syndicway/internal/domain/resident"
)

// PaymentListStore defines the payment store interface needed by payment views.
type PaymentListStore interface {
	List(ctx context.Context, filter paymentStore.ListFilter) ([]payment.Payment, error)
	Count(ctx context.Context, filter paymentStore.ListFilter) (int, error)
	PaidPayerIDs(ctx context.Context, receiverID, month string) ([]string, error)
	MonthTotals(ctx context.Context, receiverID string, limit int) ([]paymentStore.MonthTotal, error)
}

// PaymentListResidentStore resolves payer names for payment views.
type PaymentListResidentStore interface {
	ListActive(ctx context.Context, residenceID string) ([]resident.Resident, error)
	List(ctx context.Context, filter residentStore.ListFilter) ([]resident.Resident, error)
}

// GetPaymentListQuery carries query parameters for the payment list.
type GetPaymentListQuery struct {
	SyndicID    string
	ResidenceID string
	Month       string // exact month filter
	FromMonth   string
	ToMonth     string
	Params      listutil.ListParams
}

// PaymentRow is one row of the payment list with the payer joined in.
type PaymentRow struct {
	payment.Payment
	PayerName string
	Amount    string // formatted
}

// GetPaymentListResult carries the query result.
type GetPaymentListResult struct {
	Payments []PaymentRow
	PageInfo listutil.PageInfo
}

// GetPaymentListDeps holds dependencies for payment views.
type GetPaymentListDeps struct {
	PaymentStore  PaymentListStore
	ResidentStore PaymentListResidentStore
}

// QueryGetPaymentList retrieves a paginated payment list with payer
// names, filtered by exact month or period.
// PRE: Valid query parameters
// POST: Returns payments newest month first
func QueryGetPaymentList(ctx context.Context, query GetPaymentListQuery, deps GetPaymentListDeps) (GetPaymentListResult, error) {
	filter := paymentStore.ListFilter{
		ReceiverID: query.SyndicID,
		Month:      query.Month,
		FromMonth:  query.FromMonth,
		ToMonth:    query.ToMonth,
	}

	total, err := deps.PaymentStore.Count(ctx, filter)
	if err != nil {
		return GetPaymentListResult{}, err
	}
	pageInfo := listutil.NewPageInfo(query.Params.Page, query.Params.PerPage, total)

	filter.Limit = pageInfo.PerPage
	filter.Offset = pageInfo.Offset()
	payments, err := deps.PaymentStore.List(ctx, filter)
	if err != nil {
		return GetPaymentListResult{}, err
	}

	names := make(map[string]string)
	if residents, err := deps.ResidentStore.List(ctx, residentStore.ListFilter{ResidenceID: query.ResidenceID}); err == nil {
		for _, r := range residents {
			names[r.ID] = r.Name
		}
	}

	rows := make([]PaymentRow, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, PaymentRow{
			Payment:   p,
			PayerName: names[p.PayerID],
			Amount:    payment.FormatAmount(p.AmountCents),
		})
	}

	return GetPaymentListResult{Payments: rows, PageInfo: pageInfo}, nil
}

// GetPaymentReportQuery carries query parameters for the monthly report.
type GetPaymentReportQuery struct {
	SyndicID    string
	ResidenceID string
	Month       string // defaults to current month
}

// PaymentReportResult carries the monthly payment report.
type PaymentReportResult struct {
	Month       string
	TotalCents  int
	Total       string // formatted
	PaidCount   int
	UnpaidCount int

	Paid   []resident.Resident
	Unpaid []resident.Resident

	MonthTotals []paymentStore.MonthTotal // recent months, newest first
}

// QueryGetPaymentReport builds the monthly collection report: who paid,
// who has not, the month total and a recent-months trend.
// PRE: Month is YYYY-MM or empty for current
// POST: Paid/Unpaid partition the residence's active residents
func QueryGetPaymentReport(ctx context.Context, query GetPaymentReportQuery, deps GetPaymentListDeps, now time.Time) (PaymentReportResult, error) {
	month := query.Month
	if month == "" {
		month = payment.CurrentMonth(now)
	}
	if !payment.ValidMonth(month) {
		return PaymentReportResult{}, payment.ErrInvalidMonth
	}
	result := PaymentReportResult{Month: month}

	residents, err := deps.ResidentStore.ListActive(ctx, query.ResidenceID)
	if err != nil {
		return PaymentReportResult{}, err
	}

	paidIDs, err := deps.PaymentStore.PaidPayerIDs(ctx, query.SyndicID, month)
	if err != nil {
		return PaymentReportResult{}, err
	}
	paid := make(map[string]bool, len(paidIDs))
	for _, id := range paidIDs {
		paid[id] = true
	}

	for _, r := range residents {
		if paid[r.ID] {
			result.Paid = append(result.Paid, r)
		} else {
			result.Unpaid = append(result.Unpaid, r)
		}
	}
	result.PaidCount = len(result.Paid)
	result.UnpaidCount = len(result.Unpaid)

	if totals, err := deps.PaymentStore.MonthTotals(ctx, query.SyndicID, 12); err == nil {
		result.MonthTotals = totals
		for _, mt := range totals {
			if mt.Month == month {
				result.TotalCents = mt.TotalCents
			}
		}
	}
	result.Total = payment.FormatAmount(result.TotalCents)

	return result, nil
}
