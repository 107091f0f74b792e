package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"syndicway/internal/adapters/http/middleware"
	"syndicway/internal/application/listutil"
	"syndicway/internal/application/orchestrators"
	"syndicway/internal/application/projections"
	"syndicway/internal/domain/payment"
)

// handlePayments handles GET (list) and POST (record) for /payments
func handlePayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := middleware.GetSessionFromContext(ctx)
	res, ok := syndicResidence(r)
	if !ok {
		http.Error(w, "no residence configured for this account", http.StatusConflict)
		return
	}

	if r.Method == "GET" {
		lp := listutil.ParseListParams(r.URL.Query(), nil, nil)
		window := listutil.ParseMonthParams(r.URL.Query())

		query := projections.GetPaymentListQuery{
			SyndicID:    session.AccountID,
			ResidenceID: res.ID,
			Month:       window.Month,
			FromMonth:   window.From,
			ToMonth:     window.To,
			Params:      lp,
		}
		deps := projections.GetPaymentListDeps{
			PaymentStore:  stores.PaymentStore,
			ResidentStore: stores.ResidentStore,
		}

		result, err := projections.QueryGetPaymentList(ctx, query, deps)
		if err != nil {
			internalError(w, err)
			return
		}

		if isHTMLRequest(r) {
			residents, _ := stores.ResidentStore.ListActive(ctx, res.ID)
			renderTemplate(w, r, "payments.html", map[string]any{
				"Payments":     result.Payments,
				"PageInfo":     result.PageInfo,
				"Month":        query.Month,
				"FromMonth":    query.FromMonth,
				"ToMonth":      query.ToMonth,
				"Residents":    residents,
				"CurrentMonth": payment.CurrentMonth(timeNow()),
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
		return
	}

	if r.Method == "POST" {
		input := orchestrators.RecordPaymentInput{
			SyndicID:    session.AccountID,
			ResidenceID: res.ID,
		}

		if isFormRequest(r) {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			amount, err := strconv.Atoi(r.FormValue("AmountCents"))
			if err != nil {
				http.Error(w, "Amount must be a number of cents", http.StatusBadRequest)
				return
			}
			input.PayerID = r.FormValue("PayerID")
			input.Month = r.FormValue("Month")
			input.AmountCents = amount
		} else {
			if err := strictDecode(r, &input); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
			input.SyndicID = session.AccountID
			input.ResidenceID = res.ID
		}

		deps := orchestrators.RecordPaymentDeps{
			PaymentStore:  stores.PaymentStore,
			ResidentStore: stores.ResidentStore,
			SendEmail:     sendEmail,
			GenerateID:    generateID,
			Now:           timeNow,
		}

		_, err := orchestrators.ExecuteRecordPayment(ctx, input, deps)
		switch {
		case err == nil:
		case errors.Is(err, payment.ErrDuplicate):
			if isHTMLRequest(r) {
				redirectWithFlash(w, r, "/payments", "error", err.Error())
				return
			}
			http.Error(w, err.Error(), http.StatusConflict)
			return
		case errors.Is(err, payment.ErrInvalidMonth), errors.Is(err, payment.ErrInvalidAmount):
			if isHTMLRequest(r) {
				redirectWithFlash(w, r, "/payments", "error", err.Error())
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		default:
			internalError(w, err)
			return
		}

		redirectWithFlash(w, r, "/payments", "success", "Payment recorded")
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handlePaymentDelete handles POST /payments/delete
// Deletion corrects a mistaken entry; the month becomes unpaid again.
func handlePaymentDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	session, _ := middleware.GetSessionFromContext(r.Context())
	res, ok := syndicResidence(r)
	if !ok {
		http.Error(w, "no residence configured for this account", http.StatusConflict)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.DeletePaymentInput{
		SyndicID:    session.AccountID,
		ResidenceID: res.ID,
		PayerID:     r.FormValue("PayerID"),
		Month:       r.FormValue("Month"),
	}
	deps := orchestrators.RecordPaymentDeps{
		PaymentStore:  stores.PaymentStore,
		ResidentStore: stores.ResidentStore,
		SendEmail:     sendEmail,
		GenerateID:    generateID,
		Now:           timeNow,
	}

	if err := orchestrators.ExecuteDeletePayment(r.Context(), input, deps); err != nil {
		internalError(w, err)
		return
	}

	redirectWithFlash(w, r, "/payments", "success", "Payment removed")
}

// handlePaymentReport handles GET /payments/report
func handlePaymentReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	session, _ := middleware.GetSessionFromContext(ctx)
	res, ok := syndicResidence(r)
	if !ok {
		http.Error(w, "no residence configured for this account", http.StatusConflict)
		return
	}

	query := projections.GetPaymentReportQuery{
		SyndicID:    session.AccountID,
		ResidenceID: res.ID,
		Month:       listutil.ParseMonthParams(r.URL.Query()).Month,
	}
	deps := projections.GetPaymentListDeps{
		PaymentStore:  stores.PaymentStore,
		ResidentStore: stores.ResidentStore,
	}

	result, err := projections.QueryGetPaymentReport(ctx, query, deps, timeNow())
	if err != nil {
		if errors.Is(err, payment.ErrInvalidMonth) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		renderTemplate(w, r, "payment_report.html", map[string]any{
			"Report": result,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// handlePaymentRemind handles POST /payments/remind
// An empty ResidentID reminds every unpaid active resident.
func handlePaymentRemind(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	session, _ := middleware.GetSessionFromContext(ctx)
	res, ok := syndicResidence(r)
	if !ok {
		http.Error(w, "no residence configured for this account", http.StatusConflict)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.SendReminderInput{
		SyndicID:    session.AccountID,
		ResidenceID: res.ID,
		Month:       r.FormValue("Month"),
		ResidentID:  r.FormValue("ResidentID"),
	}
	deps := orchestrators.SendReminderDeps{
		ResidentStore:     stores.ResidentStore,
		PaymentStore:      stores.PaymentStore,
		NotificationStore: stores.NotificationStore,
		SendEmail:         sendEmail,
		GenerateID:        generateID,
		Now:               timeNow,
	}

	result, err := orchestrators.ExecuteSendReminder(ctx, input, deps)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidMonth) {
			redirectWithFlash(w, r, "/payments/report", "error", err.Error())
			return
		}
		internalError(w, err)
		return
	}

	text := strconv.Itoa(result.Reminded) + " reminder(s) sent"
	if result.Skipped > 0 {
		text += ", " + strconv.Itoa(result.Skipped) + " already paid"
	}
	redirectWithFlash(w, r, "/payments/report", "success", text)
}
