package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"syndicway/internal/adapters/http/middleware"
	accountStore "syndicway/internal/adapters/storage/account"
	subscriptionStore "syndicway/internal/adapters/storage/subscription"
	"syndicway/internal/application/orchestrators"
	"syndicway/internal/application/projections"
	"syndicway/internal/domain/account"
	"syndicway/internal/domain/residence"
	"syndicway/internal/domain/subscription"
)

// handleAdminDashboard handles GET /admin
func handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	deps := projections.GetAdminDashboardDeps{
		AccountStore:  stores.AccountStore,
		PurchaseStore: stores.SubscriptionStore,
	}

	result, err := projections.QueryGetAdminDashboard(r.Context(), deps, timeNow())
	if err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		renderTemplate(w, r, "admin_dashboard.html", map[string]any{
			"Stats": result,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// syndicRow joins a syndic account with its residence for the admin list.
type syndicRow struct {
	Account   account.Account
	Residence residence.Residence
}

// handleAdminSyndics handles GET (list) and POST (create) for /admin/syndics
func handleAdminSyndics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := middleware.GetSessionFromContext(ctx)

	if r.Method == "GET" {
		syndics, err := stores.AccountStore.List(ctx, accountStore.ListFilter{Role: account.RoleSyndic})
		if err != nil {
			internalError(w, err)
			return
		}

		residencesBySyndic := make(map[string]residence.Residence)
		if all, err := stores.ResidenceStore.List(ctx); err == nil {
			for _, res := range all {
				residencesBySyndic[res.SyndicID] = res
			}
		}

		rows := make([]syndicRow, 0, len(syndics))
		for _, s := range syndics {
			rows = append(rows, syndicRow{Account: s, Residence: residencesBySyndic[s.ID]})
		}

		if isHTMLRequest(r) {
			renderTemplate(w, r, "admin_syndics.html", map[string]any{
				"Syndics": rows,
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rows)
		return
	}

	if r.Method == "POST" {
		input := orchestrators.CreateSyndicInput{AdminID: session.AccountID}

		if isFormRequest(r) {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			input.Email = r.FormValue("Email")
			input.ResidenceName = r.FormValue("ResidenceName")
			input.Address = r.FormValue("Address")
			input.City = r.FormValue("City")
		} else {
			if err := strictDecode(r, &input); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
			input.AdminID = session.AccountID
		}

		deps := orchestrators.CreateSyndicDeps{
			AccountStore:   stores.AccountStore,
			ResidenceStore: stores.ResidenceStore,
			SendEmail:      sendEmail,
			GenerateID:     generateID,
			Now:            timeNow,
		}

		result, err := orchestrators.ExecuteCreateSyndic(ctx, input, deps)
		switch {
		case err == nil:
		case errors.Is(err, accountStore.ErrDuplicateEmail):
			if isHTMLRequest(r) {
				redirectWithFlash(w, r, "/admin/syndics", "error", err.Error())
				return
			}
			http.Error(w, err.Error(), http.StatusConflict)
			return
		default:
			internalError(w, err)
			return
		}

		text := "Syndic created; credentials sent by email"
		if !result.EmailSent {
			text = "Syndic created; credential email queued for retry"
		}
		redirectWithFlash(w, r, "/admin/syndics", "success", text)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleAdminSyndicResetPassword handles POST /admin/syndics/reset-password
func handleAdminSyndicResetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	session, _ := middleware.GetSessionFromContext(ctx)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	acct, err := stores.AccountStore.GetByID(ctx, r.FormValue("AccountID"))
	if err != nil || acct.Role != account.RoleSyndic {
		http.NotFound(w, r)
		return
	}

	input := orchestrators.ResetPasswordInput{
		AccountID: acct.ID,
		ActorID:   session.AccountID,
	}
	deps := orchestrators.ResetPasswordDeps{
		AccountStore:      stores.AccountStore,
		NotificationStore: stores.NotificationStore,
		SendEmail:         sendEmail,
		GenerateID:        generateID,
		Now:               timeNow,
	}

	if err := orchestrators.ExecuteResetPassword(ctx, input, deps); err != nil {
		internalError(w, err)
		return
	}

	redirectWithFlash(w, r, "/admin/syndics", "success", "New credentials sent to "+acct.Email)
}

// handleAdminPlans handles GET (list) and POST (create or edit) for /admin/plans
func handleAdminPlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		plans, err := stores.SubscriptionStore.List(ctx, false)
		if err != nil {
			internalError(w, err)
			return
		}

		if isHTMLRequest(r) {
			renderTemplate(w, r, "admin_plans.html", map[string]any{
				"Plans": plans,
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(plans)
		return
	}

	if r.Method == "POST" {
		input := orchestrators.SavePlanInput{Active: true}

		if isFormRequest(r) {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			price, err1 := strconv.Atoi(r.FormValue("PriceCents"))
			months, err2 := strconv.Atoi(r.FormValue("DurationMonths"))
			maxRes, err3 := strconv.Atoi(r.FormValue("MaxResidents"))
			maxApt, err4 := strconv.Atoi(r.FormValue("MaxApartments"))
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
				http.Error(w, "Numeric fields are invalid", http.StatusBadRequest)
				return
			}
			input.PlanID = r.FormValue("PlanID")
			input.Name = r.FormValue("Name")
			input.PriceCents = price
			input.DurationMonths = months
			input.MaxResidents = maxRes
			input.MaxApartments = maxApt
		} else {
			if err := strictDecode(r, &input); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
		}

		deps := orchestrators.SubscriptionDeps{
			SubscriptionStore: stores.SubscriptionStore,
			GenerateID:        generateID,
			Now:               timeNow,
		}

		_, err := orchestrators.ExecuteSavePlan(ctx, input, deps)
		switch {
		case err == nil:
		case errors.Is(err, subscriptionStore.ErrDuplicateName),
			errors.Is(err, subscription.ErrEmptyName),
			errors.Is(err, subscription.ErrInvalidPrice),
			errors.Is(err, subscription.ErrInvalidDuration),
			errors.Is(err, subscription.ErrInvalidCaps):
			if isHTMLRequest(r) {
				redirectWithFlash(w, r, "/admin/plans", "error", err.Error())
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		default:
			internalError(w, err)
			return
		}

		redirectWithFlash(w, r, "/admin/plans", "success", "Plan saved")
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleAdminPlanDeactivate handles POST /admin/plans/deactivate
// Existing purchases keep their terms; the plan just leaves the catalogue.
func handleAdminPlanDeactivate(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.DeactivatePlanInput{PlanID: r.FormValue("PlanID")}
	deps := orchestrators.SubscriptionDeps{
		SubscriptionStore: stores.SubscriptionStore,
		GenerateID:        generateID,
		Now:               timeNow,
	}

	if err := orchestrators.ExecuteDeactivatePlan(r.Context(), input, deps); err != nil {
		internalError(w, err)
		return
	}

	redirectWithFlash(w, r, "/admin/plans", "success", "Plan withdrawn from the catalogue")
}

// handleAdminPurchases handles GET /admin/purchases
func handleAdminPurchases(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	purchases, err := stores.SubscriptionStore.ListPurchases(ctx, "", 200, 0)
	if err != nil {
		internalError(w, err)
		return
	}

	planNames := make(map[string]string)
	if plans, err := stores.SubscriptionStore.List(ctx, false); err == nil {
		for _, p := range plans {
			planNames[p.ID] = p.Name
		}
	}
	syndicEmails := make(map[string]string)
	if accounts, err := stores.AccountStore.List(ctx, accountStore.ListFilter{Role: account.RoleSyndic}); err == nil {
		for _, a := range accounts {
			syndicEmails[a.ID] = a.Email
		}
	}

	if isHTMLRequest(r) {
		renderTemplate(w, r, "admin_purchases.html", map[string]any{
			"Purchases":    purchases,
			"PlanNames":    planNames,
			"SyndicEmails": syndicEmails,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(purchases)
}

// handleAdminOutbox handles GET (queue view) and POST (retry/delete) for /admin/outbox
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		pending, err := stores.OutboxStore.ListPending(ctx, 100)
		if err != nil {
			internalError(w, err)
			return
		}
		failed, err := stores.OutboxStore.ListFailed(ctx, 100)
		if err != nil {
			internalError(w, err)
			return
		}

		if isHTMLRequest(r) {
			renderTemplate(w, r, "admin_outbox.html", map[string]any{
				"Pending": pending,
				"Failed":  failed,
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"Pending": pending, "Failed": failed})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		switch r.FormValue("Action") {
		case "retry":
			deps := orchestrators.OutboxRetryDeps{
				OutboxStore: stores.OutboxStore,
				EmailSender: emailSender,
			}
			if err := orchestrators.ExecuteOutboxRetry(ctx, deps); err != nil {
				internalError(w, err)
				return
			}
			redirectWithFlash(w, r, "/admin/outbox", "success", "Retry pass completed")
		case "delete":
			if err := stores.OutboxStore.Delete(ctx, r.FormValue("EntryID")); err != nil {
				internalError(w, err)
				return
			}
			redirectWithFlash(w, r, "/admin/outbox", "success", "Entry deleted")
		default:
			http.Error(w, "Unknown action", http.StatusBadRequest)
		}
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleAdminPerf handles GET /admin/perf — JSON snapshot of recent timings.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if perfCollector == nil {
		http.Error(w, "perf collection disabled", http.StatusServiceUnavailable)
		return
	}

	window := 15 * time.Minute
	if m := r.URL.Query().Get("minutes"); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 {
			window = time.Duration(n) * time.Minute
		}
	}

	snap := perfCollector.Snapshot(timeNow().Add(-window), 20)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}
