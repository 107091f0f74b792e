package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"syndicway/internal/adapters/http/middleware"
	"syndicway/internal/application/orchestrators"
	"syndicway/internal/domain/subscription"
)

// handleSubscription handles GET (plan page) and POST (purchase) for /subscription
func handleSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := middleware.GetSessionFromContext(ctx)

	if r.Method == "GET" {
		plans, err := stores.SubscriptionStore.List(ctx, true)
		if err != nil {
			internalError(w, err)
			return
		}

		var current subscription.Purchase
		var currentPlan subscription.Subscription
		if p, err := stores.SubscriptionStore.ActivePurchase(ctx, session.AccountID); err == nil {
			current = p
			currentPlan, _ = stores.SubscriptionStore.GetByID(ctx, p.SubscriptionID)
		} else if !errors.Is(err, subscription.ErrNoActivePlan) {
			internalError(w, err)
			return
		}

		history, err := stores.SubscriptionStore.ListPurchases(ctx, session.AccountID, 50, 0)
		if err != nil {
			internalError(w, err)
			return
		}

		// Plan names for the history table.
		planNames := make(map[string]string)
		if all, err := stores.SubscriptionStore.List(ctx, false); err == nil {
			for _, p := range all {
				planNames[p.ID] = p.Name
			}
		}

		if isHTMLRequest(r) {
			renderTemplate(w, r, "subscription.html", map[string]any{
				"Plans":       plans,
				"Current":     current,
				"CurrentPlan": currentPlan,
				"History":     history,
				"PlanNames":   planNames,
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"Plans":   plans,
			"Current": current,
			"History": history,
		})
		return
	}

	if r.Method == "POST" {
		input := orchestrators.PurchasePlanInput{SyndicID: session.AccountID}

		if isFormRequest(r) {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			input.PlanID = r.FormValue("PlanID")
		} else {
			if err := strictDecode(r, &input); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
			input.SyndicID = session.AccountID
		}

		deps := orchestrators.SubscriptionDeps{
			SubscriptionStore: stores.SubscriptionStore,
			GenerateID:        generateID,
			Now:               timeNow,
		}

		_, err := orchestrators.ExecutePurchasePlan(ctx, input, deps)
		switch {
		case err == nil:
		case errors.Is(err, subscription.ErrInactivePlan):
			if isHTMLRequest(r) {
				redirectWithFlash(w, r, "/subscription", "error", err.Error())
				return
			}
			http.Error(w, err.Error(), http.StatusConflict)
			return
		default:
			internalError(w, err)
			return
		}

		redirectWithFlash(w, r, "/subscription", "success", "Plan purchased")
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}
