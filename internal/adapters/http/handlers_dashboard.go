package web

import (
	"encoding/json"
	"net/http"

	"syndicway/internal/adapters/http/middleware"
	"syndicway/internal/application/projections"
)

// handleDashboard handles GET /dashboard for the syndic home page.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	session, _ := middleware.GetSessionFromContext(r.Context())
	res, ok := syndicResidence(r)
	if !ok {
		http.Error(w, "no residence configured for this account", http.StatusConflict)
		return
	}

	query := projections.GetDashboardQuery{
		SyndicID:    session.AccountID,
		ResidenceID: res.ID,
	}
	deps := projections.GetDashboardDeps{
		ResidentStore:     stores.ResidentStore,
		ApartmentStore:    stores.ApartmentStore,
		PaymentStore:      stores.PaymentStore,
		MessageStore:      stores.MessageStore,
		AnnouncementStore: stores.AnnouncementStore,
		PlanStore:         stores.SubscriptionStore,
	}

	result, err := projections.QueryGetDashboard(r.Context(), query, deps, timeNow())
	if err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		renderTemplate(w, r, "dashboard.html", map[string]any{
			"Residence": res,
			"Stats":     result,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
