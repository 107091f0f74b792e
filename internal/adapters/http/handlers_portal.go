package web

import (
	"encoding/json"
	"net/http"

	"syndicway/internal/adapters/http/middleware"
	"syndicway/internal/application/projections"
)

// handlePortal handles GET /portal for the resident home page.
func handlePortal(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	session, _ := middleware.GetSessionFromContext(ctx)

	query := projections.GetResidentPortalQuery{AccountID: session.AccountID}
	deps := projections.GetResidentPortalDeps{
		ResidentStore:     stores.ResidentStore,
		AnnouncementStore: stores.AnnouncementStore,
		PaymentStore:      stores.PaymentStore,
		NotificationStore: stores.NotificationStore,
		MessageStore:      stores.MessageStore,
	}

	result, err := projections.QueryGetResidentPortal(ctx, query, deps)
	if err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		renderTemplate(w, r, "portal.html", map[string]any{
			"Portal": result,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
