package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"syndicway/internal/adapters/http/middleware"
	apartmentStore "syndicway/internal/adapters/storage/apartment"
	residentStore "syndicway/internal/adapters/storage/resident"
	"syndicway/internal/application/listutil"
	"syndicway/internal/application/orchestrators"
	"syndicway/internal/application/projections"
	"syndicway/internal/domain/apartment"
	"syndicway/internal/domain/subscription"
)

// vacantApartments lists the unoccupied units of a residence for the
// assignment dropdown. The residents page renders without them, so a storage
// failure degrades the dropdown rather than the whole page.
func vacantApartments(ctx context.Context, residenceID string) []apartment.Apartment {
	vacant, err := stores.ApartmentStore.List(ctx, apartmentStore.ListFilter{
		ResidenceID: residenceID,
		Floor:       -1,
		VacantOnly:  true,
	})
	if err != nil {
		slog.Error("vacant_apartment_list_failed", "residence_id", residenceID, "error", err)
		return nil
	}
	return vacant
}

// handleResidents handles GET (list) and POST (create) for /residents
func handleResidents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := middleware.GetSessionFromContext(ctx)
	res, ok := syndicResidence(r)
	if !ok {
		http.Error(w, "no residence configured for this account", http.StatusConflict)
		return
	}

	if r.Method == "GET" {
		lp := listutil.ParseListParams(r.URL.Query(),
			[]string{"name", "email", "status", "created_at"},
			[]string{"status"},
		)

		query := projections.GetResidentListQuery{
			SyndicID:    session.AccountID,
			ResidenceID: res.ID,
			Status:      lp.Filters["status"],
			Params:      lp,
		}
		deps := projections.GetResidentListDeps{
			ResidentStore:  stores.ResidentStore,
			ApartmentStore: stores.ApartmentStore,
			PaymentStore:   stores.PaymentStore,
		}

		result, err := projections.QueryGetResidentList(ctx, query, deps, timeNow())
		if err != nil {
			internalError(w, err)
			return
		}

		if isHTMLRequest(r) {
			vacant := vacantApartments(ctx, res.ID)
			renderTemplate(w, r, "residents.html", map[string]any{
				"Residents":        result.Residents,
				"PageInfo":         result.PageInfo,
				"Status":           lp.Filters["status"],
				"Search":           lp.Search,
				"Sort":             lp.Sort,
				"Dir":              lp.Dir,
				"VacantApartments": vacant,
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
		return
	}

	if r.Method == "POST" {
		input := orchestrators.CreateResidentInput{
			SyndicID:    session.AccountID,
			ResidenceID: res.ID,
		}

		if isFormRequest(r) {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			input.Name = r.FormValue("Name")
			input.Email = r.FormValue("Email")
			input.Phone = r.FormValue("Phone")
			input.ApartmentID = r.FormValue("ApartmentID")
		} else {
			if err := strictDecode(r, &input); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
			input.SyndicID = session.AccountID
			input.ResidenceID = res.ID
		}

		deps := orchestrators.CreateResidentDeps{
			ResidentStore: stores.ResidentStore,
			PlanGuard:     stores.SubscriptionStore,
			SendEmail:     sendEmail,
			GenerateID:    generateID,
			Now:           timeNow,
		}

		result, err := orchestrators.ExecuteCreateResident(ctx, input, deps)
		switch {
		case err == nil:
		case errors.Is(err, subscription.ErrResidentCap),
			errors.Is(err, subscription.ErrNoActivePlan),
			errors.Is(err, residentStore.ErrDuplicateEmail):
			if isHTMLRequest(r) {
				redirectWithFlash(w, r, "/residents", "error", err.Error())
				return
			}
			http.Error(w, err.Error(), http.StatusConflict)
			return
		default:
			internalError(w, err)
			return
		}

		text := "Resident created; credentials sent by email"
		if !result.EmailSent {
			text = "Resident created; credential email queued for retry"
		}
		redirectWithFlash(w, r, "/residents", "success", text)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleResidentEdit handles GET (form) and POST (update) for /residents/edit
func handleResidentEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, ok := syndicResidence(r)
	if !ok {
		http.Error(w, "no residence configured for this account", http.StatusConflict)
		return
	}

	if r.Method == "GET" {
		id := r.URL.Query().Get("id")
		resident, err := stores.ResidentStore.GetByID(ctx, id)
		if err != nil || resident.ResidenceID != res.ID {
			http.NotFound(w, r)
			return
		}
		renderTemplate(w, r, "resident_edit.html", map[string]any{
			"Resident": resident,
		})
		return
	}

	if r.Method == "POST" {
		input := orchestrators.UpdateResidentInput{ResidenceID: res.ID}

		if isFormRequest(r) {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			input.ResidentID = r.FormValue("ResidentID")
			input.Name = r.FormValue("Name")
			input.Email = r.FormValue("Email")
			input.Phone = r.FormValue("Phone")
		} else {
			if err := strictDecode(r, &input); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
			input.ResidenceID = res.ID
		}

		deps := orchestrators.UpdateResidentDeps{ResidentStore: stores.ResidentStore}
		if err := orchestrators.ExecuteUpdateResident(ctx, input, deps); err != nil {
			if errors.Is(err, orchestrators.ErrResidentNotOwned) {
				http.Error(w, err.Error(), http.StatusForbidden)
				return
			}
			internalError(w, err)
			return
		}

		redirectWithFlash(w, r, "/residents", "success", "Resident updated")
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleResidentToggle handles POST /residents/toggle
func handleResidentToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	res, ok := syndicResidence(r)
	if !ok {
		http.Error(w, "no residence configured for this account", http.StatusConflict)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.ToggleResidentStatusInput{
		ResidentID:  r.FormValue("ResidentID"),
		ResidenceID: res.ID,
	}
	deps := orchestrators.UpdateResidentDeps{ResidentStore: stores.ResidentStore}

	status, err := orchestrators.ExecuteToggleResidentStatus(r.Context(), input, deps)
	if err != nil {
		if errors.Is(err, orchestrators.ErrResidentNotOwned) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		internalError(w, err)
		return
	}

	redirectWithFlash(w, r, "/residents", "success", "Resident is now "+status)
}

// handleResidentDelete handles POST /residents/delete
func handleResidentDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	res, ok := syndicResidence(r)
	if !ok {
		http.Error(w, "no residence configured for this account", http.StatusConflict)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.DeleteResidentInput{
		ResidentID:  r.FormValue("ResidentID"),
		ResidenceID: res.ID,
	}
	deps := orchestrators.DeleteResidentDeps{ResidentStore: stores.ResidentStore}

	if err := orchestrators.ExecuteDeleteResident(r.Context(), input, deps); err != nil {
		if errors.Is(err, orchestrators.ErrResidentNotOwned) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		internalError(w, err)
		return
	}

	redirectWithFlash(w, r, "/residents", "success", "Resident deleted")
}

// handleResidentResetPassword handles POST /residents/reset-password
func handleResidentResetPassword(w http.ResponseWriter, r *http.Request) {
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

	resident, err := stores.ResidentStore.GetByID(ctx, r.FormValue("ResidentID"))
	if err != nil || resident.ResidenceID != res.ID {
		http.NotFound(w, r)
		return
	}

	input := orchestrators.ResetPasswordInput{
		AccountID: resident.AccountID,
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

	redirectWithFlash(w, r, "/residents", "success", "New credentials sent to "+resident.Email)
}
