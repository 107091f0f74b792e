package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"syndicway/internal/adapters/http/middleware"
	apartmentStore "syndicway/internal/adapters/storage/apartment"
	"syndicway/internal/application/listutil"
	"syndicway/internal/application/orchestrators"
	"syndicway/internal/application/projections"
	"syndicway/internal/domain/apartment"
	"syndicway/internal/domain/subscription"
)

// parseFloor reads a floor query/form value; -1 means "any floor".
func parseFloor(s string) int {
	if s == "" {
		return -1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// handleApartments handles GET (list) and POST (create) for /apartments
func handleApartments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := middleware.GetSessionFromContext(ctx)
	res, ok := syndicResidence(r)
	if !ok {
		http.Error(w, "no residence configured for this account", http.StatusConflict)
		return
	}

	if r.Method == "GET" {
		lp := listutil.ParseListParams(r.URL.Query(), nil, []string{"type"})

		query := projections.GetApartmentListQuery{
			ResidenceID: res.ID,
			Floor:       parseFloor(r.URL.Query().Get("floor")),
			Type:        lp.Filters["type"],
			VacantOnly:  r.URL.Query().Get("vacant") == "1",
			Params:      lp,
		}
		deps := projections.GetApartmentListDeps{
			ApartmentStore: stores.ApartmentStore,
			ResidentStore:  stores.ResidentStore,
		}

		result, err := projections.QueryGetApartmentList(ctx, query, deps)
		if err != nil {
			internalError(w, err)
			return
		}

		if isHTMLRequest(r) {
			// Active residents feed the assignment dropdown.
			residents, _ := stores.ResidentStore.ListActive(ctx, res.ID)
			renderTemplate(w, r, "apartments.html", map[string]any{
				"Apartments": result.Apartments,
				"PageInfo":   result.PageInfo,
				"Floor":      r.URL.Query().Get("floor"),
				"Type":       lp.Filters["type"],
				"VacantOnly": query.VacantOnly,
				"Types":      apartment.ValidTypes,
				"Residents":  residents,
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
		return
	}

	if r.Method == "POST" {
		input := orchestrators.CreateApartmentInput{
			SyndicID:    session.AccountID,
			ResidenceID: res.ID,
		}

		if isFormRequest(r) {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			floor, err := strconv.Atoi(r.FormValue("Floor"))
			if err != nil {
				http.Error(w, "Floor must be a number", http.StatusBadRequest)
				return
			}
			input.Floor = floor
			input.Number = r.FormValue("Number")
			input.Type = r.FormValue("Type")
		} else {
			if err := strictDecode(r, &input); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
			input.SyndicID = session.AccountID
			input.ResidenceID = res.ID
		}

		deps := orchestrators.ApartmentDeps{
			ApartmentStore: stores.ApartmentStore,
			PlanGuard:      stores.SubscriptionStore,
			GenerateID:     generateID,
		}

		_, err := orchestrators.ExecuteCreateApartment(ctx, input, deps)
		switch {
		case err == nil:
		case errors.Is(err, subscription.ErrApartmentCap),
			errors.Is(err, subscription.ErrNoActivePlan),
			errors.Is(err, apartmentStore.ErrDuplicateUnit):
			if isHTMLRequest(r) {
				redirectWithFlash(w, r, "/apartments", "error", err.Error())
				return
			}
			http.Error(w, err.Error(), http.StatusConflict)
			return
		default:
			internalError(w, err)
			return
		}

		redirectWithFlash(w, r, "/apartments", "success", "Apartment created")
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleApartmentEdit handles GET (form) and POST (update) for /apartments/edit
func handleApartmentEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, ok := syndicResidence(r)
	if !ok {
		http.Error(w, "no residence configured for this account", http.StatusConflict)
		return
	}

	if r.Method == "GET" {
		id := r.URL.Query().Get("id")
		apt, err := stores.ApartmentStore.GetByID(ctx, id)
		if err != nil || apt.ResidenceID != res.ID {
			http.NotFound(w, r)
			return
		}
		renderTemplate(w, r, "apartment_edit.html", map[string]any{
			"Apartment": apt,
			"Types":     apartment.ValidTypes,
		})
		return
	}

	if r.Method == "POST" {
		input := orchestrators.UpdateApartmentInput{ResidenceID: res.ID}

		if isFormRequest(r) {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			floor, err := strconv.Atoi(r.FormValue("Floor"))
			if err != nil {
				http.Error(w, "Floor must be a number", http.StatusBadRequest)
				return
			}
			input.ApartmentID = r.FormValue("ApartmentID")
			input.Floor = floor
			input.Number = r.FormValue("Number")
			input.Type = r.FormValue("Type")
		} else {
			if err := strictDecode(r, &input); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
			input.ResidenceID = res.ID
		}

		deps := orchestrators.ApartmentDeps{
			ApartmentStore: stores.ApartmentStore,
			PlanGuard:      stores.SubscriptionStore,
			GenerateID:     generateID,
		}

		if err := orchestrators.ExecuteUpdateApartment(ctx, input, deps); err != nil {
			if errors.Is(err, orchestrators.ErrApartmentNotOwned) {
				http.Error(w, err.Error(), http.StatusForbidden)
				return
			}
			if errors.Is(err, apartmentStore.ErrDuplicateUnit) {
				redirectWithFlash(w, r, "/apartments", "error", err.Error())
				return
			}
			internalError(w, err)
			return
		}

		redirectWithFlash(w, r, "/apartments", "success", "Apartment updated")
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleApartmentDelete handles POST /apartments/delete
func handleApartmentDelete(w http.ResponseWriter, r *http.Request) {
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

	input := orchestrators.DeleteApartmentInput{
		ApartmentID: r.FormValue("ApartmentID"),
		ResidenceID: res.ID,
	}
	deps := orchestrators.ApartmentDeps{
		ApartmentStore: stores.ApartmentStore,
		PlanGuard:      stores.SubscriptionStore,
		GenerateID:     generateID,
	}

	if err := orchestrators.ExecuteDeleteApartment(r.Context(), input, deps); err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrApartmentNotOwned):
			http.Error(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, orchestrators.ErrApartmentOccupied):
			redirectWithFlash(w, r, "/apartments", "error", err.Error())
		default:
			internalError(w, err)
		}
		return
	}

	redirectWithFlash(w, r, "/apartments", "success", "Apartment deleted")
}

// handleApartmentAssign handles POST /apartments/assign
// An empty ResidentID releases the unit back to the vacant pool.
func handleApartmentAssign(w http.ResponseWriter, r *http.Request) {
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

	input := orchestrators.AssignApartmentInput{
		ApartmentID: r.FormValue("ApartmentID"),
		ResidenceID: res.ID,
		ResidentID:  r.FormValue("ResidentID"),
	}
	deps := orchestrators.ApartmentDeps{
		ApartmentStore: stores.ApartmentStore,
		PlanGuard:      stores.SubscriptionStore,
		GenerateID:     generateID,
	}

	if err := orchestrators.ExecuteAssignApartment(r.Context(), input, deps); err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrApartmentNotOwned):
			http.Error(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, apartment.ErrAlreadyOccupied), errors.Is(err, apartment.ErrAlreadyVacant):
			redirectWithFlash(w, r, "/apartments", "error", err.Error())
		default:
			internalError(w, err)
		}
		return
	}

	text := "Apartment assigned"
	if input.ResidentID == "" {
		text = "Apartment released"
	}
	redirectWithFlash(w, r, "/apartments", "success", text)
}
