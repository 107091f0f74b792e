package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"syndicway/internal/adapters/http/middleware"
	"syndicway/internal/application/listutil"
	"syndicway/internal/application/orchestrators"
	"syndicway/internal/domain/announcement"
)

// handleAnnouncements handles GET (poster list) and POST (create) for /announcements
func handleAnnouncements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := middleware.GetSessionFromContext(ctx)
	res, ok := syndicResidence(r)
	if !ok {
		http.Error(w, "no residence configured for this account", http.StatusConflict)
		return
	}

	if r.Method == "GET" {
		lp := listutil.ParseListParams(r.URL.Query(), nil, nil)
		pageInfo := listutil.NewPageInfo(lp.Page, lp.PerPage, 0)

		anns, err := stores.AnnouncementStore.ListByPoster(ctx, session.AccountID, pageInfo.PerPage, pageInfo.Offset())
		if err != nil {
			internalError(w, err)
			return
		}

		if isHTMLRequest(r) {
			residents, _ := stores.ResidentStore.ListActive(ctx, res.ID)
			renderTemplate(w, r, "announcements.html", map[string]any{
				"Announcements": anns,
				"Residents":     residents,
				"Priorities":    announcement.ValidPriorities,
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anns)
		return
	}

	if r.Method == "POST" {
		input := orchestrators.CreateAnnouncementInput{
			PosterID:    session.AccountID,
			ResidenceID: res.ID,
		}

		if isFormRequest(r) {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			input.Title = r.FormValue("Title")
			input.Content = r.FormValue("Content")
			input.Priority = r.FormValue("Priority")
			input.ResidentIDs = r.Form["ResidentIDs"]
		} else {
			if err := strictDecode(r, &input); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
			input.PosterID = session.AccountID
			input.ResidenceID = res.ID
		}

		deps := orchestrators.AnnouncementDeps{
			AnnouncementStore: stores.AnnouncementStore,
			ResidentStore:     stores.ResidentStore,
			GenerateID:        generateID,
			Now:               timeNow,
		}

		_, err := orchestrators.ExecuteCreateAnnouncement(ctx, input, deps)
		switch {
		case err == nil:
		case errors.Is(err, announcement.ErrNoRecipients),
			errors.Is(err, announcement.ErrEmptyTitle),
			errors.Is(err, announcement.ErrEmptyContent),
			errors.Is(err, announcement.ErrInvalidPriority):
			if isHTMLRequest(r) {
				redirectWithFlash(w, r, "/announcements", "error", err.Error())
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		default:
			internalError(w, err)
			return
		}

		redirectWithFlash(w, r, "/announcements", "success", "Announcement published")
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleAnnouncementDelete handles POST /announcements/delete
func handleAnnouncementDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	session, _ := middleware.GetSessionFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.DeleteAnnouncementInput{
		AnnouncementID: r.FormValue("AnnouncementID"),
		PosterID:       session.AccountID,
	}
	deps := orchestrators.AnnouncementDeps{
		AnnouncementStore: stores.AnnouncementStore,
		ResidentStore:     stores.ResidentStore,
		GenerateID:        generateID,
		Now:               timeNow,
	}

	if err := orchestrators.ExecuteDeleteAnnouncement(r.Context(), input, deps); err != nil {
		if errors.Is(err, orchestrators.ErrAnnouncementNotOwned) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		internalError(w, err)
		return
	}

	redirectWithFlash(w, r, "/announcements", "success", "Announcement deleted")
}

// handleAnnouncementRead handles POST /portal/announcements/read
func handleAnnouncementRead(w http.ResponseWriter, r *http.Request) {
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

	resident, err := stores.ResidentStore.GetByAccountID(ctx, session.AccountID)
	if err != nil {
		internalError(w, err)
		return
	}

	input := orchestrators.MarkAnnouncementReadInput{
		AnnouncementID: r.FormValue("AnnouncementID"),
		ResidentID:     resident.ID,
	}
	deps := orchestrators.AnnouncementDeps{
		AnnouncementStore: stores.AnnouncementStore,
		ResidentStore:     stores.ResidentStore,
		GenerateID:        generateID,
		Now:               timeNow,
	}

	if err := orchestrators.ExecuteMarkAnnouncementRead(ctx, input, deps); err != nil {
		internalError(w, err)
		return
	}

	redirectWithFlash(w, r, "/portal", "success", "Marked as read")
}
