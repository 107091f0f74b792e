package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"syndicway/internal/adapters/http/middleware"
	"syndicway/internal/application/listutil"
	"syndicway/internal/application/orchestrators"
	"syndicway/internal/application/projections"
	"syndicway/internal/domain/account"
	"syndicway/internal/domain/message"
)

// messageCorrespondents lists the accounts the current user may write to.
// A syndic writes to their residents; a resident writes to their syndic.
func messageCorrespondents(r *http.Request) []account.Account {
	ctx := r.Context()
	session, _ := middleware.GetSessionFromContext(ctx)

	switch session.Role {
	case account.RoleSyndic:
		res, err := stores.ResidenceStore.GetBySyndicID(ctx, session.AccountID)
		if err != nil {
			return nil
		}
		residents, err := stores.ResidentStore.ListActive(ctx, res.ID)
		if err != nil {
			return nil
		}
		var out []account.Account
		for _, rr := range residents {
			if acct, err := stores.AccountStore.GetByID(ctx, rr.AccountID); err == nil {
				out = append(out, acct)
			}
		}
		return out
	case account.RoleResident:
		resident, err := stores.ResidentStore.GetByAccountID(ctx, session.AccountID)
		if err != nil {
			return nil
		}
		res, err := stores.ResidenceStore.GetByID(ctx, resident.ResidenceID)
		if err != nil {
			return nil
		}
		if acct, err := stores.AccountStore.GetByID(ctx, res.SyndicID); err == nil {
			return []account.Account{acct}
		}
	}
	return nil
}

// handleMessages handles GET (inbox or sent) and POST (send) for /messages
func handleMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := middleware.GetSessionFromContext(ctx)

	if r.Method == "GET" {
		lp := listutil.ParseListParams(r.URL.Query(), nil, nil)
		pageInfo := listutil.NewPageInfo(lp.Page, lp.PerPage, 0)

		query := projections.GetInboxQuery{
			AccountID: session.AccountID,
			Sent:      r.URL.Query().Get("box") == "sent",
			Limit:     pageInfo.PerPage,
			Offset:    pageInfo.Offset(),
		}
		deps := projections.GetInboxDeps{
			MessageStore: stores.MessageStore,
			AccountStore: stores.AccountStore,
		}

		result, err := projections.QueryGetInbox(ctx, query, deps)
		if err != nil {
			internalError(w, err)
			return
		}

		if isHTMLRequest(r) {
			renderTemplate(w, r, "messages.html", map[string]any{
				"Messages":       result.Messages,
				"UnreadCount":    result.UnreadCount,
				"Sent":           query.Sent,
				"Correspondents": messageCorrespondents(r),
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
		return
	}

	if r.Method == "POST" {
		input := orchestrators.SendMessageInput{SenderID: session.AccountID}

		if isFormRequest(r) {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			input.ReceiverID = r.FormValue("ReceiverID")
			input.Subject = r.FormValue("Subject")
			input.Content = r.FormValue("Content")
		} else {
			if err := strictDecode(r, &input); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
			input.SenderID = session.AccountID
		}

		deps := orchestrators.MessageDeps{
			MessageStore: stores.MessageStore,
			GenerateID:   generateID,
			Now:          timeNow,
		}

		_, err := orchestrators.ExecuteSendMessage(ctx, input, deps)
		switch {
		case err == nil:
		case errors.Is(err, message.ErrEmptyReceiverID),
			errors.Is(err, message.ErrEmptyContent),
			errors.Is(err, message.ErrSelfMessage):
			if isHTMLRequest(r) {
				redirectWithFlash(w, r, "/messages", "error", err.Error())
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		default:
			internalError(w, err)
			return
		}

		redirectWithFlash(w, r, "/messages?box=sent", "success", "Message sent")
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleMessageRead handles POST /messages/read
func handleMessageRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	session, _ := middleware.GetSessionFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.MarkMessageReadInput{
		MessageID: r.FormValue("MessageID"),
		ReaderID:  session.AccountID,
	}
	deps := orchestrators.MessageDeps{
		MessageStore: stores.MessageStore,
		GenerateID:   generateID,
		Now:          timeNow,
	}

	if err := orchestrators.ExecuteMarkMessageRead(r.Context(), input, deps); err != nil {
		if errors.Is(err, orchestrators.ErrNotMessageParty) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		internalError(w, err)
		return
	}

	redirectWithFlash(w, r, "/messages", "success", "Marked as read")
}
