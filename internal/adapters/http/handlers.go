package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"syndicway/internal/adapters/http/middleware"
	"syndicway/internal/application/orchestrators"
	"syndicway/internal/domain/account"
	"syndicway/internal/domain/payment"
	"syndicway/internal/domain/residence"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

const templatesDir = "internal/adapters/http/templates"

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func isFormRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}

// sendEmailDeps builds the durable-delivery email dependencies shared by
// every orchestrator that sends mail.
func sendEmailDeps() orchestrators.SendEmailDeps {
	return orchestrators.SendEmailDeps{
		EmailSender: emailSender,
		OutboxStore: stores.OutboxStore,
		GenerateID:  generateID,
		Now:         timeNow,
	}
}

// sendEmail is the closure injected into orchestrators that deliver mail.
func sendEmail(ctx context.Context, input orchestrators.SendEmailInput) error {
	return orchestrators.ExecuteSendEmail(ctx, input, sendEmailDeps())
}

// syndicResidence resolves the residence managed by the logged-in syndic.
func syndicResidence(r *http.Request) (residence.Residence, bool) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		return residence.Residence{}, false
	}
	res, err := stores.ResidenceStore.GetBySyndicID(r.Context(), session.AccountID)
	if err != nil {
		return residence.Residence{}, false
	}
	return res, true
}

// addFlash queues a one-shot message for the current session.
func addFlash(r *http.Request, kind, text string) {
	if token := middleware.SessionToken(r); token != "" {
		sessions.AddFlash(token, middleware.Flash{Kind: kind, Text: text})
	}
}

// redirectWithFlash queues a flash and redirects (HTML) or writes 204 (API).
func redirectWithFlash(w http.ResponseWriter, r *http.Request, url, kind, text string) {
	if isHTMLRequest(r) {
		addFlash(r, kind, text)
		http.Redirect(w, r, url, http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	role := ""
	email := ""
	if ok {
		role = sess.Role
		email = sess.Email
	}

	var flashes []middleware.Flash
	if token := middleware.SessionToken(r); token != "" {
		flashes = sessions.PopFlashes(token)
	}

	funcMap := template.FuncMap{
		"currentRole":  func() string { return role },
		"currentEmail": func() string { return email },
		"isLoggedIn":   func() bool { return role != "" },
		"isAdmin":      func() bool { return role == account.RoleAdmin },
		"isSyndic":     func() bool { return role == account.RoleSyndic },
		"isResident":   func() bool { return role == account.RoleResident },
		"csrfToken":    func() string { return csrf.Token(r) },
		"flashes":      func() []middleware.Flash { return flashes },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"fmtAmount": payment.FormatAmount,
		"fmtDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"fmtDateTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02 15:04")
		},
		"isZeroTime": func(t time.Time) bool { return t.IsZero() },
		"add":        func(a, b int) int { return a + b },
		"sub":        func(a, b int) int { return a - b },
		"paginationQuery": func(page int, perPage int, extra string) template.URL {
			q := fmt.Sprintf("page=%d", page)
			if perPage > 0 {
				q += fmt.Sprintf("&per_page=%d", perPage)
			}
			if extra != "" {
				q += "&" + extra
			}
			return template.URL(q)
		},
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// handleHome routes "/" to the role's landing page.
func handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	switch session.Role {
	case account.RoleAdmin:
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	case account.RoleSyndic:
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/portal", http.StatusSeeOther)
	}
}

// handleLogin handles GET (form) and POST (authenticate) for /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		// If already logged in, redirect to the role's landing page
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		input := orchestrators.LoginInput{
			Email:    r.FormValue("Email"),
			Password: r.FormValue("Password"),
		}

		deps := orchestrators.LoginDeps{
			AccountStore: stores.AccountStore,
		}

		result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
		if err != nil {
			renderTemplate(w, r, "login.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
			})
			return
		}

		token, err := sessions.Create(middleware.Session{
			AccountID:              result.AccountID,
			Email:                  result.Email,
			Role:                   result.Role,
			PasswordChangeRequired: result.PasswordChangeRequired,
		})
		if err != nil {
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}

		middleware.SetSessionCookie(w, token)
		if result.PasswordChangeRequired {
			http.Redirect(w, r, "/change-password", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(token)
	}

	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleChangePassword handles GET (form) and POST (update) for /change-password
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if r.Method == "GET" {
		renderTemplate(w, r, "change_password.html", map[string]any{
			"CSRFToken": csrf.Token(r),
			"Forced":    session.PasswordChangeRequired,
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Form error", http.StatusBadRequest)
			return
		}

		if r.FormValue("NewPassword") != r.FormValue("ConfirmPassword") {
			renderTemplate(w, r, "change_password.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Forced":    session.PasswordChangeRequired,
				"Error":     "New passwords do not match",
			})
			return
		}

		input := orchestrators.ChangePasswordInput{
			AccountID:       session.AccountID,
			CurrentPassword: r.FormValue("CurrentPassword"),
			NewPassword:     r.FormValue("NewPassword"),
		}
		deps := orchestrators.ChangePasswordDeps{
			AccountStore: stores.AccountStore,
		}

		if err := orchestrators.ExecuteChangePassword(r.Context(), input, deps); err != nil {
			renderTemplate(w, r, "change_password.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Forced":    session.PasswordChangeRequired,
				"Error":     err.Error(),
			})
			return
		}

		// The forced-change gate keys off the session copy; clear it.
		session.PasswordChangeRequired = false
		if token := middleware.SessionToken(r); token != "" {
			sessions.Update(token, session)
		}

		redirectWithFlash(w, r, "/", "success", "Password updated")
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}
