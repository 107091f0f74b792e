package web

import (
	"net/http"

	"syndicway/internal/adapters/http/middleware"
	"syndicway/internal/domain/account"
)

// forcePasswordChange redirects sessions carrying a provisional credential
// to the password form. Logout stays reachable.
func forcePasswordChange(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := middleware.GetSessionFromContext(r.Context())
		if ok && session.PasswordChangeRequired {
			http.Redirect(w, r, "/change-password", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// registerRoutes wires every page and API endpoint onto the mux.
func registerRoutes(mux *http.ServeMux) {
	syndicOnly := middleware.RequireRole(account.RoleSyndic)
	residentOnly := middleware.RequireRole(account.RoleResident)
	adminOnly := middleware.RequireRole(account.RoleAdmin)

	protect := func(guard func(http.Handler) http.Handler, h http.HandlerFunc) http.Handler {
		return guard(forcePasswordChange(h))
	}

	mux.HandleFunc("/", handleHome)
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/logout", handleLogout)
	mux.Handle("/change-password", middleware.RequireAuth(http.HandlerFunc(handleChangePassword)))

	// Syndic pages
	mux.Handle("/dashboard", protect(syndicOnly, handleDashboard))
	mux.Handle("/residents", protect(syndicOnly, handleResidents))
	mux.Handle("/residents/edit", protect(syndicOnly, handleResidentEdit))
	mux.Handle("/residents/toggle", protect(syndicOnly, handleResidentToggle))
	mux.Handle("/residents/delete", protect(syndicOnly, handleResidentDelete))
	mux.Handle("/residents/reset-password", protect(syndicOnly, handleResidentResetPassword))
	mux.Handle("/apartments", protect(syndicOnly, handleApartments))
	mux.Handle("/apartments/edit", protect(syndicOnly, handleApartmentEdit))
	mux.Handle("/apartments/delete", protect(syndicOnly, handleApartmentDelete))
	mux.Handle("/apartments/assign", protect(syndicOnly, handleApartmentAssign))
	mux.Handle("/payments", protect(syndicOnly, handlePayments))
	mux.Handle("/payments/delete", protect(syndicOnly, handlePaymentDelete))
	mux.Handle("/payments/report", protect(syndicOnly, handlePaymentReport))
	mux.Handle("/payments/remind", protect(syndicOnly, handlePaymentRemind))
	mux.Handle("/announcements", protect(syndicOnly, handleAnnouncements))
	mux.Handle("/announcements/delete", protect(syndicOnly, handleAnnouncementDelete))
	mux.Handle("/subscription", protect(syndicOnly, handleSubscription))

	// Shared messaging (syndic and resident)
	anyRole := middleware.RequireAuth
	mux.Handle("/messages", protect(anyRole, handleMessages))
	mux.Handle("/messages/read", protect(anyRole, handleMessageRead))

	// Resident pages
	mux.Handle("/portal", protect(residentOnly, handlePortal))
	mux.Handle("/portal/announcements/read", protect(residentOnly, handleAnnouncementRead))

	// Admin pages
	mux.Handle("/admin", protect(adminOnly, handleAdminDashboard))
	mux.Handle("/admin/syndics", protect(adminOnly, handleAdminSyndics))
	mux.Handle("/admin/syndics/reset-password", protect(adminOnly, handleAdminSyndicResetPassword))
	mux.Handle("/admin/plans", protect(adminOnly, handleAdminPlans))
	mux.Handle("/admin/plans/deactivate", protect(adminOnly, handleAdminPlanDeactivate))
	mux.Handle("/admin/purchases", protect(adminOnly, handleAdminPurchases))
	mux.Handle("/admin/outbox", protect(adminOnly, handleAdminOutbox))
	mux.Handle("/admin/perf", protect(adminOnly, handleAdminPerf))
}
