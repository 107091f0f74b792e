package projections

import (
	"context"

	announcementStore "syndicway/internal/adapters/storage/announcement"
	paymentStore "syndicway/internal/adapters/storage/payment"
	"syndicway/internal/domain/notification"
	"syndicway/internal/domain/payment"
	"syndicway/internal/domain/resident"
)

// PortalResidentStore resolves the resident behind a logged-in account.
type PortalResidentStore interface {
	GetByAccountID(ctx context.Context, accountID string) (resident.Resident, error)
}

// PortalAnnouncementStore defines the announcement store interface for the portal.
type PortalAnnouncementStore interface {
	ListForRecipient(ctx context.Context, residentID string, limit, offset int) ([]announcementStore.ForRecipient, error)
	UnreadCount(ctx context.Context, residentID string) (int, error)
}

// PortalPaymentStore defines the payment store interface for the portal.
type PortalPaymentStore interface {
	List(ctx context.Context, filter paymentStore.ListFilter) ([]payment.Payment, error)
}

// PortalNotificationStore defines the notification store interface for the portal.
type PortalNotificationStore interface {
	ListForReceiver(ctx context.Context, receiverID string, limit, offset int) ([]notification.Notification, error)
}

// GetResidentPortalQuery carries query parameters for the resident home page.
type GetResidentPortalQuery struct {
	AccountID string
}

// ResidentPortalResult carries the resident's home page data.
type ResidentPortalResult struct {
	Resident resident.Resident

	Announcements       []announcementStore.ForRecipient
	UnreadAnnouncements int

	Payments      []payment.Payment
	Notifications []notification.Notification

	UnreadMessages int
}

// GetResidentPortalDeps holds dependencies for the resident portal projection.
type GetResidentPortalDeps struct {
	ResidentStore     PortalResidentStore
	AnnouncementStore PortalAnnouncementStore
	PaymentStore      PortalPaymentStore
	NotificationStore PortalNotificationStore
	MessageStore      DashboardMessageStore
}

// QueryGetResidentPortal aggregates the resident's home page: their
// announcements with read markers, payment history and notifications.
// PRE: AccountID belongs to a resident account
// POST: Returns the resident's view; missing sections stay empty
func QueryGetResidentPortal(ctx context.Context, query GetResidentPortalQuery, deps GetResidentPortalDeps) (ResidentPortalResult, error) {
	r, err := deps.ResidentStore.GetByAccountID(ctx, query.AccountID)
	if err != nil {
		return ResidentPortalResult{}, err
	}
	result := ResidentPortalResult{Resident: r}

	if anns, err := deps.AnnouncementStore.ListForRecipient(ctx, r.ID, 20, 0); err == nil {
		result.Announcements = anns
	}
	if n, err := deps.AnnouncementStore.UnreadCount(ctx, r.ID); err == nil {
		result.UnreadAnnouncements = n
	}

	if payments, err := deps.PaymentStore.List(ctx, paymentStore.ListFilter{PayerID: r.ID, Limit: 24}); err == nil {
		result.Payments = payments
	}

	if notifications, err := deps.NotificationStore.ListForReceiver(ctx, query.AccountID, 20, 0); err == nil {
		result.Notifications = notifications
	}

	if n, err := deps.MessageStore.UnreadCount(ctx, query.AccountID); err == nil {
		result.UnreadMessages = n
	}

	return result, nil
}
