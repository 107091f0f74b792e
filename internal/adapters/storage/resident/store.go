package resident

import (
	"context"
	"errors"

	domainAccount "syndicway/internal/domain/account"
	domainNotification "syndicway/internal/domain/notification"
	domain "syndicway/internal/domain/resident"
)

// ErrDuplicateEmail is returned when the email is already registered.
var ErrDuplicateEmail = errors.New("a resident with this email already exists")

// Store persists Resident state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Resident, error)
	GetByEmail(ctx context.Context, email string) (domain.Resident, error)
	GetByAccountID(ctx context.Context, accountID string) (domain.Resident, error)
	Save(ctx context.Context, value domain.Resident) error
	List(ctx context.Context, filter ListFilter) ([]domain.Resident, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	ListActive(ctx context.Context, residenceID string) ([]domain.Resident, error)

	// Provision atomically creates the auth account, the resident profile,
	// the apartment assignment (when apartmentID is non-empty) and the
	// notification row. No partial state survives a failure.
	Provision(ctx context.Context, acct domainAccount.Account, r domain.Resident, n domainNotification.Notification) error

	// Remove atomically deletes the resident, vacates their apartment and
	// deletes the linked account.
	Remove(ctx context.Context, residentID string) error
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit       int
	Offset      int
	ResidenceID string
	Status      string
	Search      string // matches name or email
	Sort        string
	Dir         string
}
