package resident

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Business rule constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Domain errors
var (
	ErrEmptyName       = errors.New("resident name cannot be empty")
	ErrInvalidEmail    = errors.New("resident email must be valid")
	ErrInvalidStatus   = errors.New("status must be 'active' or 'inactive'")
	ErrAlreadyActive   = errors.New("resident is already active")
	ErrAlreadyInactive = errors.New("resident is already inactive")
)

// Resident is the profile row for a building occupant. Authentication
// lives on the linked Account; the profile carries contact details and
// the apartment assignment.
type Resident struct {
	ID          string
	AccountID   string
	ResidenceID string
	ApartmentID string // empty when the resident has no assigned apartment
	Name        string
	Email       string
	Phone       string
	Status      string // active, inactive
	CreatedAt   time.Time
}

// Validate checks if the Resident has valid data.
// PRE: Resident struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Email must contain '@', Name must not be empty
func (r *Resident) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if len(r.Name) > MaxNameLength {
		return errors.New("resident name cannot exceed 100 characters")
	}
	if !strings.Contains(r.Email, "@") {
		return ErrInvalidEmail
	}
	if r.ResidenceID == "" {
		return errors.New("resident must belong to a residence")
	}
	if r.Status != StatusActive && r.Status != StatusInactive {
		return ErrInvalidStatus
	}
	return nil
}

// IsActive returns true if the resident is currently active.
// INVARIANT: Status field is not mutated
func (r *Resident) IsActive() bool {
	return r.Status == StatusActive
}

// Deactivate sets the resident status to inactive.
// PRE: Resident is active
// POST: Status is inactive; no other field is touched
func (r *Resident) Deactivate() error {
	if r.Status == StatusInactive {
		return ErrAlreadyInactive
	}
	r.Status = StatusInactive
	return nil
}

// Activate sets the resident status back to active.
// PRE: Resident is inactive
// POST: Status is active; no other field is touched
func (r *Resident) Activate() error {
	if r.Status == StatusActive {
		return ErrAlreadyActive
	}
	r.Status = StatusActive
	return nil
}
