package residence

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength    = 100
	MaxAddressLength = 200
)

// Domain errors
var (
	ErrEmptyName    = errors.New("residence name cannot be empty")
	ErrEmptyAddress = errors.New("residence address cannot be empty")
	ErrEmptySyndic  = errors.New("residence must have a managing syndic")
)

// Residence is a managed building. Each syndic manages exactly one
// residence; apartments and residents hang off it.
type Residence struct {
	ID       string
	SyndicID string // AccountID of the managing syndic
	Name     string
	Address  string
	City     string
}

// Validate checks if the Residence has valid data.
// PRE: Residence struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Residence) Validate() error {
	if r.SyndicID == "" {
		return ErrEmptySyndic
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if len(r.Name) > MaxNameLength {
		return errors.New("residence name cannot exceed 100 characters")
	}
	if strings.TrimSpace(r.Address) == "" {
		return ErrEmptyAddress
	}
	if len(r.Address) > MaxAddressLength {
		return errors.New("residence address cannot exceed 200 characters")
	}
	return nil
}
