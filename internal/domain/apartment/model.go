package apartment

import (
	"errors"
	"fmt"
	"strings"
)

// Apartment type constants
const (
	TypeStudio   = "studio"
	TypeStandard = "standard"
	TypeDuplex   = "duplex"
)

// ValidTypes contains all valid apartment types.
var ValidTypes = []string{TypeStudio, TypeStandard, TypeDuplex}

// Domain errors
var (
	ErrEmptyNumber     = errors.New("apartment number cannot be empty")
	ErrInvalidFloor    = errors.New("apartment floor must be >= 0")
	ErrInvalidType     = errors.New("apartment type must be one of: studio, standard, duplex")
	ErrEmptyResidence  = errors.New("apartment must belong to a residence")
	ErrAlreadyOccupied = errors.New("apartment is already occupied")
	ErrAlreadyVacant   = errors.New("apartment is already vacant")
)

// Apartment is a unit within a residence. (ResidenceID, Floor, Number)
// is unique, enforced by the schema rather than a read-then-write check.
type Apartment struct {
	ID          string
	ResidenceID string
	ResidentID  string // empty when vacant
	Floor       int
	Number      string
	Type        string // studio, standard, duplex
}

// Validate checks if the Apartment has valid data.
// PRE: Apartment struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Apartment) Validate() error {
	if a.ResidenceID == "" {
		return ErrEmptyResidence
	}
	if strings.TrimSpace(a.Number) == "" {
		return ErrEmptyNumber
	}
	if a.Floor < 0 {
		return ErrInvalidFloor
	}
	if !isValidType(a.Type) {
		return ErrInvalidType
	}
	return nil
}

// IsVacant returns true if no resident occupies the apartment.
// INVARIANT: Apartment fields are not mutated
func (a *Apartment) IsVacant() bool {
	return a.ResidentID == ""
}

// Assign links a resident to the apartment.
// PRE: Apartment is vacant
// POST: ResidentID is set
func (a *Apartment) Assign(residentID string) error {
	if a.ResidentID != "" {
		return ErrAlreadyOccupied
	}
	a.ResidentID = residentID
	return nil
}

// Release returns the apartment to the vacant pool.
// PRE: Apartment is occupied
// POST: ResidentID is cleared
func (a *Apartment) Release() error {
	if a.ResidentID == "" {
		return ErrAlreadyVacant
	}
	a.ResidentID = ""
	return nil
}

// Label renders the unit as "floor / number" for list pages.
// INVARIANT: Apartment fields are not mutated
func (a *Apartment) Label() string {
	return fmt.Sprintf("%d / %s", a.Floor, a.Number)
}

func isValidType(t string) bool {
	for _, v := range ValidTypes {
		if t == v {
			return true
		}
	}
	return false
}
