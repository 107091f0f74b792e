package apartment

import (
	"context"
	"errors"

	domain "syndicway/internal/domain/apartment"
)

// ErrDuplicateUnit is returned when (residence, floor, number) already exists.
var ErrDuplicateUnit = errors.New("an apartment with this floor and number already exists")

// Store persists Apartment state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Apartment, error)
	GetByResidentID(ctx context.Context, residentID string) (domain.Apartment, error)
	Save(ctx context.Context, value domain.Apartment) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Apartment, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit       int
	Offset      int
	ResidenceID string
	Floor       int  // -1 means any floor
	VacantOnly  bool // only unoccupied apartments
	Type        string
}
