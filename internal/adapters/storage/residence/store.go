package residence

import (
	"context"

	domain "syndicway/internal/domain/residence"
)

// Store persists Residence state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Residence, error)
	GetBySyndicID(ctx context.Context, syndicID string) (domain.Residence, error)
	Save(ctx context.Context, value domain.Residence) error
	List(ctx context.Context) ([]domain.Residence, error)
}
