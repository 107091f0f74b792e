package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"syndicway/internal/domain/resident"
)

// ResidentStoreForDelete defines the store interface needed by DeleteResident.
type ResidentStoreForDelete interface {
	GetByID(ctx context.Context, id string) (resident.Resident, error)
	Remove(ctx context.Context, residentID string) error
}

// DeleteResidentInput carries input for the delete-resident orchestrator.
type DeleteResidentInput struct {
	ResidentID  string
	ResidenceID string
}

// DeleteResidentDeps holds dependencies for DeleteResident.
type DeleteResidentDeps struct {
	ResidentStore ResidentStoreForDelete
}

// ExecuteDeleteResident removes a resident, their auth account and their
// apartment assignment in one transaction.
// PRE: Resident exists and belongs to the acting syndic's residence
// POST: Resident, account and assignment gone, or nothing on failure
func ExecuteDeleteResident(ctx context.Context, input DeleteResidentInput, deps DeleteResidentDeps) error {
	if input.ResidentID == "" {
		return errors.New("resident ID is required")
	}

	r, err := deps.ResidentStore.GetByID(ctx, input.ResidentID)
	if err != nil {
		return err
	}
	if input.ResidenceID != "" && r.ResidenceID != input.ResidenceID {
		return ErrResidentNotOwned
	}

	if err := deps.ResidentStore.Remove(ctx, r.ID); err != nil {
		return err
	}

	slog.Info("resident_event", "event", "resident_deleted", "resident_id", r.ID, "residence_id", r.ResidenceID)
	return nil
}
