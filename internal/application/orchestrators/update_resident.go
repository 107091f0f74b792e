package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"syndicway/internal/domain/resident"
)

// ResidentStoreForUpdate defines the store interface needed by resident updates.
type ResidentStoreForUpdate interface {
	GetByID(ctx context.Context, id string) (resident.Resident, error)
	Save(ctx context.Context, r resident.Resident) error
}

// ErrResidentNotOwned is returned when a syndic touches a resident
// outside their residence.
var ErrResidentNotOwned = errors.New("resident does not belong to this residence")

// UpdateResidentInput carries input for the update-resident orchestrator.
type UpdateResidentInput struct {
	ResidentID  string
	ResidenceID string // residence of the acting syndic
	Name        string
	Email       string
	Phone       string
}

// UpdateResidentDeps holds dependencies for UpdateResident.
type UpdateResidentDeps struct {
	ResidentStore ResidentStoreForUpdate
}

// ExecuteUpdateResident edits a resident's contact details.
// PRE: Resident exists and belongs to the acting syndic's residence
// POST: Profile fields updated; status and assignment untouched
func ExecuteUpdateResident(ctx context.Context, input UpdateResidentInput, deps UpdateResidentDeps) error {
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

	r.Name = input.Name
	r.Email = input.Email
	r.Phone = input.Phone
	if err := r.Validate(); err != nil {
		return err
	}

	if err := deps.ResidentStore.Save(ctx, r); err != nil {
		return err
	}

	slog.Info("resident_event", "event", "resident_updated", "resident_id", r.ID)
	return nil
}

// ToggleResidentStatusInput carries input for the status toggle.
type ToggleResidentStatusInput struct {
	ResidentID  string
	ResidenceID string
}

// ExecuteToggleResidentStatus flips a resident between active and
// inactive without touching any other field.
// PRE: Resident exists and belongs to the acting syndic's residence
// POST: Only the Status field changes
func ExecuteToggleResidentStatus(ctx context.Context, input ToggleResidentStatusInput, deps UpdateResidentDeps) (string, error) {
	if input.ResidentID == "" {
		return "", errors.New("resident ID is required")
	}

	r, err := deps.ResidentStore.GetByID(ctx, input.ResidentID)
	if err != nil {
		return "", err
	}
	if input.ResidenceID != "" && r.ResidenceID != input.ResidenceID {
		return "", ErrResidentNotOwned
	}

	if r.IsActive() {
		r.Deactivate()
	} else {
		r.Activate()
	}

	if err := deps.ResidentStore.Save(ctx, r); err != nil {
		return "", err
	}

	slog.Info("resident_event", "event", "resident_status_toggled", "resident_id", r.ID, "status", r.Status)
	return r.Status, nil
}
