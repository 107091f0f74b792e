package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	apartmentStore "syndicway/internal/adapters/storage/apartment"
	"syndicway/internal/domain/apartment"
	"syndicway/internal/domain/subscription"
)

// ApartmentStoreForOrchestrator defines the store interface needed by apartment operations.
type ApartmentStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (apartment.Apartment, error)
	Save(ctx context.Context, a apartment.Apartment) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, filter apartmentStore.ListFilter) (int, error)
}

// ErrApartmentNotOwned is returned when a syndic touches an apartment
// outside their residence.
var ErrApartmentNotOwned = errors.New("apartment does not belong to this residence")

// ErrApartmentOccupied is returned when deleting an apartment with a tenant.
var ErrApartmentOccupied = errors.New("apartment is occupied; release the resident first")

// CreateApartmentInput carries input for the create-apartment orchestrator.
type CreateApartmentInput struct {
	SyndicID    string
	ResidenceID string
	Floor       int
	Number      string
	Type        string
}

// ApartmentDeps holds dependencies for apartment orchestrators.
type ApartmentDeps struct {
	ApartmentStore ApartmentStoreForOrchestrator
	PlanGuard      PlanGuard
	GenerateID     func() string
}

// ExecuteCreateApartment adds a unit to the syndic's residence. The
// unique (residence, floor, number) constraint rejects duplicates even
// under concurrent submissions.
// PRE: SyndicID has an active subscription with apartment headroom
// POST: Apartment persisted, or ErrDuplicateUnit / cap error
func ExecuteCreateApartment(ctx context.Context, input CreateApartmentInput, deps ApartmentDeps) (apartment.Apartment, error) {
	if input.ResidenceID == "" {
		return apartment.Apartment{}, errors.New("residence is required")
	}

	if err := checkApartmentCap(ctx, input.SyndicID, input.ResidenceID, deps); err != nil {
		return apartment.Apartment{}, err
	}

	a := apartment.Apartment{
		ID:          deps.GenerateID(),
		ResidenceID: input.ResidenceID,
		Floor:       input.Floor,
		Number:      input.Number,
		Type:        input.Type,
	}
	if err := a.Validate(); err != nil {
		return apartment.Apartment{}, err
	}

	if err := deps.ApartmentStore.Save(ctx, a); err != nil {
		return apartment.Apartment{}, err
	}

	slog.Info("apartment_event", "event", "apartment_created", "apartment_id", a.ID, "residence_id", a.ResidenceID, "floor", a.Floor, "number", a.Number)
	return a, nil
}

// UpdateApartmentInput carries input for the update-apartment orchestrator.
type UpdateApartmentInput struct {
	ApartmentID string
	ResidenceID string
	Floor       int
	Number      string
	Type        string
}

// ExecuteUpdateApartment edits a unit's floor, number or type.
// PRE: Apartment exists and belongs to the acting syndic's residence
// POST: Unit fields updated; occupancy untouched
func ExecuteUpdateApartment(ctx context.Context, input UpdateApartmentInput, deps ApartmentDeps) error {
	if input.ApartmentID == "" {
		return errors.New("apartment ID is required")
	}

	a, err := deps.ApartmentStore.GetByID(ctx, input.ApartmentID)
	if err != nil {
		return err
	}
	if input.ResidenceID != "" && a.ResidenceID != input.ResidenceID {
		return ErrApartmentNotOwned
	}

	a.Floor = input.Floor
	a.Number = input.Number
	a.Type = input.Type
	if err := a.Validate(); err != nil {
		return err
	}

	if err := deps.ApartmentStore.Save(ctx, a); err != nil {
		return err
	}

	slog.Info("apartment_event", "event", "apartment_updated", "apartment_id", a.ID)
	return nil
}

// DeleteApartmentInput carries input for the delete-apartment orchestrator.
type DeleteApartmentInput struct {
	ApartmentID string
	ResidenceID string
}

// ExecuteDeleteApartment removes a vacant unit.
// PRE: Apartment exists, belongs to the residence and has no tenant
// POST: Unit removed
func ExecuteDeleteApartment(ctx context.Context, input DeleteApartmentInput, deps ApartmentDeps) error {
	if input.ApartmentID == "" {
		return errors.New("apartment ID is required")
	}

	a, err := deps.ApartmentStore.GetByID(ctx, input.ApartmentID)
	if err != nil {
		return err
	}
	if input.ResidenceID != "" && a.ResidenceID != input.ResidenceID {
		return ErrApartmentNotOwned
	}
	if !a.IsVacant() {
		return ErrApartmentOccupied
	}

	if err := deps.ApartmentStore.Delete(ctx, a.ID); err != nil {
		return err
	}

	slog.Info("apartment_event", "event", "apartment_deleted", "apartment_id", a.ID)
	return nil
}

// AssignApartmentInput carries input for assigning a resident to a unit.
type AssignApartmentInput struct {
	ApartmentID string
	ResidenceID string
	ResidentID  string // empty releases the unit
}

// ExecuteAssignApartment assigns or releases a unit's tenant.
// PRE: Apartment exists and belongs to the residence
// POST: ResidentID set or cleared
func ExecuteAssignApartment(ctx context.Context, input AssignApartmentInput, deps ApartmentDeps) error {
	if input.ApartmentID == "" {
		return errors.New("apartment ID is required")
	}

	a, err := deps.ApartmentStore.GetByID(ctx, input.ApartmentID)
	if err != nil {
		return err
	}
	if input.ResidenceID != "" && a.ResidenceID != input.ResidenceID {
		return ErrApartmentNotOwned
	}

	if input.ResidentID == "" {
		if err := a.Release(); err != nil {
			return err
		}
	} else {
		if err := a.Assign(input.ResidentID); err != nil {
			return err
		}
	}

	if err := deps.ApartmentStore.Save(ctx, a); err != nil {
		return err
	}

	slog.Info("apartment_event", "event", "apartment_assignment_changed", "apartment_id", a.ID, "resident_id", input.ResidentID)
	return nil
}

// checkApartmentCap enforces the active plan's apartment limit.
func checkApartmentCap(ctx context.Context, syndicID, residenceID string, deps ApartmentDeps) error {
	purchase, err := deps.PlanGuard.ActivePurchase(ctx, syndicID)
	if err != nil {
		return err
	}
	plan, err := deps.PlanGuard.GetByID(ctx, purchase.SubscriptionID)
	if err != nil {
		return err
	}
	count, err := deps.ApartmentStore.Count(ctx, apartmentStore.ListFilter{ResidenceID: residenceID, Floor: -1})
	if err != nil {
		return err
	}
	if count >= plan.MaxApartments {
		return subscription.ErrApartmentCap
	}
	return nil
}
