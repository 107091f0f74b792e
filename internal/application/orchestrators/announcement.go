package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"syndicway/internal/domain/announcement"
	"syndicway/internal/domain/resident"
)

// AnnouncementStoreForOrchestrator defines the store interface needed by announcement operations.
type AnnouncementStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (announcement.Announcement, error)
	Create(ctx context.Context, a announcement.Announcement, recipients []announcement.Recipient) error
	Delete(ctx context.Context, id string) error
	MarkRead(ctx context.Context, announcementID, residentID string, at time.Time) error
}

// ActiveResidentLister lists the active residents of a residence.
type ActiveResidentLister interface {
	ListActive(ctx context.Context, residenceID string) ([]resident.Resident, error)
}

// ErrAnnouncementNotOwned is returned when a syndic touches another
// poster's announcement.
var ErrAnnouncementNotOwned = errors.New("announcement was posted by someone else")

// CreateAnnouncementInput carries input for the create-announcement orchestrator.
type CreateAnnouncementInput struct {
	PosterID    string
	ResidenceID string
	Title       string
	Content     string // Markdown
	Priority    string
	ResidentIDs []string // explicit targets; empty means all active residents
}

// AnnouncementDeps holds dependencies for announcement orchestrators.
type AnnouncementDeps struct {
	AnnouncementStore AnnouncementStoreForOrchestrator
	ResidentStore     ActiveResidentLister
	GenerateID        func() string
	Now               func() time.Time
}

// ExecuteCreateAnnouncement posts an announcement to every active
// resident of the residence. The group row and all recipient rows are
// committed in one transaction; each announcement has its own ID, so
// same-second postings by the same syndic stay distinct.
// PRE: Residence has at least one active resident
// POST: Announcement and fan-out rows committed, or nothing
func ExecuteCreateAnnouncement(ctx context.Context, input CreateAnnouncementInput, deps AnnouncementDeps) (announcement.Announcement, error) {
	if input.PosterID == "" || input.ResidenceID == "" {
		return announcement.Announcement{}, errors.New("poster and residence are required")
	}

	a := announcement.Announcement{
		ID:        deps.GenerateID(),
		PosterID:  input.PosterID,
		Title:     input.Title,
		Content:   input.Content,
		Priority:  input.Priority,
		CreatedAt: deps.Now(),
	}
	if a.Priority == "" {
		a.Priority = announcement.PriorityNormal
	}
	if err := a.Validate(); err != nil {
		return announcement.Announcement{}, err
	}

	targetIDs := input.ResidentIDs
	if len(targetIDs) == 0 {
		residents, err := deps.ResidentStore.ListActive(ctx, input.ResidenceID)
		if err != nil {
			return announcement.Announcement{}, err
		}
		for _, r := range residents {
			targetIDs = append(targetIDs, r.ID)
		}
	}
	if len(targetIDs) == 0 {
		return announcement.Announcement{}, announcement.ErrNoRecipients
	}

	recipients := make([]announcement.Recipient, 0, len(targetIDs))
	for _, id := range targetIDs {
		recipients = append(recipients, announcement.Recipient{
			ID:             deps.GenerateID(),
			AnnouncementID: a.ID,
			RecipientID:    id,
		})
	}

	if err := deps.AnnouncementStore.Create(ctx, a, recipients); err != nil {
		return announcement.Announcement{}, err
	}

	slog.Info("announcement_event", "event", "announcement_created", "announcement_id", a.ID, "poster_id", a.PosterID, "recipients", len(recipients), "priority", a.Priority)
	return a, nil
}

// DeleteAnnouncementInput carries input for the delete-announcement orchestrator.
type DeleteAnnouncementInput struct {
	AnnouncementID string
	PosterID       string
}

// ExecuteDeleteAnnouncement removes an announcement and its fan-out rows.
// Deletion is keyed by the announcement's own ID, so only the targeted
// posting disappears.
// PRE: Announcement exists and was posted by PosterID
// POST: Group row and recipient rows removed together
func ExecuteDeleteAnnouncement(ctx context.Context, input DeleteAnnouncementInput, deps AnnouncementDeps) error {
	if input.AnnouncementID == "" {
		return errors.New("announcement ID is required")
	}

	a, err := deps.AnnouncementStore.GetByID(ctx, input.AnnouncementID)
	if err != nil {
		return err
	}
	if input.PosterID != "" && a.PosterID != input.PosterID {
		return ErrAnnouncementNotOwned
	}

	if err := deps.AnnouncementStore.Delete(ctx, a.ID); err != nil {
		return err
	}

	slog.Info("announcement_event", "event", "announcement_deleted", "announcement_id", a.ID)
	return nil
}

// MarkAnnouncementReadInput carries input for the read marker.
type MarkAnnouncementReadInput struct {
	AnnouncementID string
	ResidentID     string
}

// ExecuteMarkAnnouncementRead records that a resident read an announcement.
// Repeated calls keep the first read timestamp.
// PRE: Resident is a recipient of the announcement
// POST: read_at set once
func ExecuteMarkAnnouncementRead(ctx context.Context, input MarkAnnouncementReadInput, deps AnnouncementDeps) error {
	if input.AnnouncementID == "" || input.ResidentID == "" {
		return errors.New("announcement and resident are required")
	}
	return deps.AnnouncementStore.MarkRead(ctx, input.AnnouncementID, input.ResidentID, deps.Now())
}
