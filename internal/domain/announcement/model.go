package announcement

import (
	"errors"
	"time"
)

// Priority constants
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityUrgent = "urgent"
)

// ValidPriorities contains all valid priority values.
var ValidPriorities = []string{PriorityLow, PriorityNormal, PriorityUrgent}

// Max length constants for user-editable fields.
const (
	MaxTitleLength = 150
)

// Domain errors
var (
	ErrEmptyTitle      = errors.New("announcement title cannot be empty")
	ErrEmptyContent    = errors.New("announcement content cannot be empty")
	ErrEmptyPoster     = errors.New("announcement poster is required")
	ErrInvalidPriority = errors.New("priority must be one of: low, normal, urgent")
	ErrNoRecipients    = errors.New("announcement must have at least one recipient")
)

// Announcement is the group row for a fan-out posting. Recipients hang
// off the announcement ID, so two announcements created in the same
// second by the same poster remain distinct and independently deletable.
// Content supports Markdown formatting.
type Announcement struct {
	ID        string
	PosterID  string // AccountID of the posting syndic
	Title     string
	Content   string // Markdown content
	Priority  string // low, normal, urgent
	CreatedAt time.Time
}

// Recipient is one fan-out row: a single resident's copy of an
// announcement, with its own read marker.
type Recipient struct {
	ID             string
	AnnouncementID string
	RecipientID    string // Resident ID
	ReadAt         time.Time
}

// Validate checks if the Announcement has valid data.
// PRE: Announcement struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Announcement) Validate() error {
	if a.PosterID == "" {
		return ErrEmptyPoster
	}
	if a.Title == "" {
		return ErrEmptyTitle
	}
	if len(a.Title) > MaxTitleLength {
		return errors.New("announcement title cannot exceed 150 characters")
	}
	if a.Content == "" {
		return ErrEmptyContent
	}
	if !isValidPriority(a.Priority) {
		return ErrInvalidPriority
	}
	return nil
}

// IsRead returns true if this recipient has read the announcement.
// INVARIANT: ReadAt field is not mutated
func (r *Recipient) IsRead() bool {
	return !r.ReadAt.IsZero()
}

func isValidPriority(p string) bool {
	for _, v := range ValidPriorities {
		if p == v {
			return true
		}
	}
	return false
}
