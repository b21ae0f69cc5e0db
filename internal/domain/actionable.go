package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActionableItem is a todo or info item derived from a dump or created by hand.
//
// ArchivedAt and ArchivedReason are always set and cleared together; use
// Archive and Unarchive rather than assigning them directly.
type ActionableItem struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Title          string
	Description    string
	Kind           ItemKind
	DueDate        *time.Time
	ExpiresAt      *time.Time
	Priority       Priority
	Category       string
	Completed      bool
	CompletedAt    *time.Time
	ArchivedAt     *time.Time
	ArchivedReason *ArchiveReason
	DumpID         *uuid.UUID
	PersonIDs      []uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsArchived reports whether the item is in the archived state.
func (i *ActionableItem) IsArchived() bool {
	return i.ArchivedAt != nil
}

// Archive moves the item to the archived state with the given reason.
func (i *ActionableItem) Archive(reason ArchiveReason, at time.Time) {
	i.ArchivedAt = &at
	i.ArchivedReason = &reason
}

// Unarchive returns the item to the active list.
func (i *ActionableItem) Unarchive() {
	i.ArchivedAt = nil
	i.ArchivedReason = nil
}

// Complete marks the item done and archives it as user_completed.
func (i *ActionableItem) Complete(at time.Time) {
	i.Completed = true
	i.CompletedAt = &at
	i.Archive(ArchiveReasonUserCompleted, at)
}

// ItemDashboard holds counters for the actionable-item dashboard.
type ItemDashboard struct {
	ActiveTodos    int
	ActiveInfos    int
	DueToday       int
	Overdue        int
	Archived       int
	PendingInbox   int
	NeedsInfoInbox int
}
