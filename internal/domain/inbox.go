package domain

import (
	"time"

	"github.com/google/uuid"
)

// InboxEntry is a proposal held for human review.
type InboxEntry struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	DumpID     uuid.UUID
	Data       ProposedData
	Confidence float64
	FlagReason *string
	Status     InboxStatus
	CreatedAt  time.Time
	ResolvedAt *time.Time
}
