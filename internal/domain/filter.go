package domain

import (
	"time"

	"github.com/google/uuid"
)

// DumpHistoryFilter narrows the dump history listing.
type DumpHistoryFilter struct {
	// Processed filters on processed_at being set (true) or NULL (false).
	Processed *bool
	Source    *DumpSource
	Limit     int
	Offset    int
}

// EventFilter narrows event listings. From/To bound start_time as [From, To).
type EventFilter struct {
	From     *time.Time
	To       *time.Time
	PersonID *uuid.UUID
	Limit    int
}

// ItemFilter narrows actionable item listings.
type ItemFilter struct {
	Kind     *ItemKind
	PersonID *uuid.UUID
	Limit    int
	Offset   int
}
