package domain

import (
	"time"

	"github.com/google/uuid"
)

// Dump is a unit of raw captured input waiting to be (or already) triaged.
type Dump struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Source      DumpSource
	Text        *string
	MediaRef    *string
	Embedding   []float32
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// HasText reports whether the dump carries non-empty text content.
func (d *Dump) HasText() bool {
	return d.Text != nil && *d.Text != ""
}

// IsProcessed reports whether the pipeline has already attempted this dump.
func (d *Dump) IsProcessed() bool {
	return d.ProcessedAt != nil
}

// DumpOutcome is the result the pipeline left behind for a dump.
// Both IDs are nil for an unprocessed dump or a processed-but-empty one.
type DumpOutcome struct {
	EventID      *uuid.UUID
	InboxEntryID *uuid.UUID
}

// DumpWithOutcome is the history view of a dump.
type DumpWithOutcome struct {
	Dump
	Outcome DumpOutcome
}

// SimilarDump is a historical dump returned as extraction context.
type SimilarDump struct {
	DumpID     uuid.UUID
	Text       string
	Similarity float64
}
