package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProposedDataVersion is the current schema version of persisted proposals.
const ProposedDataVersion = 1

// Proposal is the structured output of extraction. It only lives in memory
// until the triage router either commits it or stores it in the inbox.
type Proposal struct {
	Title         string           `json:"title"`
	StartTime     *time.Time       `json:"start_time,omitempty"`
	EndTime       *time.Time       `json:"end_time,omitempty"`
	Location      string           `json:"location,omitempty"`
	Category      string           `json:"category,omitempty"`
	Confidence    float64          `json:"confidence_score"`
	People        []ProposedPerson `json:"people,omitempty"`
	Items         []ProposedItem   `json:"actionable_items,omitempty"`
	MissingInfo   []string         `json:"missing_info,omitempty"`
	Transcription string           `json:"transcription,omitempty"`
}

// HasTimeWindow reports whether both ends of the event window were extracted.
func (p *Proposal) HasTimeWindow() bool {
	return p.StartTime != nil && p.EndTime != nil
}

// ProposedPerson is a person mention detected by the extractor.
type ProposedPerson struct {
	Name         string     `json:"name"`
	Relationship string     `json:"relationship,omitempty"`
	Category     string     `json:"category,omitempty"`
	Grade        string     `json:"grade,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	PersonID     *uuid.UUID `json:"existing_person_id,omitempty"`
	IsNew        bool       `json:"is_new"`
}

// ProposedItem is a candidate todo or info item.
type ProposedItem struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Kind        ItemKind   `json:"kind,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	Category    string     `json:"category,omitempty"`
}

// ProposedData is the versioned envelope an inbox entry persists.
type ProposedData struct {
	Version  int      `json:"version"`
	Proposal Proposal `json:"proposal"`
}

// NewProposedData wraps p in the current envelope version.
func NewProposedData(p Proposal) ProposedData {
	return ProposedData{Version: ProposedDataVersion, Proposal: p}
}

// KnownPerson is the roster entry handed to the extractor so that name
// mentions resolve to existing people instead of minting new ones.
type KnownPerson struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Relationship string            `json:"relationship,omitempty"`
	Category     string            `json:"category,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// ExtractRequest is everything the extraction model sees for one dump.
type ExtractRequest struct {
	UserID   uuid.UUID
	Text     *string
	MediaRef *string
	// Context holds texts of similar earlier dumps, closest first.
	Context []string
	People  []KnownPerson
	// Now anchors relative dates ("next Tuesday") in the dump.
	Now time.Time
}
