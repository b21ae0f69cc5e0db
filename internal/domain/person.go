package domain

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Person is a contact in the user's graph. Name is unique per user
// (compared in NormalizeName form).
type Person struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Name         string
	Relationship string
	Category     string
	Metadata     map[string]string
	Notes        string
	IsImportant  bool
	PinOrder     *int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MergeMetadata returns a copy of base overlaid with update. Empty values in
// update remove the key.
func MergeMetadata(base, update map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(update))
	maps.Copy(out, base)
	for k, v := range update {
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// ToKnownPerson projects the person onto the extractor roster shape.
func (p *Person) ToKnownPerson() KnownPerson {
	return KnownPerson{
		ID:           p.ID,
		Name:         p.Name,
		Relationship: p.Relationship,
		Category:     p.Category,
		Metadata:     p.Metadata,
	}
}

// PersonOverview aggregates what the user knows about one person.
type PersonOverview struct {
	Person      Person
	Events      []*Event
	ActiveItems []*ActionableItem
}
