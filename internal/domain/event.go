package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultEventDuration is assumed when an event has no end time.
const DefaultEventDuration = time.Hour

// Event is a committed calendar item.
type Event struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	Title              string
	StartTime          time.Time
	EndTime            *time.Time
	Location           string
	Category           string
	ExternalCalendarID *string
	DumpID             *uuid.UUID
	CreatedAt          time.Time
}

// EffectiveEnd returns EndTime, or StartTime plus DefaultEventDuration.
func (e *Event) EffectiveEnd() time.Time {
	if e.EndTime != nil {
		return *e.EndTime
	}
	return e.StartTime.Add(DefaultEventDuration)
}

// CalendarEventDraft is what the calendar sync adapter needs to create an
// external entry.
type CalendarEventDraft struct {
	Title     string
	StartTime time.Time
	EndTime   *time.Time
	Location  string
	Category  string
}

// CalendarAccount links a user to an external calendar.
type CalendarAccount struct {
	UserID       uuid.UUID
	Provider     string
	CalendarID   string
	RefreshToken string
	CreatedAt    time.Time
}
