package event

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
)

// CreateInput holds the parameters for creating an event by hand.
type CreateInput struct {
	Title     string
	StartTime time.Time
	EndTime   *time.Time
	Location  string
	Category  string
	PersonIDs []uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i CreateInput) Validate() error {
	var errs domain.FieldErrors
	title := strings.TrimSpace(i.Title)
	errs.Check(title == "", "title", "required")
	errs.Check(len(title) > 500, "title", "max 500 characters")
	errs.Check(i.StartTime.IsZero(), "start_time", "required")
	errs.Check(i.EndTime != nil && i.EndTime.Before(i.StartTime), "end_time", "must not be before start_time")
	errs.Check(len(i.PersonIDs) > 50, "person_ids", "max 50")
	return errs.Err()
}

// ListInput selects events whose start falls in [From, To).
type ListInput struct {
	From     *time.Time
	To       *time.Time
	PersonID *uuid.UUID
	Limit    int
}

// Validate checks all fields and collects all errors.
func (i ListInput) Validate() error {
	var errs domain.FieldErrors
	errs.Check(i.From != nil && i.To != nil && !i.To.After(*i.From), "to", "must be after from")
	errs.Check(i.Limit < 0 || i.Limit > MaxLimit, "limit", "must be between 0 and 500")
	return errs.Err()
}
