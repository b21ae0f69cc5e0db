package inbox

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
)

// ListInput selects entries by status. Statuses use the API spelling, so
// "rejected" selects dismissed entries.
type ListInput struct {
	Statuses []string
	Limit    int
	Offset   int
}

// Validate checks all fields and collects all errors.
func (i ListInput) Validate() error {
	var errs []domain.FieldError

	for _, s := range i.Statuses {
		if _, ok := domain.ParseInboxStatus(s); !ok {
			errs = append(errs, domain.FieldError{Field: "status", Message: "unknown status " + s})
		}
	}
	if i.Limit < 0 || i.Limit > MaxLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 200"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func (i ListInput) statuses() []domain.InboxStatus {
	out := make([]domain.InboxStatus, 0, len(i.Statuses))
	for _, s := range i.Statuses {
		st, _ := domain.ParseInboxStatus(s)
		out = append(out, st)
	}
	return out
}

// ConfirmInput approves an entry. Non-nil overrides replace the proposed
// values before the event is committed.
type ConfirmInput struct {
	EntryID   uuid.UUID
	Title     *string
	StartTime *time.Time
	EndTime   *time.Time
	Location  *string
}

// Validate checks all fields and collects all errors.
func (i ConfirmInput) Validate() error {
	var errs []domain.FieldError

	if i.EntryID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "entry_id", Message: "required"})
	}
	if i.Title != nil && trimOrNil(i.Title) == nil {
		errs = append(errs, domain.FieldError{Field: "title", Message: "must not be empty"})
	}
	if i.Title != nil && len(*i.Title) > 500 {
		errs = append(errs, domain.FieldError{Field: "title", Message: "max 500 characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
