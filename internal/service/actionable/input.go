package actionable

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
)

// CreateInput holds the parameters for creating an item by hand.
type CreateInput struct {
	Title       string
	Description string
	Kind        domain.ItemKind
	DueDate     *time.Time
	ExpiresAt   *time.Time
	Priority    domain.Priority
	Category    string
	PersonIDs   []uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i CreateInput) Validate() error {
	var errs []domain.FieldError

	title := strings.TrimSpace(i.Title)
	if title == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "required"})
	}
	if len(title) > 500 {
		errs = append(errs, domain.FieldError{Field: "title", Message: "max 500 characters"})
	}
	if len(i.Description) > 5000 {
		errs = append(errs, domain.FieldError{Field: "description", Message: "max 5000 characters"})
	}
	if i.Kind != "" && !i.Kind.IsValid() {
		errs = append(errs, domain.FieldError{Field: "kind", Message: "must be todo or info"})
	}
	if i.Priority != "" && !i.Priority.IsValid() {
		errs = append(errs, domain.FieldError{Field: "priority", Message: "must be low, normal, high or urgent"})
	}
	if i.Kind == domain.ItemKindInfo && i.DueDate != nil {
		errs = append(errs, domain.FieldError{Field: "due_date", Message: "info items use expires_at"})
	}
	if len(i.PersonIDs) > 50 {
		errs = append(errs, domain.FieldError{Field: "person_ids", Message: "max 50"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListInput holds the parameters for listing items.
type ListInput struct {
	Kind     *domain.ItemKind
	PersonID *uuid.UUID
	Limit    int
	Offset   int
}

// Validate checks all fields and collects all errors.
func (i ListInput) Validate() error {
	var errs []domain.FieldError
	if i.Kind != nil && !i.Kind.IsValid() {
		errs = append(errs, domain.FieldError{Field: "kind", Message: "must be todo or info"})
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

func (i ListInput) filter() domain.ItemFilter {
	limit := i.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	return domain.ItemFilter{Kind: i.Kind, PersonID: i.PersonID, Limit: limit, Offset: i.Offset}
}
