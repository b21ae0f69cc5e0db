package person

import (
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
)

const (
	maxNameLen     = 200
	maxNotesLen    = 5000
	maxMetadataLen = 50
)

// UpsertInput holds the parameters for creating a person or merging into
// the existing one with the same name.
type UpsertInput struct {
	Name         string
	Relationship string
	Category     string
	Metadata     map[string]string
	Notes        string
	IsImportant  bool
}

// Validate checks all fields and collects all errors.
func (i UpsertInput) Validate() error {
	var errs []domain.FieldError
	errs = validateName(errs, i.Name)
	errs = validateMetadata(errs, i.Metadata)
	if len(i.Notes) > maxNotesLen {
		errs = append(errs, domain.FieldError{Field: "notes", Message: "max 5000 characters"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateInput holds a partial update. Nil fields are left unchanged;
// metadata is merged and an empty value removes a key.
type UpdateInput struct {
	PersonID     uuid.UUID
	Name         *string
	Relationship *string
	Category     *string
	Metadata     map[string]string
	Notes        *string
	IsImportant  *bool
	PinOrder     *int
	Unpin        bool
}

// Validate checks all fields and collects all errors.
func (i UpdateInput) Validate() error {
	var errs []domain.FieldError
	if i.PersonID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "person_id", Message: "required"})
	}
	if i.Name != nil {
		errs = validateName(errs, *i.Name)
	}
	errs = validateMetadata(errs, i.Metadata)
	if i.Notes != nil && len(*i.Notes) > maxNotesLen {
		errs = append(errs, domain.FieldError{Field: "notes", Message: "max 5000 characters"})
	}
	if i.PinOrder != nil && *i.PinOrder < 0 {
		errs = append(errs, domain.FieldError{Field: "pin_order", Message: "must be non-negative"})
	}
	if i.PinOrder != nil && i.Unpin {
		errs = append(errs, domain.FieldError{Field: "pin_order", Message: "cannot pin and unpin at once"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func validateName(errs []domain.FieldError, name string) []domain.FieldError {
	name = strings.TrimSpace(name)
	if name == "" {
		return append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if len(name) > maxNameLen {
		return append(errs, domain.FieldError{Field: "name", Message: "max 200 characters"})
	}
	return errs
}

func validateMetadata(errs []domain.FieldError, m map[string]string) []domain.FieldError {
	if len(m) > maxMetadataLen {
		return append(errs, domain.FieldError{Field: "metadata", Message: "max 50 keys"})
	}
	for k := range m {
		if strings.TrimSpace(k) == "" {
			return append(errs, domain.FieldError{Field: "metadata", Message: "keys must not be empty"})
		}
	}
	return errs
}
