package dump

import (
	"strings"

	"github.com/heartmarshall/mindump-backend/internal/domain"
)

const (
	maxTextLength     = 20000
	maxMediaRefLength = 2048
	maxHistoryLimit   = 200
)

// CreateInput holds the parameters for capturing a dump.
type CreateInput struct {
	Source   domain.DumpSource
	Text     *string
	MediaRef *string
}

// Validate checks all fields and collects all errors.
func (i CreateInput) Validate() error {
	var errs []domain.FieldError

	if i.Source != "" && !i.Source.IsValid() {
		errs = append(errs, domain.FieldError{Field: "source", Message: "must be manual, forwarded, share or photo"})
	}

	text := trimOrNil(i.Text)
	media := trimOrNil(i.MediaRef)
	if text == nil && media == nil {
		errs = append(errs, domain.FieldError{Field: "text", Message: "text or media_ref required"})
	}
	if text != nil && len(*text) > maxTextLength {
		errs = append(errs, domain.FieldError{Field: "text", Message: "max 20000 characters"})
	}
	if media != nil && len(*media) > maxMediaRefLength {
		errs = append(errs, domain.FieldError{Field: "media_ref", Message: "max 2048 characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// HistoryInput holds the parameters for listing dump history.
type HistoryInput struct {
	Processed *bool
	Source    *domain.DumpSource
	Limit     int
	Offset    int
}

// Validate checks all fields and collects all errors.
func (i HistoryInput) Validate() error {
	var errs []domain.FieldError
	if i.Source != nil && !i.Source.IsValid() {
		errs = append(errs, domain.FieldError{Field: "source", Message: "invalid value"})
	}
	if i.Limit < 0 || i.Limit > maxHistoryLimit {
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

// trimOrNil trims whitespace. Returns nil if result is empty.
func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
