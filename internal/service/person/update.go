package person

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/pkg/ctxutil"
)

// Update applies a partial update to a person.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*domain.Person, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	p, err := s.people.GetByID(ctx, userID, input.PersonID)
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}

	if input.Name != nil {
		p.Name = strings.TrimSpace(*input.Name)
	}
	if input.Relationship != nil {
		p.Relationship = strings.TrimSpace(*input.Relationship)
	}
	if input.Category != nil {
		p.Category = strings.TrimSpace(*input.Category)
	}
	if input.Notes != nil {
		p.Notes = strings.TrimSpace(*input.Notes)
	}
	if input.IsImportant != nil {
		p.IsImportant = *input.IsImportant
	}
	switch {
	case input.Unpin:
		p.PinOrder = nil
	case input.PinOrder != nil:
		p.PinOrder = input.PinOrder
	}
	if input.Metadata != nil {
		p.Metadata = domain.MergeMetadata(p.Metadata, input.Metadata)
	}

	updated, err := s.people.Update(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("update person: %w", err)
	}

	s.log.InfoContext(ctx, "person updated",
		slog.String("user_id", userID.String()),
		slog.String("person_id", updated.ID.String()),
	)
	return updated, nil
}

// Delete removes a person. Links to dumps, events and items go with it.
func (s *Service) Delete(ctx context.Context, personID uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := s.people.Delete(ctx, userID, personID); err != nil {
		return fmt.Errorf("delete person: %w", err)
	}

	s.log.InfoContext(ctx, "person deleted",
		slog.String("user_id", userID.String()),
		slog.String("person_id", personID.String()),
	)
	return nil
}
