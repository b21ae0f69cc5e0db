package person

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/pkg/ctxutil"
)

// Upsert creates a person, or merges into the existing one whose name
// matches after normalization. Metadata keys are merged, never replaced
// wholesale, so repeated mentions enrich one record.
func (s *Service) Upsert(ctx context.Context, input UpsertInput) (*domain.Person, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	p, err := s.people.Upsert(ctx, &domain.Person{
		UserID:       userID,
		Name:         strings.TrimSpace(input.Name),
		Relationship: strings.TrimSpace(input.Relationship),
		Category:     strings.TrimSpace(input.Category),
		Metadata:     input.Metadata,
		Notes:        strings.TrimSpace(input.Notes),
		IsImportant:  input.IsImportant,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert person: %w", err)
	}

	s.log.InfoContext(ctx, "person upserted",
		slog.String("user_id", userID.String()),
		slog.String("person_id", p.ID.String()),
	)
	return p, nil
}
