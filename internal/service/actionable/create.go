package actionable

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/pkg/ctxutil"
)

// Create adds an item by hand.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.ActionableItem, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	kind := input.Kind
	if kind == "" {
		kind = domain.ItemKindTodo
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}

	now := s.now()
	item, err := s.items.Create(ctx, &domain.ActionableItem{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Kind:        kind,
		DueDate:     input.DueDate,
		ExpiresAt:   input.ExpiresAt,
		Priority:    priority,
		Category:    strings.TrimSpace(input.Category),
		PersonIDs:   input.PersonIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.log.InfoContext(ctx, "item created",
		slog.String("user_id", userID.String()),
		slog.String("item_id", item.ID.String()),
		slog.String("kind", string(kind)),
	)
	return item, nil
}
