package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/pkg/ctxutil"
)

// ConfirmResult is everything approving an entry committed.
type ConfirmResult struct {
	Entry     *domain.InboxEntry
	Event     *domain.Event
	Items     []*domain.ActionableItem
	PersonIDs []uuid.UUID
}

// Confirm approves an open entry: the (possibly overridden) proposal
// becomes an event, mentioned people are upserted, proposed items are
// created and everything is linked, all in one transaction. The proposal
// must have a start time once overrides are applied.
func (s *Service) Confirm(ctx context.Context, input ConfirmInput) (*ConfirmResult, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.inbox.GetByID(ctx, userID, input.EntryID)
	if err != nil {
		return nil, fmt.Errorf("get inbox entry: %w", err)
	}
	if !entry.Status.IsOpen() {
		return nil, fmt.Errorf("inbox entry %s is %s: %w", entry.ID, entry.Status, domain.ErrConflict)
	}

	p := applyOverrides(entry.Data.Proposal, input)
	if p.StartTime == nil {
		return nil, domain.NewValidationError("start_time", "required to confirm")
	}
	if p.EndTime != nil && p.EndTime.Before(*p.StartTime) {
		return nil, domain.NewValidationError("end_time", "must not be before start_time")
	}

	externalID := s.calendar.CreateEvent(ctx, userID, domain.CalendarEventDraft{
		Title:     p.Title,
		StartTime: *p.StartTime,
		EndTime:   p.EndTime,
		Location:  p.Location,
		Category:  p.Category,
	})

	result := &ConfirmResult{}
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		locked, err := s.inbox.GetForUpdate(txCtx, userID, entry.ID)
		if err != nil {
			return fmt.Errorf("lock inbox entry: %w", err)
		}
		if !locked.Status.IsOpen() {
			return fmt.Errorf("inbox entry %s is %s: %w", locked.ID, locked.Status, domain.ErrConflict)
		}

		personIDs, err := s.resolvePeople(txCtx, userID, p.People)
		if err != nil {
			return err
		}
		result.PersonIDs = personIDs

		dumpID := locked.DumpID
		ev, err := s.events.Create(txCtx, &domain.Event{
			ID:                 uuid.New(),
			UserID:             userID,
			Title:              p.Title,
			StartTime:          *p.StartTime,
			EndTime:            p.EndTime,
			Location:           p.Location,
			Category:           p.Category,
			ExternalCalendarID: externalID,
			DumpID:             &dumpID,
			CreatedAt:          s.now(),
		})
		if err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		result.Event = ev

		if err := s.events.LinkPeople(txCtx, userID, ev.ID, personIDs); err != nil {
			return fmt.Errorf("link event people: %w", err)
		}
		if err := s.dumps.LinkPeople(txCtx, userID, dumpID, personIDs); err != nil {
			return fmt.Errorf("link dump people: %w", err)
		}

		for _, pi := range p.Items {
			item, err := s.items.Create(txCtx, itemFromProposal(userID, dumpID, pi, personIDs, s.now()))
			if err != nil {
				return fmt.Errorf("create item: %w", err)
			}
			result.Items = append(result.Items, item)
		}

		at := s.now()
		if err := s.inbox.Resolve(txCtx, userID, locked.ID, domain.InboxStatusApproved, at); err != nil {
			return fmt.Errorf("resolve inbox entry: %w", err)
		}
		locked.Status = domain.InboxStatusApproved
		locked.ResolvedAt = &at
		result.Entry = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "inbox entry confirmed",
		slog.String("user_id", userID.String()),
		slog.String("entry_id", entry.ID.String()),
		slog.String("event_id", result.Event.ID.String()),
		slog.Int("items", len(result.Items)),
		slog.Bool("synced", externalID != nil),
	)
	return result, nil
}

func applyOverrides(p domain.Proposal, input ConfirmInput) domain.Proposal {
	if t := trimOrNil(input.Title); t != nil {
		p.Title = *t
	}
	if input.StartTime != nil {
		st := input.StartTime.UTC()
		p.StartTime = &st
	}
	if input.EndTime != nil {
		et := input.EndTime.UTC()
		p.EndTime = &et
	}
	if input.Location != nil {
		p.Location = strings.TrimSpace(*input.Location)
	}
	return p
}

// resolvePeople returns ids for every mentioned person, creating or
// merging by name those the extractor did not match to a known contact.
func (s *Service) resolvePeople(ctx context.Context, userID uuid.UUID, mentions []domain.ProposedPerson) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(mentions))
	seen := make(map[uuid.UUID]struct{}, len(mentions))

	for _, m := range mentions {
		id, err := s.resolvePerson(ctx, userID, m)
		if err != nil {
			return nil, err
		}
		if id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Service) resolvePerson(ctx context.Context, userID uuid.UUID, m domain.ProposedPerson) (uuid.UUID, error) {
	if m.PersonID != nil {
		return *m.PersonID, nil
	}
	name := strings.TrimSpace(m.Name)
	if name == "" {
		return uuid.Nil, nil
	}

	var meta map[string]string
	if g := strings.TrimSpace(m.Grade); g != "" {
		meta = map[string]string{"grade": g}
	}

	p, err := s.people.Upsert(ctx, &domain.Person{
		UserID:       userID,
		Name:         name,
		Relationship: strings.TrimSpace(m.Relationship),
		Category:     strings.TrimSpace(m.Category),
		Metadata:     meta,
		Notes:        strings.TrimSpace(m.Notes),
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert person %q: %w", name, err)
	}
	return p.ID, nil
}

func itemFromProposal(userID, dumpID uuid.UUID, pi domain.ProposedItem, personIDs []uuid.UUID, now time.Time) *domain.ActionableItem {
	kind := pi.Kind
	if !kind.IsValid() {
		kind = domain.ItemKindTodo
	}
	priority := pi.Priority
	if !priority.IsValid() {
		priority = domain.PriorityNormal
	}

	item := &domain.ActionableItem{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(pi.Title),
		Description: strings.TrimSpace(pi.Description),
		Kind:        kind,
		Priority:    priority,
		Category:    strings.TrimSpace(pi.Category),
		DumpID:      &dumpID,
		PersonIDs:   personIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// Info items expire rather than fall due.
	if kind == domain.ItemKindInfo {
		item.ExpiresAt = pi.DueDate
	} else {
		item.DueDate = pi.DueDate
	}
	return item
}
