package rest

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
)

type dumpResponse struct {
	ID          uuid.UUID  `json:"id"`
	Source      string     `json:"source"`
	Text        *string    `json:"text,omitempty"`
	MediaRef    *string    `json:"mediaRef,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
}

type dumpHistoryResponse struct {
	dumpResponse
	EventID      *uuid.UUID `json:"eventId,omitempty"`
	InboxEntryID *uuid.UUID `json:"inboxEntryId,omitempty"`
}

func toDumpResponse(d *domain.Dump) dumpResponse {
	return dumpResponse{
		ID:          d.ID,
		Source:      d.Source.String(),
		Text:        d.Text,
		MediaRef:    d.MediaRef,
		CreatedAt:   d.CreatedAt,
		ProcessedAt: d.ProcessedAt,
	}
}

type eventResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Title              string     `json:"title"`
	StartTime          time.Time  `json:"startTime"`
	EndTime            *time.Time `json:"endTime,omitempty"`
	Location           string     `json:"location,omitempty"`
	Category           string     `json:"category,omitempty"`
	ExternalCalendarID *string    `json:"externalCalendarId,omitempty"`
	DumpID             *uuid.UUID `json:"dumpId,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

func toEventResponse(e *domain.Event) eventResponse {
	return eventResponse{
		ID:                 e.ID,
		Title:              e.Title,
		StartTime:          e.StartTime,
		EndTime:            e.EndTime,
		Location:           e.Location,
		Category:           e.Category,
		ExternalCalendarID: e.ExternalCalendarID,
		DumpID:             e.DumpID,
		CreatedAt:          e.CreatedAt,
	}
}

func toEventResponses(events []*domain.Event) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	return out
}

type personResponse struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Relationship string            `json:"relationship,omitempty"`
	Category     string            `json:"category,omitempty"`
	Metadata     map[string]string `json:"metadata"`
	Notes        string            `json:"notes,omitempty"`
	IsImportant  bool              `json:"isImportant"`
	PinOrder     *int              `json:"pinOrder,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

func toPersonResponse(p *domain.Person) personResponse {
	meta := p.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	return personResponse{
		ID:           p.ID,
		Name:         p.Name,
		Relationship: p.Relationship,
		Category:     p.Category,
		Metadata:     meta,
		Notes:        p.Notes,
		IsImportant:  p.IsImportant,
		PinOrder:     p.PinOrder,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type itemResponse struct {
	ID             uuid.UUID   `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description,omitempty"`
	Kind           string      `json:"kind"`
	DueDate        *time.Time  `json:"dueDate,omitempty"`
	ExpiresAt      *time.Time  `json:"expiresAt,omitempty"`
	Priority       string      `json:"priority"`
	Category       string      `json:"category,omitempty"`
	Completed      bool        `json:"completed"`
	CompletedAt    *time.Time  `json:"completedAt,omitempty"`
	ArchivedAt     *time.Time  `json:"archivedAt,omitempty"`
	ArchivedReason *string     `json:"archivedReason,omitempty"`
	DumpID         *uuid.UUID  `json:"dumpId,omitempty"`
	PersonIDs      []uuid.UUID `json:"personIds"`
	CreatedAt      time.Time   `json:"createdAt"`
}

func toItemResponse(i *domain.ActionableItem) itemResponse {
	var reason *string
	if i.ArchivedReason != nil {
		s := i.ArchivedReason.String()
		reason = &s
	}
	people := i.PersonIDs
	if people == nil {
		people = []uuid.UUID{}
	}
	return itemResponse{
		ID:             i.ID,
		Title:          i.Title,
		Description:    i.Description,
		Kind:           i.Kind.String(),
		DueDate:        i.DueDate,
		ExpiresAt:      i.ExpiresAt,
		Priority:       i.Priority.String(),
		Category:       i.Category,
		Completed:      i.Completed,
		CompletedAt:    i.CompletedAt,
		ArchivedAt:     i.ArchivedAt,
		ArchivedReason: reason,
		DumpID:         i.DumpID,
		PersonIDs:      people,
		CreatedAt:      i.CreatedAt,
	}
}

func toItemResponses(items []*domain.ActionableItem) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, toItemResponse(i))
	}
	return out
}

type proposedPersonResponse struct {
	Name         string     `json:"name"`
	Relationship string     `json:"relationship,omitempty"`
	Category     string     `json:"category,omitempty"`
	Grade        string     `json:"grade,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	PersonID     *uuid.UUID `json:"personId,omitempty"`
	IsNew        bool       `json:"isNew"`
}

type proposedItemResponse struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Kind        string     `json:"kind,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	Category    string     `json:"category,omitempty"`
}

type proposalResponse struct {
	Title         string                   `json:"title"`
	StartTime     *time.Time               `json:"startTime,omitempty"`
	EndTime       *time.Time               `json:"endTime,omitempty"`
	Location      string                   `json:"location,omitempty"`
	Category      string                   `json:"category,omitempty"`
	People        []proposedPersonResponse `json:"people"`
	Items         []proposedItemResponse   `json:"actionableItems"`
	MissingInfo   []string                 `json:"missingInfo"`
	Transcription string                   `json:"transcription,omitempty"`
}

type inboxEntryResponse struct {
	ID         uuid.UUID        `json:"id"`
	DumpID     uuid.UUID        `json:"dumpId"`
	Proposal   proposalResponse `json:"proposal"`
	Confidence float64          `json:"confidenceScore"`
	FlagReason *string          `json:"flagReason,omitempty"`
	Status     string           `json:"status"`
	CreatedAt  time.Time        `json:"createdAt"`
	ResolvedAt *time.Time       `json:"resolvedAt,omitempty"`
}

func toInboxEntryResponse(e *domain.InboxEntry) inboxEntryResponse {
	p := e.Data.Proposal
	out := proposalResponse{
		Title:         p.Title,
		StartTime:     p.StartTime,
		EndTime:       p.EndTime,
		Location:      p.Location,
		Category:      p.Category,
		People:        make([]proposedPersonResponse, 0, len(p.People)),
		Items:         make([]proposedItemResponse, 0, len(p.Items)),
		MissingInfo:   p.MissingInfo,
		Transcription: p.Transcription,
	}
	if out.MissingInfo == nil {
		out.MissingInfo = []string{}
	}
	for _, pp := range p.People {
		out.People = append(out.People, proposedPersonResponse{
			Name:         pp.Name,
			Relationship: pp.Relationship,
			Category:     pp.Category,
			Grade:        pp.Grade,
			Notes:        pp.Notes,
			PersonID:     pp.PersonID,
			IsNew:        pp.IsNew,
		})
	}
	for _, pi := range p.Items {
		out.Items = append(out.Items, proposedItemResponse{
			Title:       pi.Title,
			Description: pi.Description,
			Kind:        pi.Kind.String(),
			DueDate:     pi.DueDate,
			Priority:    pi.Priority.String(),
			Category:    pi.Category,
		})
	}

	return inboxEntryResponse{
		ID:         e.ID,
		DumpID:     e.DumpID,
		Proposal:   out,
		Confidence: e.Confidence,
		FlagReason: e.FlagReason,
		Status:     e.Status.String(),
		CreatedAt:  e.CreatedAt,
		ResolvedAt: e.ResolvedAt,
	}
}

type dashboardResponse struct {
	ActiveTodos    int `json:"activeTodos"`
	ActiveInfos    int `json:"activeInfos"`
	DueToday       int `json:"dueToday"`
	Overdue        int `json:"overdue"`
	Archived       int `json:"archived"`
	PendingInbox   int `json:"pendingInbox"`
	NeedsInfoInbox int `json:"needsInfoInbox"`
}

type calendarAccountResponse struct {
	Provider   string    `json:"provider"`
	CalendarID string    `json:"calendarId"`
	LinkedAt   time.Time `json:"linkedAt"`
}

type listResponse[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
}
