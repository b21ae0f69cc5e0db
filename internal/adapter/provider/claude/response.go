package claude

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
)

// wireProposal mirrors the schema in the system prompt. Every field is
// optional at the JSON level; mandatory ones are checked in toProposal.
type wireProposal struct {
	Title         string       `json:"title"`
	StartTime     string       `json:"start_time"`
	EndTime       string       `json:"end_time"`
	Location      string       `json:"location"`
	Category      string       `json:"category"`
	Confidence    *flexFloat   `json:"confidence_score"`
	People        []wirePerson `json:"people"`
	Items         []wireItem   `json:"actionable_items"`
	MissingInfo   []string     `json:"missing_info"`
	Transcription string       `json:"transcription"`
}

type wirePerson struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Category     string `json:"category"`
	Grade        string `json:"grade"`
	Notes        string `json:"notes"`
	PersonID     string `json:"existing_person_id"`
}

type wireItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
}

// flexFloat accepts 0.8 as well as "0.8".
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return errors.New("confidence_score is null")
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("confidence_score: %w", err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("confidence_score: %s is not a number", b)
	}
	*f = flexFloat(v)
	return nil
}

var timeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime reads model-produced timestamps. Values without a zone are
// interpreted in loc. Unparseable values yield nil.
func parseTime(s string, loc *time.Location) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t
		}
	}
	return nil
}

// decodeProposal parses a raw model reply into a Proposal. known is the
// roster sent with the request; person ids outside it are discarded.
func decodeProposal(reply string, known []domain.KnownPerson, loc *time.Location) (*domain.Proposal, error) {
	raw := extractJSON(reply)
	if raw == "" {
		return nil, errors.New("no JSON object in model reply")
	}

	var w wireProposal
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return nil, fmt.Errorf("decode model reply: %w", err)
	}
	return w.toProposal(known, loc)
}

func (w *wireProposal) toProposal(known []domain.KnownPerson, loc *time.Location) (*domain.Proposal, error) {
	title := strings.TrimSpace(w.Title)
	if title == "" {
		return nil, errors.New("model reply missing title")
	}
	if w.Confidence == nil {
		return nil, errors.New("model reply missing confidence_score")
	}

	p := &domain.Proposal{
		Title:         title,
		StartTime:     parseTime(w.StartTime, loc),
		EndTime:       parseTime(w.EndTime, loc),
		Location:      strings.TrimSpace(w.Location),
		Category:      strings.TrimSpace(w.Category),
		Confidence:    clamp(float64(*w.Confidence)),
		Transcription: w.Transcription,
	}

	// An end before the start is treated as unknown.
	if p.StartTime != nil && p.EndTime != nil && p.EndTime.Before(*p.StartTime) {
		p.EndTime = nil
	}

	for _, f := range w.MissingInfo {
		if f = strings.TrimSpace(f); f != "" {
			p.MissingInfo = append(p.MissingInfo, f)
		}
	}

	roster := make(map[uuid.UUID]struct{}, len(known))
	for _, k := range known {
		roster[k.ID] = struct{}{}
	}
	for _, wp := range w.People {
		name := strings.TrimSpace(wp.Name)
		if name == "" {
			continue
		}
		pp := domain.ProposedPerson{
			Name:         name,
			Relationship: wp.Relationship,
			Category:     wp.Category,
			Grade:        wp.Grade,
			Notes:        wp.Notes,
			IsNew:        true,
		}
		if id, err := uuid.Parse(strings.TrimSpace(wp.PersonID)); err == nil {
			if _, ok := roster[id]; ok {
				pp.PersonID = &id
				pp.IsNew = false
			}
		}
		p.People = append(p.People, pp)
	}

	for _, wi := range w.Items {
		t := strings.TrimSpace(wi.Title)
		if t == "" {
			continue
		}
		item := domain.ProposedItem{
			Title:       t,
			Description: wi.Description,
			Kind:        domain.ItemKind(strings.ToLower(strings.TrimSpace(wi.Kind))),
			DueDate:     parseTime(wi.DueDate, loc),
			Priority:    domain.Priority(strings.ToLower(strings.TrimSpace(wi.Priority))),
			Category:    wi.Category,
		}
		if !item.Kind.IsValid() {
			item.Kind = domain.ItemKindTodo
		}
		if !item.Priority.IsValid() {
			item.Priority = domain.PriorityNormal
		}
		p.Items = append(p.Items, item)
	}

	return p, nil
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

var errUnsupportedMedia = errors.New("unsupported media")
