// Package triage decides whether an extracted proposal is committed
// straight to the calendar or held in the inbox for review.
package triage

import (
	"strings"

	"github.com/heartmarshall/mindump-backend/internal/domain"
)

// ConfidenceThreshold must be strictly exceeded for an automatic commit.
const ConfidenceThreshold = 0.9

// Flag reasons, in the order they are appended.
const (
	ReasonLowConfidence  = "low_confidence"
	ReasonConflict       = "conflict_detected"
	ReasonMissingContext = "missing_context"
	ReasonMissingFields  = "missing_fields"
)

// Signals are the inputs of a routing decision.
type Signals struct {
	Confidence       float64
	HasConflict      bool
	MissingStartDate bool
	MissingInfo      []string
}

// Decision is either Commit or Hold.
type Decision interface {
	isDecision()
}

// Commit means the proposal becomes an Event without review.
type Commit struct{}

// Hold means the proposal goes to the inbox with the given status.
type Hold struct {
	Status     domain.InboxStatus
	FlagReason *string
}

func (Commit) isDecision() {}
func (Hold) isDecision()   {}

// Decide applies the routing policy. It is pure and total.
func Decide(s Signals) Decision {
	if s.Confidence > ConfidenceThreshold && !s.HasConflict && !s.MissingStartDate {
		return Commit{}
	}

	var reasons []string
	if s.Confidence < ConfidenceThreshold {
		reasons = append(reasons, ReasonLowConfidence)
	}
	if s.HasConflict {
		reasons = append(reasons, ReasonConflict)
	}
	status := domain.InboxStatusPending
	if s.MissingStartDate {
		reasons = append(reasons, ReasonMissingContext)
		status = domain.InboxStatusNeedsInfo
	}
	if len(s.MissingInfo) > 0 {
		reasons = append(reasons, ReasonMissingFields)
	}

	h := Hold{Status: status}
	if len(reasons) > 0 {
		r := strings.Join(reasons, ", ")
		h.FlagReason = &r
	}
	return h
}

// SignalsFor derives routing signals from a proposal and the conflict result.
func SignalsFor(p *domain.Proposal, hasConflict bool) Signals {
	return Signals{
		Confidence:       p.Confidence,
		HasConflict:      hasConflict,
		MissingStartDate: p.StartTime == nil,
		MissingInfo:      p.MissingInfo,
	}
}
