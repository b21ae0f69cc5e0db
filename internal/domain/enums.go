package domain

// DumpSource identifies how a dump was captured.
type DumpSource string

const (
	DumpSourceManual    DumpSource = "manual"
	DumpSourceForwarded DumpSource = "forwarded"
	DumpSourceShare     DumpSource = "share"
	DumpSourcePhoto     DumpSource = "photo"
)

func (s DumpSource) String() string { return string(s) }

func (s DumpSource) IsValid() bool {
	switch s {
	case DumpSourceManual, DumpSourceForwarded, DumpSourceShare, DumpSourcePhoto:
		return true
	}
	return false
}

// InboxStatus is the review state of an inbox entry.
type InboxStatus string

const (
	InboxStatusPending   InboxStatus = "pending"
	InboxStatusNeedsInfo InboxStatus = "needs_info"
	InboxStatusApproved  InboxStatus = "approved"
	InboxStatusDismissed InboxStatus = "dismissed"
)

func (s InboxStatus) String() string { return string(s) }

func (s InboxStatus) IsValid() bool {
	switch s {
	case InboxStatusPending, InboxStatusNeedsInfo, InboxStatusApproved, InboxStatusDismissed:
		return true
	}
	return false
}

// IsOpen reports whether the entry still awaits a user decision.
func (s InboxStatus) IsOpen() bool {
	return s == InboxStatusPending || s == InboxStatusNeedsInfo
}

// ParseInboxStatus accepts the API spelling of a status. "rejected" is an
// alias of dismissed kept for older clients.
func ParseInboxStatus(s string) (InboxStatus, bool) {
	if s == "rejected" {
		return InboxStatusDismissed, true
	}
	st := InboxStatus(s)
	return st, st.IsValid()
}

// ItemKind distinguishes todos from informational items.
type ItemKind string

const (
	ItemKindTodo ItemKind = "todo"
	ItemKindInfo ItemKind = "info"
)

func (k ItemKind) String() string { return string(k) }

func (k ItemKind) IsValid() bool {
	switch k {
	case ItemKindTodo, ItemKindInfo:
		return true
	}
	return false
}

// Priority of an actionable item.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) String() string { return string(p) }

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ArchiveReason records why an actionable item left the active list.
type ArchiveReason string

const (
	ArchiveReasonOverdue       ArchiveReason = "overdue_12h"
	ArchiveReasonUserArchived  ArchiveReason = "user_archived"
	ArchiveReasonUserCompleted ArchiveReason = "user_completed"
	ArchiveReasonExpired       ArchiveReason = "expired"
)

func (r ArchiveReason) String() string { return string(r) }

func (r ArchiveReason) IsValid() bool {
	switch r {
	case ArchiveReasonOverdue, ArchiveReasonUserArchived, ArchiveReasonUserCompleted, ArchiveReasonExpired:
		return true
	}
	return false
}
