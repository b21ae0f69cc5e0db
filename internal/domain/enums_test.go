package domain

import "testing"

func TestDumpSource_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		source DumpSource
		want   bool
	}{
		{DumpSourceManual, true},
		{DumpSourceForwarded, true},
		{DumpSourceShare, true},
		{DumpSourcePhoto, true},
		{DumpSource("email"), false},
		{DumpSource(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.source), func(t *testing.T) {
			t.Parallel()
			if got := tt.source.IsValid(); got != tt.want {
				t.Errorf("DumpSource(%q).IsValid() = %v, want %v", tt.source, got, tt.want)
			}
		})
	}
}

func TestInboxStatus_IsOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status InboxStatus
		want   bool
	}{
		{InboxStatusPending, true},
		{InboxStatusNeedsInfo, true},
		{InboxStatusApproved, false},
		{InboxStatusDismissed, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()
			if got := tt.status.IsOpen(); got != tt.want {
				t.Errorf("InboxStatus(%q).IsOpen() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestItemKind_IsValid(t *testing.T) {
	t.Parallel()

	if !ItemKindTodo.IsValid() || !ItemKindInfo.IsValid() {
		t.Fatal("todo and info must be valid")
	}
	if ItemKind("note").IsValid() {
		t.Error("ItemKind(note) should be invalid")
	}
}

func TestPriority_IsValid(t *testing.T) {
	t.Parallel()

	for _, p := range []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent} {
		if !p.IsValid() {
			t.Errorf("Priority(%q) should be valid", p)
		}
	}
	if Priority("critical").IsValid() {
		t.Error("Priority(critical) should be invalid")
	}
}

func TestArchiveReason_String(t *testing.T) {
	t.Parallel()
	if got := ArchiveReasonOverdue.String(); got != "overdue_12h" {
		t.Errorf("got %q, want overdue_12h", got)
	}
	if !ArchiveReasonExpired.IsValid() {
		t.Error("expired should be a valid reason")
	}
}
