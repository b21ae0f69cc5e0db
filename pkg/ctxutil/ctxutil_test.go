package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestWithUserID_And_UserIDFromCtx(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	ctx := WithUserID(context.Background(), id)

	got, ok := UserIDFromCtx(ctx)
	if !ok {
		t.Fatal("expected ok=true for valid UUID")
	}
	if got != id {
		t.Fatalf("expected %s, got %s", id, got)
	}
}

func TestUserIDFromCtx_EmptyContext(t *testing.T) {
	t.Parallel()

	got, ok := UserIDFromCtx(context.Background())
	if ok {
		t.Fatal("expected ok=false for empty context")
	}
	if got != uuid.Nil {
		t.Fatalf("expected uuid.Nil, got %s", got)
	}
}

func TestUserIDFromCtx_NilUUID(t *testing.T) {
	t.Parallel()

	ctx := WithUserID(context.Background(), uuid.Nil)

	got, ok := UserIDFromCtx(ctx)
	if ok {
		t.Fatal("expected ok=false for uuid.Nil")
	}
	if got != uuid.Nil {
		t.Fatalf("expected uuid.Nil, got %s", got)
	}
}

func TestUserIDFromCtx_WrongType(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), ctxKey("user_id"), "not-a-uuid")

	got, ok := UserIDFromCtx(ctx)
	if ok {
		t.Fatal("expected ok=false for wrong type")
	}
	if got != uuid.Nil {
		t.Fatalf("expected uuid.Nil, got %s", got)
	}
}

func TestWithRequestID_And_RequestIDFromCtx(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.Background(), "req-123")

	got := RequestIDFromCtx(ctx)
	if got != "req-123" {
		t.Fatalf("expected req-123, got %s", got)
	}
}

func TestRequestIDFromCtx_EmptyContext(t *testing.T) {
	t.Parallel()

	got := RequestIDFromCtx(context.Background())
	if got != "" {
		t.Fatalf("expected empty string, got %s", got)
	}
}

func TestRequestIDFromCtx_WrongType(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), ctxKey("request_id"), 12345)

	got := RequestIDFromCtx(ctx)
	if got != "" {
		t.Fatalf("expected empty string, got %s", got)
	}
}

func TestDetach_KeepsIDsDropsCancellation(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	parent, cancel := context.WithCancel(WithRequestID(WithUserID(context.Background(), id), "req-9"))
	parent = context.WithValue(parent, ctxKey("other"), "x")
	cancel()

	got := Detach(parent)

	if got.Err() != nil {
		t.Fatalf("detached context must not be canceled, got %v", got.Err())
	}
	if uid, ok := UserIDFromCtx(got); !ok || uid != id {
		t.Fatalf("expected user %s, got %s (ok=%v)", id, uid, ok)
	}
	if rid := RequestIDFromCtx(got); rid != "req-9" {
		t.Fatalf("expected req-9, got %q", rid)
	}
	if got.Value(ctxKey("other")) != nil {
		t.Fatal("unrelated values must not be carried over")
	}
}

func TestDetach_EmptyContext(t *testing.T) {
	t.Parallel()

	got := Detach(context.Background())
	if _, ok := UserIDFromCtx(got); ok {
		t.Fatal("expected no user id")
	}
}

func TestCarry_KeepsDestinationCancellation(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	src := WithRequestID(WithUserID(context.Background(), id), "req-1")
	dst, cancel := context.WithCancel(context.Background())

	got := Carry(dst, src)
	cancel()

	if got.Err() == nil {
		t.Fatal("expected destination cancellation to propagate")
	}
	if uid, ok := UserIDFromCtx(got); !ok || uid != id {
		t.Fatalf("expected user %s, got %s", id, uid)
	}
	if RequestIDFromCtx(got) != "req-1" {
		t.Fatalf("expected req-1, got %q", RequestIDFromCtx(got))
	}
}
