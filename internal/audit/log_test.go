package audit

import (
	"context"
	"testing"
)

func TestLogEventRequiresName(t *testing.T) {
	if err := LogEvent(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for empty event name")
	}
	if err := LogEvent(context.Background(), "user.created", map[string]any{"user_id": 1}); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}
}

func TestContextCarriers(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-9")
	if got := requestIDFromContext(ctx); got != "req-9" {
		t.Fatalf("request id = %q", got)
	}
	ctx = WithActor(ctx, 42)
	actor, ok := actorFromContext(ctx)
	if !ok || actor != 42 {
		t.Fatalf("actor = %d, ok=%v", actor, ok)
	}
	// Zero actor and blank request id leave the context untouched.
	base := context.Background()
	if WithActor(base, 0) != base || WithRequestID(base, " ") != base {
		t.Fatal("no-op attachments should return the original context")
	}
}
