package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/takumi/banter/internal/repository/memory"
)

type stubResponder struct {
	reply string
	err   error
	calls int
}

func (r *stubResponder) Respond(_ context.Context, _ string) (string, error) {
	r.calls++
	return r.reply, r.err
}

func newAssistant(responder Responder) (*AssistantService, *memory.AIUsageRepo) {
	repo := memory.NewAIUsageRepo()
	return NewAssistantService(repo, responder), repo
}

func TestAssistantQuota(t *testing.T) {
	svc, _ := newAssistant(&stubResponder{reply: "ok"})
	userID := uuid.New()
	ctx := context.Background()

	for i := 0; i < DailyLimit; i++ {
		remaining, err := svc.Remaining(ctx, userID)
		if err != nil {
			t.Fatalf("Remaining: %v", err)
		}
		if remaining != DailyLimit-i {
			t.Errorf("before turn %d: remaining = %d, want %d", i+1, remaining, DailyLimit-i)
		}
		if _, err := svc.Chat(ctx, userID, "hello"); err != nil {
			t.Fatalf("Chat turn %d: %v", i+1, err)
		}
	}

	exceeded, err := svc.IsExceeded(ctx, userID)
	if err != nil {
		t.Fatalf("IsExceeded: %v", err)
	}
	if !exceeded {
		t.Errorf("after %d turns IsExceeded = false, want true", DailyLimit)
	}

	remaining, err := svc.Remaining(ctx, userID)
	if err != nil {
		t.Fatalf("Remaining: %v", err)
	}
	if remaining != 0 {
		t.Errorf("remaining = %d, want 0", remaining)
	}

	if _, err := svc.Chat(ctx, userID, "one more"); !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("chat over limit: got %v, want ErrQuotaExceeded", err)
	}
}

func TestAssistantRecordIsUnconditional(t *testing.T) {
	svc, _ := newAssistant(&stubResponder{reply: "ok"})
	userID := uuid.New()
	ctx := context.Background()

	// Recording past the limit still succeeds at the storage layer;
	// enforcement belongs to the caller.
	for i := 0; i < DailyLimit+1; i++ {
		if err := svc.RecordConversation(ctx, userID, "q", "a"); err != nil {
			t.Fatalf("RecordConversation %d: %v", i+1, err)
		}
	}

	count, err := svc.UsageCount(ctx, userID)
	if err != nil {
		t.Fatalf("UsageCount: %v", err)
	}
	if count != DailyLimit+1 {
		t.Errorf("usage count = %d, want %d", count, DailyLimit+1)
	}

	// Remaining never goes negative.
	remaining, err := svc.Remaining(ctx, userID)
	if err != nil {
		t.Fatalf("Remaining: %v", err)
	}
	if remaining != 0 {
		t.Errorf("remaining = %d, want 0", remaining)
	}
}

func TestAssistantQuotaWindowResets(t *testing.T) {
	svc, _ := newAssistant(&stubResponder{reply: "ok"})
	userID := uuid.New()
	ctx := context.Background()

	// Three conversations late yesterday.
	yesterday := time.Date(2026, 3, 1, 23, 50, 0, 0, time.Local)
	svc.now = func() time.Time { return yesterday }
	for i := 0; i < DailyLimit; i++ {
		if _, err := svc.Chat(ctx, userID, "hi"); err != nil {
			t.Fatalf("Chat: %v", err)
		}
	}

	// Just past midnight the window has reset.
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 0, 5, 0, 0, time.Local) }
	exceeded, err := svc.IsExceeded(ctx, userID)
	if err != nil {
		t.Fatalf("IsExceeded: %v", err)
	}
	if exceeded {
		t.Error("quota should reset at the start of the local day")
	}
}

func TestAssistantChatFailureNotRecorded(t *testing.T) {
	svc, _ := newAssistant(&stubResponder{err: errors.New("upstream down")})
	userID := uuid.New()
	ctx := context.Background()

	if _, err := svc.Chat(ctx, userID, "hi"); err == nil {
		t.Fatal("expected error from failing responder")
	}

	count, err := svc.UsageCount(ctx, userID)
	if err != nil {
		t.Fatalf("UsageCount: %v", err)
	}
	if count != 0 {
		t.Errorf("failed turn consumed quota: count = %d, want 0", count)
	}
}

func TestAssistantHistory(t *testing.T) {
	responder := &stubResponder{reply: "pong"}
	svc, _ := newAssistant(responder)
	userID := uuid.New()
	ctx := context.Background()

	if _, err := svc.Chat(ctx, userID, "ping"); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	history, err := svc.History(ctx, userID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	if history[0].Message != "ping" || history[0].Response != "pong" {
		t.Errorf("history entry = %+v, want ping/pong", history[0])
	}
	if responder.calls != 1 {
		t.Errorf("responder called %d times, want 1", responder.calls)
	}
}
