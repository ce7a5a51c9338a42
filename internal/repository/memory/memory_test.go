package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/takumi/banter/internal/domain"
)

// Exercises user writes concurrently with the projections that read
// user names, so the race detector can catch unlocked map access.
func TestConcurrentProjection(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo()
	channels := NewChannelRepo(users)
	messages := NewMessageRepo(users)

	alice := uuid.New()
	if err := users.Create(ctx, &domain.User{ID: alice, Name: "alice", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("creating user: %v", err)
	}

	name := "general"
	ch := &domain.Channel{ID: uuid.New(), Name: &name, Type: domain.ChannelTypeChannel, CreatedAt: time.Now()}
	if err := channels.Create(ctx, ch, []uuid.UUID{alice}); err != nil {
		t.Fatalf("creating channel: %v", err)
	}
	msg := &domain.Message{ID: uuid.New(), ChannelID: ch.ID, SenderID: alice, Content: "hi", CreatedAt: time.Now()}
	if err := messages.Create(ctx, msg); err != nil {
		t.Fatalf("creating message: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				users.Create(ctx, &domain.User{ID: uuid.New(), Name: "extra", CreatedAt: time.Now()})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				channels.GetByID(ctx, ch.ID)
				messages.GetByID(ctx, msg.ID)
				messages.ListByChannel(ctx, ch.ID)
			}
		}()
	}
	wg.Wait()

	got, err := messages.GetByID(ctx, msg.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Sender.Name != "alice" {
		t.Errorf("sender projection = %q, want alice", got.Sender.Name)
	}
}
