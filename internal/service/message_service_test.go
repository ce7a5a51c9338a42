package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/takumi/banter/internal/domain"
	"github.com/takumi/banter/internal/repository/memory"
)

type fixture struct {
	users    *memory.UserRepo
	channels *memory.ChannelRepo
	messages *memory.MessageRepo
	msgSvc   *MessageService
	chSvc    *ChannelService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := memory.NewUserRepo()
	channels := memory.NewChannelRepo(users)
	messages := memory.NewMessageRepo(users)
	return &fixture{
		users:    users,
		channels: channels,
		messages: messages,
		msgSvc:   NewMessageService(messages, channels, users),
		chSvc:    NewChannelService(channels, users),
	}
}

func (f *fixture) addUser(t *testing.T, name string) uuid.UUID {
	t.Helper()
	u := &domain.User{
		ID:     uuid.New(),
		AuthID: "auth-" + name,
		Name:   name,
		Email:  name + "@example.com",
	}
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatalf("creating user %s: %v", name, err)
	}
	return u.ID
}

func (f *fixture) addChannel(t *testing.T, memberIDs ...uuid.UUID) uuid.UUID {
	t.Helper()
	name := "general"
	ch := &domain.Channel{
		ID:        uuid.New(),
		Name:      &name,
		Type:      domain.ChannelTypeChannel,
		CreatedAt: time.Now(),
	}
	if err := f.channels.Create(context.Background(), ch, memberIDs); err != nil {
		t.Fatalf("creating channel: %v", err)
	}
	return ch.ID
}

func TestMessageCreateValidation(t *testing.T) {
	f := newFixture(t)
	u1 := f.addUser(t, "alice")
	ch := f.addChannel(t, u1)
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"empty", "", ErrEmptyContent},
		{"whitespace only", "   \n\t  ", ErrEmptyContent},
		{"over limit", strings.Repeat("a", MaxContentLength+1), ErrContentTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.msgSvc.Create(ctx, ch, u1, SendMessageInput{Content: tt.content})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create(%q) error = %v, want %v", tt.name, err, tt.wantErr)
			}
		})
	}

	// Failed creates must not mutate the store.
	msgs, err := f.msgSvc.ListByChannel(ctx, u1, ch)
	if err != nil {
		t.Fatalf("ListByChannel: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("store contains %d messages after failed creates, want 0", len(msgs))
	}

	// Exactly at the limit is fine.
	if _, err := f.msgSvc.Create(ctx, ch, u1, SendMessageInput{Content: strings.Repeat("a", MaxContentLength)}); err != nil {
		t.Errorf("Create at max length: %v", err)
	}
}

func TestMessageCreateAuthorization(t *testing.T) {
	f := newFixture(t)
	u1 := f.addUser(t, "alice")
	outsider := f.addUser(t, "mallory")
	ch := f.addChannel(t, u1)
	ctx := context.Background()

	if _, err := f.msgSvc.Create(ctx, uuid.New(), u1, SendMessageInput{Content: "hi"}); !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("create in missing channel: got %v, want ErrChannelNotFound", err)
	}
	if _, err := f.msgSvc.Create(ctx, ch, outsider, SendMessageInput{Content: "hi"}); !errors.Is(err, ErrNotChannelMember) {
		t.Errorf("create by non-member: got %v, want ErrNotChannelMember", err)
	}
}

func TestMessageCreateProjectsSender(t *testing.T) {
	f := newFixture(t)
	u1 := f.addUser(t, "alice")
	ch := f.addChannel(t, u1)
	ctx := context.Background()

	msg, err := f.msgSvc.Create(ctx, ch, u1, SendMessageInput{Content: "  hello  "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if msg.Content != "hello" {
		t.Errorf("content = %q, want trimmed %q", msg.Content, "hello")
	}
	if msg.Sender.ID != u1 || msg.Sender.Name != "alice" {
		t.Errorf("sender projection = %+v, want {%s alice}", msg.Sender, u1)
	}
	if msg.UpdatedAt != nil {
		t.Error("updated_at must be unset on creation")
	}

	// Round-trip: the new message is the last entry of the channel listing.
	msgs, err := f.msgSvc.ListByChannel(ctx, u1, ch)
	if err != nil {
		t.Fatalf("ListByChannel: %v", err)
	}
	last := msgs[len(msgs)-1]
	if last.ID != msg.ID || last.Content != "hello" || last.Sender != msg.Sender {
		t.Errorf("round-trip mismatch: got %+v, want %+v", last, msg)
	}
}

func TestMessageLifecycle(t *testing.T) {
	f := newFixture(t)
	u1 := f.addUser(t, "alice")
	u2 := f.addUser(t, "bob")
	ch := f.addChannel(t, u1, u2)
	ctx := context.Background()

	msg, err := f.msgSvc.Create(ctx, ch, u1, SendMessageInput{Content: "hello"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Another member may not edit.
	if _, err := f.msgSvc.Edit(ctx, msg.ID, u2, EditMessageInput{Content: "x"}); !errors.Is(err, ErrNotMessageOwner) {
		t.Errorf("edit by non-owner: got %v, want ErrNotMessageOwner", err)
	}

	// Another member may not delete either.
	if _, err := f.msgSvc.Delete(ctx, msg.ID, u2); !errors.Is(err, ErrNotMessageOwner) {
		t.Errorf("delete by non-owner: got %v, want ErrNotMessageOwner", err)
	}

	// Owner edits: content replaced, created_at untouched.
	edited, err := f.msgSvc.Edit(ctx, msg.ID, u1, EditMessageInput{Content: " updated "})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if edited.Content != "updated" {
		t.Errorf("edited content = %q, want %q", edited.Content, "updated")
	}
	if !edited.CreatedAt.Equal(msg.CreatedAt) {
		t.Error("edit must not alter created_at")
	}
	if edited.UpdatedAt == nil {
		t.Error("edit must set updated_at")
	}

	// Owner deletes; listing no longer contains it.
	deletedID, err := f.msgSvc.Delete(ctx, msg.ID, u1)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deletedID != msg.ID {
		t.Errorf("deleted id = %s, want %s", deletedID, msg.ID)
	}

	msgs, err := f.msgSvc.ListByChannel(ctx, u1, ch)
	if err != nil {
		t.Fatalf("ListByChannel: %v", err)
	}
	for _, m := range msgs {
		if m.ID == msg.ID {
			t.Error("deleted message still present in channel listing")
		}
	}

	// Deleted is terminal.
	if _, err := f.msgSvc.Edit(ctx, msg.ID, u1, EditMessageInput{Content: "zombie"}); !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("edit after delete: got %v, want ErrMessageNotFound", err)
	}
}

func TestMessageEditMissingActor(t *testing.T) {
	f := newFixture(t)
	u1 := f.addUser(t, "alice")
	ch := f.addChannel(t, u1)
	ctx := context.Background()

	msg, err := f.msgSvc.Create(ctx, ch, u1, SendMessageInput{Content: "hello"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := f.msgSvc.Edit(ctx, msg.ID, uuid.New(), EditMessageInput{Content: "x"}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("edit by unknown actor: got %v, want ErrUserNotFound", err)
	}
	if _, err := f.msgSvc.Edit(ctx, uuid.New(), u1, EditMessageInput{Content: "x"}); !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("edit of unknown message: got %v, want ErrMessageNotFound", err)
	}
}

func TestMessageOrdering(t *testing.T) {
	f := newFixture(t)
	u1 := f.addUser(t, "alice")
	ch := f.addChannel(t, u1)
	ctx := context.Background()

	base := time.Now()
	// Insert out of order, with a created_at tie between b and c.
	ids := map[string]uuid.UUID{}
	for _, m := range []struct {
		key string
		at  time.Time
	}{
		{"c", base.Add(time.Minute)},
		{"a", base},
		{"b", base.Add(time.Minute)},
	} {
		id := uuid.New()
		ids[m.key] = id
		err := f.messages.Create(ctx, &domain.Message{
			ID: id, ChannelID: ch, SenderID: u1, Content: m.key, CreatedAt: m.at,
		})
		if err != nil {
			t.Fatalf("seeding message %s: %v", m.key, err)
		}
	}

	msgs, err := f.msgSvc.ListByChannel(ctx, u1, ch)
	if err != nil {
		t.Fatalf("ListByChannel: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[0].Content != "a" {
		t.Errorf("first message = %q, want oldest (a)", msgs[0].Content)
	}
	// Tie broken by id ascending.
	if msgs[1].ID.String() > msgs[2].ID.String() {
		t.Error("created_at tie not broken by id ascending")
	}

	// Per-sender history is newest first.
	history, err := f.msgSvc.ListBySender(ctx, u1)
	if err != nil {
		t.Fatalf("ListBySender: %v", err)
	}
	if history[len(history)-1].Content != "a" {
		t.Errorf("sender history should end with oldest, got %q", history[len(history)-1].Content)
	}
}
