// Package memory provides in-memory repository implementations. They back
// the test suite and keep the same absence and ordering semantics as the
// postgres implementations.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/takumi/banter/internal/domain"
)

type UserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]domain.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[uuid.UUID]domain.User)}
}

func (r *UserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *UserRepo) GetByAuthID(_ context.Context, authID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.AuthID == authID {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

type ChannelRepo struct {
	mu       sync.RWMutex
	channels map[uuid.UUID]domain.Channel
	members  map[uuid.UUID][]domain.ChannelMember
	users    *UserRepo
}

// NewChannelRepo shares the user repo so member projections carry names.
func NewChannelRepo(users *UserRepo) *ChannelRepo {
	return &ChannelRepo{
		channels: make(map[uuid.UUID]domain.Channel),
		members:  make(map[uuid.UUID][]domain.ChannelMember),
		users:    users,
	}
}

func (r *ChannelRepo) Create(_ context.Context, channel *domain.Channel, memberIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := *channel
	ch.Members = nil
	r.channels[ch.ID] = ch
	for _, userID := range memberIDs {
		r.members[ch.ID] = append(r.members[ch.ID], domain.ChannelMember{
			ChannelID: ch.ID,
			UserID:    userID,
			JoinedAt:  ch.CreatedAt,
		})
	}
	return nil
}

func (r *ChannelRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[id]
	if !ok {
		return nil, nil
	}
	ch.Members = r.memberViews(id)
	return &ch, nil
}

func (r *ChannelRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var channels []domain.Channel
	for id, ch := range r.channels {
		for _, m := range r.members[id] {
			if m.UserID == userID {
				ch.Members = r.memberViews(id)
				channels = append(channels, ch)
				break
			}
		}
	}
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].CreatedAt.Before(channels[j].CreatedAt)
	})
	return channels, nil
}

func (r *ChannelRepo) GetDMByUsers(_ context.Context, user1ID, user2ID uuid.UUID) (*domain.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, ch := range r.channels {
		if ch.Type != domain.ChannelTypeDM {
			continue
		}
		var has1, has2 bool
		for _, m := range r.members[id] {
			if m.UserID == user1ID {
				has1 = true
			}
			if m.UserID == user2ID {
				has2 = true
			}
		}
		if has1 && has2 {
			ch.Members = r.memberViews(id)
			return &ch, nil
		}
	}
	return nil, nil
}

func (r *ChannelRepo) AddMember(_ context.Context, member *domain.ChannelMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members[member.ChannelID] {
		if m.UserID == member.UserID {
			return nil
		}
	}
	r.members[member.ChannelID] = append(r.members[member.ChannelID], *member)
	return nil
}

func (r *ChannelRepo) memberViews(channelID uuid.UUID) []domain.MemberView {
	r.users.mu.RLock()
	defer r.users.mu.RUnlock()
	var views []domain.MemberView
	for _, m := range r.members[channelID] {
		view := domain.MemberView{ID: m.UserID}
		if u, ok := r.users.users[m.UserID]; ok {
			view.Name = u.Name
		}
		views = append(views, view)
	}
	return views
}

type MessageRepo struct {
	mu       sync.RWMutex
	messages map[uuid.UUID]domain.Message
	users    *UserRepo
}

func NewMessageRepo(users *UserRepo) *MessageRepo {
	return &MessageRepo{messages: make(map[uuid.UUID]domain.Message), users: users}
}

func (r *MessageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[msg.ID] = *msg
	return nil
}

func (r *MessageRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	msg, ok := r.messages[id]
	if !ok {
		return nil, nil
	}
	r.project(&msg)
	return &msg, nil
}

func (r *MessageRepo) ListByChannel(_ context.Context, channelID uuid.UUID) ([]domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var messages []domain.Message
	for _, msg := range r.messages {
		if msg.ChannelID == channelID {
			r.project(&msg)
			messages = append(messages, msg)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].CreatedAt.Before(messages[j].CreatedAt)
		}
		return messages[i].ID.String() < messages[j].ID.String()
	})
	return messages, nil
}

func (r *MessageRepo) ListBySender(_ context.Context, senderID uuid.UUID) ([]domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var messages []domain.Message
	for _, msg := range r.messages {
		if msg.SenderID == senderID {
			r.project(&msg)
			messages = append(messages, msg)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].CreatedAt.After(messages[j].CreatedAt)
		}
		return messages[i].ID.String() > messages[j].ID.String()
	})
	return messages, nil
}

func (r *MessageRepo) Update(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.messages[msg.ID]
	if !ok {
		return nil
	}
	stored.Content = msg.Content
	now := time.Now()
	stored.UpdatedAt = &now
	r.messages[msg.ID] = stored
	return nil
}

func (r *MessageRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.messages, id)
	return nil
}

func (r *MessageRepo) project(msg *domain.Message) {
	r.users.mu.RLock()
	defer r.users.mu.RUnlock()
	msg.Sender = domain.MemberView{ID: msg.SenderID}
	if u, ok := r.users.users[msg.SenderID]; ok {
		msg.Sender.Name = u.Name
	}
}

type AIUsageRepo struct {
	mu      sync.RWMutex
	records []domain.AIUsageRecord
}

func NewAIUsageRepo() *AIUsageRepo {
	return &AIUsageRepo{}
}

func (r *AIUsageRepo) Create(_ context.Context, rec *domain.AIUsageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *rec)
	return nil
}

func (r *AIUsageRepo) CountByUserSince(_ context.Context, userID uuid.UUID, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, rec := range r.records {
		if rec.UserID == userID && !rec.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *AIUsageRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.AIUsageRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var records []domain.AIUsageRecord
	for _, rec := range r.records {
		if rec.UserID == userID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}
