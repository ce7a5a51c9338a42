package client

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/takumi/banter/internal/domain"
)

// Store caches one channel's messages and keeps them reconciled with
// the server by full refetch. Mutations go to the server first and the
// cache only holds server-confirmed entities, so it never diverges
// from server identity.
//
// The store is not safe for concurrent use from multiple goroutines;
// it models a single UI event loop.
type Store struct {
	api *API

	ChannelID uuid.UUID
	Messages  []domain.Message
	IsLoading bool
	Err       error

	// generation discards fetch responses that arrive after a newer
	// fetch (or a channel switch) has started.
	generation uint64

	// reactions is a session-local overlay keyed by message id. It is
	// never sent to the server and resets on every refetch.
	reactions map[uuid.UUID]map[string]bool
}

func NewStore(api *API) *Store {
	return &Store{
		api:       api,
		Messages:  []domain.Message{},
		reactions: map[uuid.UUID]map[string]bool{},
	}
}

// FetchMessages replaces the cache with the server's ordered list for
// channelID. On failure the previous cache is kept, Err is set, and
// the error is also returned so both UI state and the caller see it.
// A response belonging to a superseded fetch is discarded.
func (s *Store) FetchMessages(ctx context.Context, channelID uuid.UUID) error {
	gen := s.beginFetch(channelID)
	messages, err := s.api.ListMessages(ctx, channelID)
	return s.finishFetch(gen, messages, err)
}

// beginFetch marks a new fetch as the cache owner and returns its
// generation.
func (s *Store) beginFetch(channelID uuid.UUID) uint64 {
	s.generation++
	s.ChannelID = channelID
	s.IsLoading = true
	s.Err = nil
	return s.generation
}

// finishFetch applies a fetch result unless a newer fetch has started
// since, in which case the result is dropped.
func (s *Store) finishFetch(gen uint64, messages []domain.Message, err error) error {
	if gen != s.generation {
		return err
	}

	s.IsLoading = false
	if err != nil {
		s.Err = err
		return err
	}

	if messages == nil {
		messages = []domain.Message{}
	}
	s.Messages = messages
	s.reactions = map[uuid.UUID]map[string]bool{}
	return nil
}

// AddMessage sends the draft and appends the server-returned message,
// never the local draft. On failure the cache is untouched.
func (s *Store) AddMessage(ctx context.Context, channelID uuid.UUID, content string) (*domain.Message, error) {
	msg, err := s.api.SendMessage(ctx, channelID, content)
	if err != nil {
		s.Err = err
		return nil, err
	}

	if channelID == s.ChannelID {
		s.Messages = append(s.Messages, *msg)
	}
	return msg, nil
}

// UpdateMessage sends the edit and replaces the cached entry by id
// with the server-returned version. Callers typically follow up with
// FetchMessages to reconcile fully.
func (s *Store) UpdateMessage(ctx context.Context, messageID uuid.UUID, content string) (*domain.Message, error) {
	msg, err := s.api.EditMessage(ctx, messageID, content)
	if err != nil {
		s.Err = err
		return nil, err
	}

	for i := range s.Messages {
		if s.Messages[i].ID == messageID {
			s.Messages[i] = *msg
			break
		}
	}
	return msg, nil
}

// DeleteMessage removes the message server-side and drops it from the
// cache along with any reaction overlay.
func (s *Store) DeleteMessage(ctx context.Context, messageID uuid.UUID) error {
	if err := s.api.DeleteMessage(ctx, messageID); err != nil {
		s.Err = err
		return err
	}

	for i := range s.Messages {
		if s.Messages[i].ID == messageID {
			s.Messages = append(s.Messages[:i], s.Messages[i+1:]...)
			break
		}
	}
	delete(s.reactions, messageID)
	return nil
}

// ToggleReaction flips a session-local reaction on a message. Nothing
// is sent to the server and the overlay resets on the next refetch.
func (s *Store) ToggleReaction(messageID uuid.UUID, emoji string) {
	set, ok := s.reactions[messageID]
	if !ok {
		set = map[string]bool{}
		s.reactions[messageID] = set
	}
	if set[emoji] {
		delete(set, emoji)
		if len(set) == 0 {
			delete(s.reactions, messageID)
		}
		return
	}
	set[emoji] = true
}

// ReactionView is the render-time projection of the overlay. Count is
// always 1 while reactions stay session-local; the shape leaves room
// for shared reactions without changing callers.
type ReactionView struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// Reactions returns the session-local reactions on a message, sorted
// by emoji.
func (s *Store) Reactions(messageID uuid.UUID) []ReactionView {
	set := s.reactions[messageID]
	out := make([]ReactionView, 0, len(set))
	for emoji := range set {
		out = append(out, ReactionView{Emoji: emoji, Count: 1})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Emoji < out[j].Emoji })
	return out
}

// Filter returns cached messages whose content contains term,
// case-insensitive. An empty term returns the whole cache. The cache
// itself is never mutated.
func (s *Store) Filter(term string) []domain.Message {
	if term == "" {
		return s.Messages
	}

	term = strings.ToLower(term)
	out := []domain.Message{}
	for _, msg := range s.Messages {
		if strings.Contains(strings.ToLower(msg.Content), term) {
			out = append(out, msg)
		}
	}
	return out
}
