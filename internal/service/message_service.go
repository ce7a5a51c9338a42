package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/takumi/banter/internal/access"
	"github.com/takumi/banter/internal/domain"
	"github.com/takumi/banter/internal/repository"
)

// MaxContentLength is the upper bound on trimmed message content.
const MaxContentLength = 5000

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNotMessageOwner = errors.New("only the message sender can perform this action")
	ErrEmptyContent    = errors.New("message content must not be empty")
	ErrContentTooLong  = errors.New("message content exceeds the maximum length")
)

// Metrics records domain events for observability. Optional dependency.
type Metrics interface {
	MessageCreated()
	MessageEdited()
	MessageDeleted()
	AssistantCall()
	AssistantQuotaRejected()
}

type MessageService struct {
	messageRepo repository.MessageRepository
	channelRepo repository.ChannelRepository
	userRepo    repository.UserRepository
	metrics     Metrics
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	channelRepo repository.ChannelRepository,
	userRepo repository.UserRepository,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		channelRepo: channelRepo,
		userRepo:    userRepo,
	}
}

// SetMetrics sets the metrics recorder (optional dependency).
func (s *MessageService) SetMetrics(m Metrics) {
	s.metrics = m
}

type SendMessageInput struct {
	Content string `json:"content"`
}

type EditMessageInput struct {
	Content string `json:"content"`
}

// Create validates and persists a new message. The returned message
// carries the sender projected to {id, name}.
func (s *MessageService) Create(ctx context.Context, channelID, senderID uuid.UUID, input SendMessageInput) (*domain.Message, error) {
	content, err := normalizeContent(input.Content)
	if err != nil {
		return nil, err
	}

	ch, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	if !access.CanReadChannel(senderID, ch) {
		return nil, ErrNotChannelMember
	}

	msg := &domain.Message{
		ID:        uuid.New(),
		ChannelID: channelID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now(),
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	// Refetch for the sender projection
	full, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.MessageCreated()
	}

	return full, nil
}

// ListByChannel returns a channel's messages in chronological order.
func (s *MessageService) ListByChannel(ctx context.Context, userID, channelID uuid.UUID) ([]domain.Message, error) {
	ch, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	if !access.CanReadChannel(userID, ch) {
		return nil, ErrNotChannelMember
	}

	messages, err := s.messageRepo.ListByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// ListBySender returns the user's own messages, newest first.
func (s *MessageService) ListBySender(ctx context.Context, senderID uuid.UUID) ([]domain.Message, error) {
	messages, err := s.messageRepo.ListBySender(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// Edit replaces a message's content and stamps updated_at. created_at is
// never altered.
func (s *MessageService) Edit(ctx context.Context, messageID, actorID uuid.UUID, input EditMessageInput) (*domain.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, ErrUserNotFound
	}

	if !access.CanMutateMessage(actorID, msg) {
		return nil, ErrNotMessageOwner
	}

	content, err := normalizeContent(input.Content)
	if err != nil {
		return nil, err
	}

	msg.Content = content
	if err := s.messageRepo.Update(ctx, msg); err != nil {
		return nil, fmt.Errorf("updating message: %w", err)
	}

	updated, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.MessageEdited()
	}

	return updated, nil
}

// Delete removes a message permanently and returns the deleted id. No
// tombstone is kept.
func (s *MessageService) Delete(ctx context.Context, messageID, actorID uuid.UUID) (uuid.UUID, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return uuid.Nil, err
	}
	if msg == nil {
		return uuid.Nil, ErrMessageNotFound
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return uuid.Nil, err
	}
	if actor == nil {
		return uuid.Nil, ErrUserNotFound
	}

	if !access.CanMutateMessage(actorID, msg) {
		return uuid.Nil, ErrNotMessageOwner
	}

	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		return uuid.Nil, err
	}

	if s.metrics != nil {
		s.metrics.MessageDeleted()
	}

	return messageID, nil
}

// normalizeContent trims and bounds-checks message content.
func normalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", ErrContentTooLong
	}
	return content, nil
}
