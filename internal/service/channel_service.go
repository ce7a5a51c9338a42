package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/takumi/banter/internal/access"
	"github.com/takumi/banter/internal/domain"
	"github.com/takumi/banter/internal/repository"
)

var (
	ErrChannelNotFound  = errors.New("channel not found")
	ErrNotChannelMember = errors.New("user is not a member of this channel")
	ErrCannotDMSelf     = errors.New("cannot start a direct message with yourself")
	ErrCannotJoinDM     = errors.New("direct message channels have a fixed pair of members")
	ErrUserNotFound     = errors.New("user not found")
)

type ChannelService struct {
	channelRepo repository.ChannelRepository
	userRepo    repository.UserRepository
}

func NewChannelService(channelRepo repository.ChannelRepository, userRepo repository.UserRepository) *ChannelService {
	return &ChannelService{
		channelRepo: channelRepo,
		userRepo:    userRepo,
	}
}

type CreateChannelInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create creates a named channel with the creator as its first member.
func (s *ChannelService) Create(ctx context.Context, userID uuid.UUID, input CreateChannelInput) (*domain.Channel, error) {
	name := input.Name
	var desc *string
	if input.Description != "" {
		desc = &input.Description
	}

	ch := &domain.Channel{
		ID:          uuid.New(),
		Name:        &name,
		Description: desc,
		Type:        domain.ChannelTypeChannel,
		CreatedAt:   time.Now(),
	}

	if err := s.channelRepo.Create(ctx, ch, []uuid.UUID{userID}); err != nil {
		return nil, fmt.Errorf("creating channel: %w", err)
	}

	return s.channelRepo.GetByID(ctx, ch.ID)
}

// GetByID returns a channel the user belongs to, with the DM display name
// resolved.
func (s *ChannelService) GetByID(ctx context.Context, userID, channelID uuid.UUID) (*domain.Channel, error) {
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

	s.resolveDMName(ch, userID)
	return ch, nil
}

// ListForUser returns every channel the user is a member of. DM channels
// get their display name derived from the partner member.
func (s *ChannelService) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Channel, error) {
	channels, err := s.channelRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if channels == nil {
		channels = []domain.Channel{}
	}

	for i := range channels {
		s.resolveDMName(&channels[i], userID)
	}

	return channels, nil
}

// Join adds the user to a named channel. Channels have an open member
// set, so no invitation is required; joining twice is a no-op. DM
// channels are closed pairs and cannot be joined.
func (s *ChannelService) Join(ctx context.Context, userID, channelID uuid.UUID) (*domain.Channel, error) {
	ch, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	if ch.IsDM() {
		return nil, ErrCannotJoinDM
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if ch.HasMember(userID) {
		return ch, nil
	}

	err = s.channelRepo.AddMember(ctx, &domain.ChannelMember{
		ChannelID: channelID,
		UserID:    userID,
		JoinedAt:  time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("joining channel: %w", err)
	}

	return s.channelRepo.GetByID(ctx, channelID)
}

// CreateDirectMessage finds or creates the DM channel between the caller
// and otherUserID. Idempotent for a pair regardless of argument order.
func (s *ChannelService) CreateDirectMessage(ctx context.Context, userID, otherUserID uuid.UUID) (*domain.Channel, error) {
	if userID == otherUserID {
		return nil, ErrCannotDMSelf
	}

	other, err := s.userRepo.GetByID(ctx, otherUserID)
	if err != nil {
		return nil, err
	}
	if other == nil {
		return nil, ErrUserNotFound
	}

	// Canonical pair order so lookup and storage agree
	u1, u2 := userID, otherUserID
	if u1.String() > u2.String() {
		u1, u2 = u2, u1
	}

	existing, err := s.channelRepo.GetDMByUsers(ctx, u1, u2)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.resolveDMName(existing, userID)
		return existing, nil
	}

	ch := &domain.Channel{
		ID:        uuid.New(),
		Type:      domain.ChannelTypeDM,
		CreatedAt: time.Now(),
	}

	if err := s.channelRepo.Create(ctx, ch, []uuid.UUID{u1, u2}); err != nil {
		return nil, fmt.Errorf("creating dm channel: %w", err)
	}

	created, err := s.channelRepo.GetByID(ctx, ch.ID)
	if err != nil {
		return nil, err
	}
	s.resolveDMName(created, userID)
	return created, nil
}

// resolveDMName fills Name for DM channels from the partner member. A DM
// with no resolvable partner is a data-integrity violation and is logged,
// not surfaced to the user.
func (s *ChannelService) resolveDMName(ch *domain.Channel, userID uuid.UUID) {
	if !ch.IsDM() {
		return
	}
	partner, err := access.ResolveDMPartner(ch, userID)
	if err != nil {
		log.Printf("ERROR integrity: resolving dm partner for channel %s: %v", ch.ID, err)
		return
	}
	ch.Name = &partner.Name
}
