package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/takumi/banter/internal/domain"
)

// Implementations return (nil, nil) when a row is absent; services decide
// which absences are errors.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByAuthID(ctx context.Context, authID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type ChannelRepository interface {
	// Create persists the channel and its initial member set.
	Create(ctx context.Context, channel *domain.Channel, memberIDs []uuid.UUID) error
	// GetByID returns the channel with Members populated.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Channel, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Channel, error)
	// GetDMByUsers expects the pair in canonical order (user1 < user2).
	GetDMByUsers(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.Channel, error)
	AddMember(ctx context.Context, member *domain.ChannelMember) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	// ListByChannel returns messages ascending by created_at, ties broken
	// by id, for chronological display.
	ListByChannel(ctx context.Context, channelID uuid.UUID) ([]domain.Message, error)
	// ListBySender returns a user's messages newest first (history view).
	ListBySender(ctx context.Context, senderID uuid.UUID) ([]domain.Message, error)
	Update(ctx context.Context, msg *domain.Message) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type AIUsageRepository interface {
	Create(ctx context.Context, rec *domain.AIUsageRecord) error
	CountByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.AIUsageRecord, error)
}
