package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/takumi/banter/internal/domain"
)

type ChannelRepo struct {
	pool *pgxpool.Pool
}

func NewChannelRepo(pool *pgxpool.Pool) *ChannelRepo {
	return &ChannelRepo{pool: pool}
}

func (r *ChannelRepo) Create(ctx context.Context, channel *domain.Channel, memberIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO channels (id, name, description, channel_type, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		channel.ID, channel.Name, channel.Description, channel.Type, channel.CreatedAt,
	)
	if err != nil {
		return err
	}

	for _, userID := range memberIDs {
		_, err = tx.Exec(ctx, `
			INSERT INTO channel_members (channel_id, user_id, joined_at)
			VALUES ($1, $2, $3)`,
			channel.ID, userID, channel.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("adding member %s: %w", userID, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *ChannelRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Channel, error) {
	query := `
		SELECT id, name, description, channel_type, created_at
		FROM channels
		WHERE id = $1`
	var ch domain.Channel
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&ch.ID, &ch.Name, &ch.Description, &ch.Type, &ch.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	members, err := r.listMembers(ctx, ch.ID)
	if err != nil {
		return nil, err
	}
	ch.Members = members
	return &ch, nil
}

func (r *ChannelRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Channel, error) {
	query := `
		SELECT c.id, c.name, c.description, c.channel_type, c.created_at
		FROM channels c
		JOIN channel_members cm ON cm.channel_id = c.id
		WHERE cm.user_id = $1
		ORDER BY c.created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []domain.Channel
	for rows.Next() {
		var ch domain.Channel
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.Description, &ch.Type, &ch.CreatedAt); err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range channels {
		members, err := r.listMembers(ctx, channels[i].ID)
		if err != nil {
			return nil, err
		}
		channels[i].Members = members
	}

	return channels, nil
}

func (r *ChannelRepo) GetDMByUsers(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.Channel, error) {
	query := `
		SELECT c.id, c.name, c.description, c.channel_type, c.created_at
		FROM channels c
		JOIN channel_members m1 ON m1.channel_id = c.id AND m1.user_id = $1
		JOIN channel_members m2 ON m2.channel_id = c.id AND m2.user_id = $2
		WHERE c.channel_type = 'DM'
		LIMIT 1`
	var ch domain.Channel
	err := r.pool.QueryRow(ctx, query, user1ID, user2ID).Scan(
		&ch.ID, &ch.Name, &ch.Description, &ch.Type, &ch.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	members, err := r.listMembers(ctx, ch.ID)
	if err != nil {
		return nil, err
	}
	ch.Members = members
	return &ch, nil
}

func (r *ChannelRepo) AddMember(ctx context.Context, member *domain.ChannelMember) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO channel_members (channel_id, user_id, joined_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (channel_id, user_id) DO NOTHING`,
		member.ChannelID, member.UserID, member.JoinedAt,
	)
	return err
}

func (r *ChannelRepo) listMembers(ctx context.Context, channelID uuid.UUID) ([]domain.MemberView, error) {
	query := `
		SELECT u.id, u.name
		FROM channel_members cm
		JOIN users u ON cm.user_id = u.id
		WHERE cm.channel_id = $1
		ORDER BY cm.joined_at ASC`

	rows, err := r.pool.Query(ctx, query, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.MemberView
	for rows.Next() {
		var m domain.MemberView
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
