package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/takumi/banter/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, channel_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query,
		msg.ID, msg.ChannelID, msg.SenderID, msg.Content, msg.CreatedAt,
	)
	return err
}

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT m.id, m.channel_id, m.sender_id, m.content, m.created_at, m.updated_at,
			u.id, u.name
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.id = $1`
	var msg domain.Message
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.ChannelID, &msg.SenderID, &msg.Content,
		&msg.CreatedAt, &msg.UpdatedAt,
		&msg.Sender.ID, &msg.Sender.Name,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &msg, err
}

func (r *MessageRepo) ListByChannel(ctx context.Context, channelID uuid.UUID) ([]domain.Message, error) {
	// Ascending for chronological display, id breaks created_at ties.
	query := `
		SELECT m.id, m.channel_id, m.sender_id, m.content, m.created_at, m.updated_at,
			u.id, u.name
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.channel_id = $1
		ORDER BY m.created_at ASC, m.id ASC`
	return r.listMessages(ctx, query, channelID)
}

func (r *MessageRepo) ListBySender(ctx context.Context, senderID uuid.UUID) ([]domain.Message, error) {
	// Newest first for the per-user history view.
	query := `
		SELECT m.id, m.channel_id, m.sender_id, m.content, m.created_at, m.updated_at,
			u.id, u.name
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.sender_id = $1
		ORDER BY m.created_at DESC, m.id DESC`
	return r.listMessages(ctx, query, senderID)
}

func (r *MessageRepo) Update(ctx context.Context, msg *domain.Message) error {
	// created_at is never touched by an edit.
	query := `UPDATE messages SET content = $1, updated_at = $2 WHERE id = $3`
	_, err := r.pool.Exec(ctx, query, msg.Content, time.Now(), msg.ID)
	return err
}

func (r *MessageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	return err
}

func (r *MessageRepo) listMessages(ctx context.Context, query string, arg any) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID, &msg.ChannelID, &msg.SenderID, &msg.Content,
			&msg.CreatedAt, &msg.UpdatedAt,
			&msg.Sender.ID, &msg.Sender.Name,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
