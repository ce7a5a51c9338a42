package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/takumi/banter/internal/domain"
)

type AIUsageRepo struct {
	pool *pgxpool.Pool
}

func NewAIUsageRepo(pool *pgxpool.Pool) *AIUsageRepo {
	return &AIUsageRepo{pool: pool}
}

func (r *AIUsageRepo) Create(ctx context.Context, rec *domain.AIUsageRecord) error {
	query := `
		INSERT INTO ai_usage (id, user_id, message, response, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.UserID, rec.Message, rec.Response, rec.CreatedAt,
	)
	return err
}

func (r *AIUsageRepo) CountByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM ai_usage WHERE user_id = $1 AND created_at >= $2`,
		userID, since,
	).Scan(&count)
	return count, err
}

func (r *AIUsageRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.AIUsageRecord, error) {
	query := `
		SELECT id, user_id, message, response, created_at
		FROM ai_usage
		WHERE user_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.AIUsageRecord
	for rows.Next() {
		var rec domain.AIUsageRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Message, &rec.Response, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
