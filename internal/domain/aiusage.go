package domain

import (
	"time"

	"github.com/google/uuid"
)

// AIUsageRecord is one assistant conversation turn. Append-only: rows double
// as conversation history and as the basis of the daily quota count.
type AIUsageRecord struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}
