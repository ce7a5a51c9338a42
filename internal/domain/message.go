package domain

import (
	"time"

	"github.com/google/uuid"
)

// editedSlack is the window inside which an updated_at close to created_at
// is still treated as "never edited". Some stores touch both columns on the
// insert that creates the row, so a strict inequality would flag fresh
// messages as edited.
const editedSlack = time.Second

type Message struct {
	ID        uuid.UUID  `json:"id"`
	ChannelID uuid.UUID  `json:"channel_id"`
	SenderID  uuid.UUID  `json:"sender_id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	// Joined fields
	Sender MemberView `json:"sender"`
}

// Edited reports whether the message has been edited after creation.
// Derived, never stored: true iff updated_at is more than one second
// after created_at.
func (m *Message) Edited() bool {
	if m.UpdatedAt == nil {
		return false
	}
	return m.UpdatedAt.Sub(m.CreatedAt) > editedSlack
}
