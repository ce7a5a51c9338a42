package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChannelTypeChannel = "CHANNEL"
	ChannelTypeDM      = "DM"
)

type Channel struct {
	ID          uuid.UUID `json:"id"`
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Type        string    `json:"channel_type"`
	CreatedAt   time.Time `json:"created_at"`
	// Joined fields
	Members []MemberView `json:"members,omitempty"`
}

func (c *Channel) IsDM() bool {
	return c.Type == ChannelTypeDM
}

// HasMember reports whether userID appears in the loaded member set.
func (c *Channel) HasMember(userID uuid.UUID) bool {
	for _, m := range c.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

type ChannelMember struct {
	ChannelID uuid.UUID `json:"channel_id"`
	UserID    uuid.UUID `json:"user_id"`
	JoinedAt  time.Time `json:"joined_at"`
}
