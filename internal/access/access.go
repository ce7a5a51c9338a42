// Package access holds the pure authorization rules for channels and
// messages. Services call these before touching the store.
package access

import (
	"errors"

	"github.com/google/uuid"
	"github.com/takumi/banter/internal/domain"
)

var (
	// ErrNotDirectMessage and ErrNoPartner signal data-integrity
	// violations, not user mistakes. Callers log them loudly and map
	// them to an internal error.
	ErrNotDirectMessage = errors.New("channel is not a direct message")
	ErrNoPartner        = errors.New("direct message has no partner member")
)

// CanReadChannel reports whether the user may read the channel: true iff
// the user appears in the channel's member set.
func CanReadChannel(userID uuid.UUID, ch *domain.Channel) bool {
	return ch.HasMember(userID)
}

// CanMutateMessage reports whether the user may edit or delete the
// message. Only the sender qualifies; channel membership alone is not
// enough and is checked separately by the caller.
func CanMutateMessage(userID uuid.UUID, msg *domain.Message) bool {
	return msg.SenderID == userID
}

// ResolveDMPartner returns the member of a DM channel other than myUserID.
// The display name of a DM is derived from this partner at read time.
func ResolveDMPartner(ch *domain.Channel, myUserID uuid.UUID) (domain.MemberView, error) {
	if !ch.IsDM() {
		return domain.MemberView{}, ErrNotDirectMessage
	}
	for _, m := range ch.Members {
		if m.ID != myUserID {
			return m, nil
		}
	}
	return domain.MemberView{}, ErrNoPartner
}
