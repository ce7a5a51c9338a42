package access

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/takumi/banter/internal/domain"
)

func TestCanReadChannel(t *testing.T) {
	member, outsider := uuid.New(), uuid.New()
	ch := &domain.Channel{
		Type:    domain.ChannelTypeChannel,
		Members: []domain.MemberView{{ID: member, Name: "alice"}},
	}

	if !CanReadChannel(member, ch) {
		t.Error("member should be able to read the channel")
	}
	if CanReadChannel(outsider, ch) {
		t.Error("non-member should not be able to read the channel")
	}
}

func TestCanMutateMessage(t *testing.T) {
	sender, other := uuid.New(), uuid.New()
	msg := &domain.Message{SenderID: sender}

	if !CanMutateMessage(sender, msg) {
		t.Error("sender should be able to mutate own message")
	}
	if CanMutateMessage(other, msg) {
		t.Error("another channel member should not be able to mutate the message")
	}
}

func TestResolveDMPartner(t *testing.T) {
	me, partner := uuid.New(), uuid.New()

	t.Run("returns the other member", func(t *testing.T) {
		ch := &domain.Channel{
			Type: domain.ChannelTypeDM,
			Members: []domain.MemberView{
				{ID: me, Name: "me"},
				{ID: partner, Name: "them"},
			},
		}
		got, err := ResolveDMPartner(ch, me)
		if err != nil {
			t.Fatalf("ResolveDMPartner returned error: %v", err)
		}
		if got.ID != partner || got.Name != "them" {
			t.Errorf("got partner %+v, want id=%s name=them", got, partner)
		}
	})

	t.Run("rejects non-DM channel", func(t *testing.T) {
		ch := &domain.Channel{
			Type:    domain.ChannelTypeChannel,
			Members: []domain.MemberView{{ID: me}, {ID: partner}},
		}
		if _, err := ResolveDMPartner(ch, me); !errors.Is(err, ErrNotDirectMessage) {
			t.Errorf("got %v, want ErrNotDirectMessage", err)
		}
	})

	t.Run("reports missing partner", func(t *testing.T) {
		ch := &domain.Channel{
			Type:    domain.ChannelTypeDM,
			Members: []domain.MemberView{{ID: me, Name: "me"}},
		}
		if _, err := ResolveDMPartner(ch, me); !errors.Is(err, ErrNoPartner) {
			t.Errorf("got %v, want ErrNoPartner", err)
		}
	})
}
