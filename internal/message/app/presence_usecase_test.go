package app

import (
	"testing"

	"direct_message_service/internal/message/domain"

	"github.com/stretchr/testify/assert"
)

func TestPresenceUseCase_TypingReachesEveryHandle(t *testing.T) {
	registry := NewConnectionRegistry()
	phone := &fakeHandle{}
	laptop := &fakeHandle{}
	registry.Register("bob", phone)
	registry.Register("bob", laptop)

	uc := NewPresenceUseCase(newTestPusher(registry))

	reached := uc.SetTyping("alice", "bob", true)
	assert.Equal(t, 2, reached)

	for _, h := range []*fakeHandle{phone, laptop} {
		events := h.received()
		assert.Len(t, events, 1)
		assert.Equal(t, string(domain.UserTyping), events[0].Action)
		assert.Equal(t, "alice", events[0].Payload["user_id"])
		assert.Equal(t, true, events[0].Payload["is_typing"])
	}
}

func TestPresenceUseCase_StoppedTypingOverwrites(t *testing.T) {
	registry := NewConnectionRegistry()
	handle := &fakeHandle{}
	registry.Register("bob", handle)

	uc := NewPresenceUseCase(newTestPusher(registry))
	uc.SetTyping("alice", "bob", true)
	uc.SetTyping("alice", "bob", false)

	events := handle.received()
	assert.Len(t, events, 2)
	assert.Equal(t, false, events[1].Payload["is_typing"])
}

func TestPresenceUseCase_OfflineReceiverDropsTyping(t *testing.T) {
	uc := NewPresenceUseCase(newTestPusher(NewConnectionRegistry()))

	reached := uc.SetTyping("alice", "bob", true)
	assert.Zero(t, reached)
}
