package app

import (
	"direct_message_service/internal/message/domain"
)

// PresenceUseCase relays ephemeral typing state. Nothing is persisted or
// queued: typing for an offline receiver is simply dropped, and the
// auto-clear timeout lives in the sender's client.
type PresenceUseCase struct {
	pusher *Pusher
}

// NewPresenceUseCase create PresenceUseCase
func NewPresenceUseCase(pusher *Pusher) *PresenceUseCase {
	return &PresenceUseCase{pusher: pusher}
}

// SetTyping pushes the latest typing boolean for the pair to every live
// handle of the receiver. Returns the number of local handles reached.
func (uc *PresenceUseCase) SetTyping(senderID, receiverID string, isTyping bool) int {
	event := domain.NewPush(domain.UserTyping, map[string]interface{}{
		"user_id":   senderID,
		"is_typing": isTyping,
	})
	return uc.pusher.Push(receiverID, event)
}
