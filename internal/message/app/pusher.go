package app

import (
	"direct_message_service/internal/message/domain"
	"direct_message_service/internal/message/repository"
	"direct_message_service/pkg/logger"

	"go.uber.org/zap"
)

// Pusher fans a push out to every local handle of a user and republishes it
// for handles held by other nodes. A user with no handles anywhere is the
// expected offline case, not an error.
type Pusher struct {
	registry *ConnectionRegistry
	pub      repository.PushPublisher
}

// NewPusher create Pusher
func NewPusher(registry *ConnectionRegistry, pub repository.PushPublisher) *Pusher {
	return &Pusher{registry: registry, pub: pub}
}

// Push delivers the event fire-and-forget and returns the number of local
// handles reached. A failed write only loses the live notification; the
// durable record is the backstop.
func (p *Pusher) Push(userID string, event domain.WSResponse) int {
	handles := p.registry.HandlesFor(userID)
	for _, h := range handles {
		if err := h.WriteEvent(event); err != nil {
			logger.Log.Warn("push write failed",
				zap.String("userID", userID),
				zap.String("action", event.Action),
				zap.Error(err),
			)
		}
	}

	if p.pub != nil {
		if err := p.pub.Publish(userID, event); err != nil {
			logger.Log.Warn("push publish failed",
				zap.String("userID", userID),
				zap.String("action", event.Action),
				zap.Error(err),
			)
		}
	}
	return len(handles)
}

// PushLocal delivers the event to local handles only. The pub/sub subscriber
// uses it to route events that arrived from other nodes.
func (p *Pusher) PushLocal(userID string, event domain.WSResponse) {
	for _, h := range p.registry.HandlesFor(userID) {
		if err := h.WriteEvent(event); err != nil {
			logger.Log.Warn("push write failed",
				zap.String("userID", userID),
				zap.String("action", event.Action),
				zap.Error(err),
			)
		}
	}
}
