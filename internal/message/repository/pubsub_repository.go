package repository

import (
	"context"
	"encoding/json"

	"direct_message_service/internal/message/domain"
	"direct_message_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const userChannelPattern = "dm:user:*"

// userChannel is the per-user push channel name.
func userChannel(userID string) string {
	return "dm:user:" + userID
}

// PushPublisher definition cross-node push publishing
type PushPublisher interface {
	Publish(userID string, event domain.WSResponse) error
}

// pushEnvelope wraps a push with its origin node so a node can skip events it
// already delivered locally.
type pushEnvelope struct {
	Origin string            `json:"origin"`
	UserID string            `json:"user_id"`
	Event  domain.WSResponse `json:"event"`
}

// RedisPubSub bridges pushes between nodes: every node publishes its pushes
// and routes subscribed events for users connected to it.
type RedisPubSub struct {
	client *redis.Client
	nodeID string
	ctx    context.Context
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client, nodeID string) *RedisPubSub {
	return &RedisPubSub{
		client: client,
		nodeID: nodeID,
		ctx:    context.Background(),
	}
}

// Publish serializes the event and publishes it on the receiver's channel.
func (r *RedisPubSub) Publish(userID string, event domain.WSResponse) error {
	data, err := json.Marshal(pushEnvelope{
		Origin: r.nodeID,
		UserID: userID,
		Event:  event,
	})
	if err != nil {
		return err
	}
	return r.client.Publish(r.ctx, userChannel(userID), data).Err()
}

// SubscribeAll listens on every user channel and invokes handler for events
// published by other nodes. Events originating from this node are dropped,
// the local registry already delivered them.
func (r *RedisPubSub) SubscribeAll(ctx context.Context, handler func(userID string, event domain.WSResponse)) {
	sub := r.client.PSubscribe(r.ctx, userChannelPattern)
	go func() {
		ch := sub.Channel()
		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}
				var env pushEnvelope
				if err := json.Unmarshal([]byte(m.Payload), &env); err != nil {
					logger.Log.Error("pubsub unmarshal", zap.String("channel", m.Channel), zap.Error(err))
					continue
				}
				if env.Origin == r.nodeID {
					continue
				}
				handler(env.UserID, env.Event)
			case <-ctx.Done():
				logger.Log.Info("pubsub subscriber closed", zap.String("node", r.nodeID))
				sub.Close()
				return
			}
		}
	}()
}
