package app

import (
	"context"
	"strings"
	"time"

	"direct_message_service/internal/message/domain"
	"direct_message_service/internal/message/repository"
	"direct_message_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeliveryUseCase accepts a new-message request, persists it and fans it out
// to the sender's and receiver's live handles.
type DeliveryUseCase struct {
	msgRepo     repository.MessageRepository
	profileRepo repository.ProfileRepository
	pusher      *Pusher
	unread      *UnreadTracker
}

// NewDeliveryUseCase create DeliveryUseCase
func NewDeliveryUseCase(
	msgRepo repository.MessageRepository,
	profileRepo repository.ProfileRepository,
	pusher *Pusher,
	unread *UnreadTracker,
) *DeliveryUseCase {
	return &DeliveryUseCase{
		msgRepo:     msgRepo,
		profileRepo: profileRepo,
		pusher:      pusher,
		unread:      unread,
	}
}

// Send validates, persists and pushes one message. The push happens only
// after the store commits; an offline receiver gets the message on their next
// history fetch, no retry queue is needed.
func (uc *DeliveryUseCase) Send(ctx context.Context, senderID, receiverID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.Validationf("message content is empty")
	}
	if senderID == receiverID {
		return nil, domain.Validationf("sender and receiver are the same user")
	}

	msg := &domain.Message{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  time.Now().UTC(),
		Status:     domain.StatusSent,
		IsRead:     false,
	}
	if err := uc.msgRepo.Insert(ctx, msg); err != nil {
		return nil, domain.Storef("insert message", err)
	}

	// The message is persisted unread; the receiver's counter reflects it
	// until the conversation is opened.
	uc.unread.Increment(receiverID, senderID)

	msg.Sender = uc.resolveProfile(ctx, senderID)
	msg.Receiver = uc.resolveProfile(ctx, receiverID)

	event := domain.NewPush(domain.MessageReceived, map[string]interface{}{
		"message": msg,
	})
	delivered := uc.pusher.Push(receiverID, event)
	uc.pusher.Push(senderID, event)

	logger.Log.Info("message sent",
		zap.String("messageID", msg.ID),
		zap.String("senderID", senderID),
		zap.String("receiverID", receiverID),
		zap.Int("receiverHandles", delivered),
	)
	return msg, nil
}

// resolveProfile returns display attributes for the push payload. A failed or
// empty lookup degrades the payload, never the send: the record is already
// durable.
func (uc *DeliveryUseCase) resolveProfile(ctx context.Context, userID string) *domain.UserProfile {
	if uc.profileRepo == nil {
		return nil
	}
	profile, err := uc.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		logger.Log.Warn("profile lookup failed", zap.String("userID", userID), zap.Error(err))
		return nil
	}
	return profile
}
