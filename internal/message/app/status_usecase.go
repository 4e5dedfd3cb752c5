package app

import (
	"context"
	"fmt"

	"direct_message_service/internal/message/domain"
	"direct_message_service/internal/message/repository"
	"direct_message_service/pkg/logger"

	"go.uber.org/zap"
)

// StatusUseCase applies and propagates message status transitions. Status
// only ever moves forward along sent -> delivered -> seen; an update that
// would regress is rejected before anything is persisted.
type StatusUseCase struct {
	msgRepo repository.MessageRepository
	pusher  *Pusher
	unread  *UnreadTracker
}

// NewStatusUseCase create StatusUseCase
func NewStatusUseCase(msgRepo repository.MessageRepository, pusher *Pusher, unread *UnreadTracker) *StatusUseCase {
	return &StatusUseCase{
		msgRepo: msgRepo,
		pusher:  pusher,
		unread:  unread,
	}
}

// UpdateStatus applies an explicit client-driven transition on one message
// and notifies the sender's live handles so their ticks update.
func (uc *StatusUseCase) UpdateStatus(ctx context.Context, messageID string, next domain.MessageStatus) (*domain.Message, error) {
	if !next.Valid() {
		return nil, domain.Validationf("unknown status %q", next)
	}

	msg, err := uc.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		return nil, domain.Storef("find message", err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: message %s", domain.ErrNotFound, messageID)
	}
	if !msg.Status.CanTransition(next) {
		return nil, domain.Validationf("status %q cannot move to %q", msg.Status, next)
	}

	read := msg.IsRead || next == domain.StatusSeen
	if err := uc.msgRepo.UpdateStatus(ctx, messageID, next, read); err != nil {
		return nil, domain.Storef("update status", err)
	}
	msg.Status = next
	msg.IsRead = read

	uc.pusher.Push(msg.SenderID, statusUpdatedEvent(messageID, next))
	return msg, nil
}

// MarkConversationRead flips every unread partner->owner message to seen in
// one atomic update, notifies the partner per flipped message and zeroes the
// owner's unread counter for the pair. Calling it again flips nothing and
// pushes nothing.
func (uc *StatusUseCase) MarkConversationRead(ctx context.Context, ownerID, partnerID string) (int64, error) {
	unread, err := uc.msgRepo.FindUnread(ctx, ownerID, partnerID)
	if err != nil {
		return 0, domain.Storef("find unread", err)
	}

	var modified int64
	if len(unread) > 0 {
		modified, err = uc.msgRepo.MarkConversationRead(ctx, ownerID, partnerID)
		if err != nil {
			return 0, domain.Storef("mark conversation read", err)
		}
		for _, msg := range unread {
			uc.pusher.Push(msg.SenderID, statusUpdatedEvent(msg.ID, domain.StatusSeen))
		}
	}

	uc.unread.Reset(ownerID, partnerID)
	logger.Log.Info("conversation marked read",
		zap.String("ownerID", ownerID),
		zap.String("partnerID", partnerID),
		zap.Int64("modified", modified),
	)
	return modified, nil
}

// MarkConversationDelivered promotes still-sent partner->owner messages to
// delivered. It runs as a side effect of the receiving side's history read;
// a sender re-reading their own history matches no documents. No pushes
// accompany this weaker transition.
func (uc *StatusUseCase) MarkConversationDelivered(ctx context.Context, ownerID, partnerID string) (int64, error) {
	modified, err := uc.msgRepo.MarkConversationDelivered(ctx, ownerID, partnerID)
	if err != nil {
		return 0, domain.Storef("mark conversation delivered", err)
	}
	return modified, nil
}

func statusUpdatedEvent(messageID string, status domain.MessageStatus) domain.WSResponse {
	return domain.NewPush(domain.MessageStatusUpdated, map[string]interface{}{
		"message_id": messageID,
		"status":     status,
	})
}
