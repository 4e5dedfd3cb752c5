package app

import (
	"context"

	"direct_message_service/internal/message/domain"
	"direct_message_service/internal/message/repository"
	"direct_message_service/pkg/logger"

	"go.uber.org/zap"
)

// DefaultPageSize messages per history page when the client sends none.
const DefaultPageSize = 20

// HistoryUseCase serves paginated conversation history and the conversation
// list. Reading history as the receiving side opportunistically promotes the
// partner's still-sent messages to delivered.
type HistoryUseCase struct {
	msgRepo     repository.MessageRepository
	profileRepo repository.ProfileRepository
	status      *StatusUseCase
	unread      *UnreadTracker
}

// NewHistoryUseCase create HistoryUseCase
func NewHistoryUseCase(
	msgRepo repository.MessageRepository,
	profileRepo repository.ProfileRepository,
	status *StatusUseCase,
	unread *UnreadTracker,
) *HistoryUseCase {
	return &HistoryUseCase{
		msgRepo:     msgRepo,
		profileRepo: profileRepo,
		status:      status,
		unread:      unread,
	}
}

// Messages returns one page of the conversation between requester and
// partner, oldest first within the page, with display profiles populated.
func (uc *HistoryUseCase) Messages(ctx context.Context, requesterID, partnerID string, page, limit int64) ([]domain.Message, domain.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	skip := (page - 1) * limit

	msgs, err := uc.msgRepo.FindBetween(ctx, requesterID, partnerID, skip, limit)
	if err != nil {
		return nil, domain.Pagination{}, domain.Storef("find messages", err)
	}

	// The requester's client is now aware of everything the partner sent:
	// promote the weaker delivered state without a client round-trip. Only
	// the receiving side's read does this.
	if _, err := uc.status.MarkConversationDelivered(ctx, requesterID, partnerID); err != nil {
		logger.Log.Warn("delivered promotion failed",
			zap.String("requesterID", requesterID),
			zap.String("partnerID", partnerID),
			zap.Error(err),
		)
	}

	total, err := uc.msgRepo.CountBetween(ctx, requesterID, partnerID)
	if err != nil {
		return nil, domain.Pagination{}, domain.Storef("count messages", err)
	}

	profiles := map[string]*domain.UserProfile{
		requesterID: uc.resolveProfile(ctx, requesterID),
		partnerID:   uc.resolveProfile(ctx, partnerID),
	}
	for i := range msgs {
		msgs[i].Sender = profiles[msgs[i].SenderID]
		msgs[i].Receiver = profiles[msgs[i].ReceiverID]
	}

	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	pg := domain.Pagination{
		Total:   total,
		Page:    page,
		Pages:   pages,
		HasMore: skip+int64(len(msgs)) < total,
	}
	return msgs, pg, nil
}

// Conversations returns the requester's conversation list, most recent
// first, and reconciles the unread tracker with the aggregated counts.
func (uc *HistoryUseCase) Conversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	convos, err := uc.msgRepo.ConversationSummaries(ctx, userID)
	if err != nil {
		return nil, domain.Storef("conversation summaries", err)
	}
	for i := range convos {
		convos[i].Partner = uc.resolveProfile(ctx, convos[i].PartnerID)
		uc.unread.Observe(userID, convos[i].PartnerID, convos[i].Unread)
	}
	return convos, nil
}

func (uc *HistoryUseCase) resolveProfile(ctx context.Context, userID string) *domain.UserProfile {
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
