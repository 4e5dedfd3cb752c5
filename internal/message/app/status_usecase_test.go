package app

import (
	"context"
	"testing"

	"direct_message_service/internal/message/domain"

	"github.com/stretchr/testify/assert"
)

func TestStatusUseCase_UpdateStatusNotifiesSender(t *testing.T) {
	ctx := context.Background()
	registry := NewConnectionRegistry()
	senderHandle := &fakeHandle{}
	registry.Register("alice", senderHandle)

	mockMsgRepo := new(MockMessageRepository)
	uc := NewStatusUseCase(mockMsgRepo, newTestPusher(registry), NewUnreadTracker(mockMsgRepo))

	stored := &domain.Message{ID: "m1", SenderID: "alice", ReceiverID: "bob", Status: domain.StatusSent}
	mockMsgRepo.On("FindByID", ctx, "m1").Return(stored, nil)
	mockMsgRepo.On("UpdateStatus", ctx, "m1", domain.StatusSeen, true).Return(nil)

	updated, err := uc.UpdateStatus(ctx, "m1", domain.StatusSeen)

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusSeen, updated.Status)
	assert.True(t, updated.IsRead)

	events := senderHandle.received()
	assert.Len(t, events, 1)
	assert.Equal(t, string(domain.MessageStatusUpdated), events[0].Action)
	assert.Equal(t, "m1", events[0].Payload["message_id"])
	assert.Equal(t, domain.StatusSeen, events[0].Payload["status"])

	mockMsgRepo.AssertExpectations(t)
}

func TestStatusUseCase_RegressionIsRejected(t *testing.T) {
	ctx := context.Background()
	registry := NewConnectionRegistry()
	senderHandle := &fakeHandle{}
	registry.Register("alice", senderHandle)

	mockMsgRepo := new(MockMessageRepository)
	uc := NewStatusUseCase(mockMsgRepo, newTestPusher(registry), NewUnreadTracker(mockMsgRepo))

	stored := &domain.Message{ID: "m1", SenderID: "alice", ReceiverID: "bob", Status: domain.StatusSeen, IsRead: true}
	mockMsgRepo.On("FindByID", ctx, "m1").Return(stored, nil)

	_, err := uc.UpdateStatus(ctx, "m1", domain.StatusDelivered)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, senderHandle.received())
	mockMsgRepo.AssertNotCalled(t, "UpdateStatus", ctx, "m1", domain.StatusDelivered, true)
}

func TestStatusUseCase_UnknownMessage(t *testing.T) {
	ctx := context.Background()
	mockMsgRepo := new(MockMessageRepository)
	uc := NewStatusUseCase(mockMsgRepo, newTestPusher(NewConnectionRegistry()), NewUnreadTracker(mockMsgRepo))

	mockMsgRepo.On("FindByID", ctx, "ghost").Return(nil, nil)

	_, err := uc.UpdateStatus(ctx, "ghost", domain.StatusDelivered)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatusUseCase_UnknownStatusValue(t *testing.T) {
	ctx := context.Background()
	mockMsgRepo := new(MockMessageRepository)
	uc := NewStatusUseCase(mockMsgRepo, newTestPusher(NewConnectionRegistry()), NewUnreadTracker(mockMsgRepo))

	_, err := uc.UpdateStatus(ctx, "m1", domain.MessageStatus("archived"))

	assert.ErrorIs(t, err, domain.ErrValidation)
	mockMsgRepo.AssertNotCalled(t, "FindByID", ctx, "m1")
}

func TestStatusUseCase_MarkConversationRead(t *testing.T) {
	ctx := context.Background()
	registry := NewConnectionRegistry()
	partnerHandle := &fakeHandle{}
	registry.Register("alice", partnerHandle)

	mockMsgRepo := new(MockMessageRepository)
	unread := NewUnreadTracker(mockMsgRepo)
	uc := NewStatusUseCase(mockMsgRepo, newTestPusher(registry), unread)

	pending := []domain.Message{
		{ID: "m1", SenderID: "alice", ReceiverID: "bob", Status: domain.StatusSent},
		{ID: "m2", SenderID: "alice", ReceiverID: "bob", Status: domain.StatusDelivered},
	}
	mockMsgRepo.On("FindUnread", ctx, "bob", "alice").Return(pending, nil)
	mockMsgRepo.On("MarkConversationRead", ctx, "bob", "alice").Return(int64(2), nil)

	unread.Increment("bob", "alice")
	unread.Increment("bob", "alice")

	modified, err := uc.MarkConversationRead(ctx, "bob", "alice")

	assert.NoError(t, err)
	assert.Equal(t, int64(2), modified)
	assert.Zero(t, unread.Unread("bob", "alice"))

	// One seen push per flipped message, addressed to the original sender.
	events := partnerHandle.received()
	assert.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, string(domain.MessageStatusUpdated), e.Action)
		assert.Equal(t, domain.StatusSeen, e.Payload["status"])
	}

	mockMsgRepo.AssertExpectations(t)
}

func TestStatusUseCase_MarkConversationReadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	registry := NewConnectionRegistry()
	partnerHandle := &fakeHandle{}
	registry.Register("alice", partnerHandle)

	mockMsgRepo := new(MockMessageRepository)
	uc := NewStatusUseCase(mockMsgRepo, newTestPusher(registry), NewUnreadTracker(mockMsgRepo))

	// Nothing left unread: no updateMany, no pushes.
	mockMsgRepo.On("FindUnread", ctx, "bob", "alice").Return([]domain.Message{}, nil)

	modified, err := uc.MarkConversationRead(ctx, "bob", "alice")

	assert.NoError(t, err)
	assert.Zero(t, modified)
	assert.Empty(t, partnerHandle.received())
	mockMsgRepo.AssertNotCalled(t, "MarkConversationRead", ctx, "bob", "alice")
}

func TestStatusUseCase_DeliveredPromotionPushesNothing(t *testing.T) {
	ctx := context.Background()
	registry := NewConnectionRegistry()
	partnerHandle := &fakeHandle{}
	registry.Register("alice", partnerHandle)

	mockMsgRepo := new(MockMessageRepository)
	uc := NewStatusUseCase(mockMsgRepo, newTestPusher(registry), NewUnreadTracker(mockMsgRepo))

	mockMsgRepo.On("MarkConversationDelivered", ctx, "bob", "alice").Return(int64(3), nil)

	modified, err := uc.MarkConversationDelivered(ctx, "bob", "alice")

	assert.NoError(t, err)
	assert.Equal(t, int64(3), modified)
	assert.Empty(t, partnerHandle.received())
}
