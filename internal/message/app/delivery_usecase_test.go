package app

import (
	"context"
	"errors"
	"testing"

	"direct_message_service/internal/message/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newDeliveryFixture(registry *ConnectionRegistry) (*DeliveryUseCase, *MockMessageRepository, *MockProfileRepository, *UnreadTracker) {
	mockMsgRepo := new(MockMessageRepository)
	mockProfileRepo := new(MockProfileRepository)
	unread := NewUnreadTracker(mockMsgRepo)
	uc := NewDeliveryUseCase(mockMsgRepo, mockProfileRepo, newTestPusher(registry), unread)
	return uc, mockMsgRepo, mockProfileRepo, unread
}

func TestDeliveryUseCase_SendToOnlineReceiver(t *testing.T) {
	ctx := context.Background()
	registry := NewConnectionRegistry()
	senderHandle := &fakeHandle{}
	receiverHandle := &fakeHandle{}
	registry.Register("alice", senderHandle)
	registry.Register("bob", receiverHandle)

	uc, mockMsgRepo, mockProfileRepo, _ := newDeliveryFixture(registry)

	mockMsgRepo.On("Insert", ctx, mock.Anything).Return(nil)
	mockProfileRepo.On("FindByUserID", ctx, "alice").Return(&domain.UserProfile{UserID: "alice", Name: "Alice"}, nil)
	mockProfileRepo.On("FindByUserID", ctx, "bob").Return(&domain.UserProfile{UserID: "bob", Name: "Bob"}, nil)

	msg, err := uc.Send(ctx, "alice", "bob", "hi")

	assert.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, domain.StatusSent, msg.Status)
	assert.False(t, msg.IsRead)
	assert.Equal(t, "Alice", msg.Sender.Name)

	// Both sides' handles get the same populated message.
	for _, h := range []*fakeHandle{senderHandle, receiverHandle} {
		events := h.received()
		assert.Len(t, events, 1)
		assert.Equal(t, string(domain.MessageReceived), events[0].Action)
		pushed := events[0].Payload["message"].(*domain.Message)
		assert.Equal(t, msg.ID, pushed.ID)
		assert.Equal(t, "hi", pushed.Content)
		assert.Equal(t, "alice", pushed.SenderID)
		assert.Equal(t, "bob", pushed.ReceiverID)
	}

	mockMsgRepo.AssertExpectations(t)
	mockProfileRepo.AssertExpectations(t)
}

func TestDeliveryUseCase_SendToOfflineReceiverIsStoreAndForward(t *testing.T) {
	ctx := context.Background()
	registry := NewConnectionRegistry()

	uc, mockMsgRepo, mockProfileRepo, unread := newDeliveryFixture(registry)

	mockMsgRepo.On("Insert", ctx, mock.Anything).Return(nil)
	mockProfileRepo.On("FindByUserID", ctx, mock.Anything).Return(nil, nil)

	msg, err := uc.Send(ctx, "alice", "bob", "hi")

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusSent, msg.Status)
	// Nobody is reachable, yet the send completes and the unread counter
	// reflects the pending message.
	assert.Equal(t, int64(1), unread.Unread("bob", "alice"))

	mockMsgRepo.AssertExpectations(t)
}

func TestDeliveryUseCase_SendValidation(t *testing.T) {
	ctx := context.Background()
	uc, mockMsgRepo, _, unread := newDeliveryFixture(NewConnectionRegistry())

	_, err := uc.Send(ctx, "alice", "bob", "   \t ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Send(ctx, "alice", "alice", "hi")
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Nothing persisted, nothing counted.
	mockMsgRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	assert.Zero(t, unread.Unread("bob", "alice"))
}

func TestDeliveryUseCase_StoreFailureEmitsNoPush(t *testing.T) {
	ctx := context.Background()
	registry := NewConnectionRegistry()
	receiverHandle := &fakeHandle{}
	registry.Register("bob", receiverHandle)

	uc, mockMsgRepo, _, unread := newDeliveryFixture(registry)
	mockMsgRepo.On("Insert", ctx, mock.Anything).Return(errors.New("mongo down"))

	_, err := uc.Send(ctx, "alice", "bob", "hi")

	assert.ErrorIs(t, err, domain.ErrStore)
	assert.Empty(t, receiverHandle.received())
	assert.Zero(t, unread.Unread("bob", "alice"))
}

func TestDeliveryUseCase_PublishesForRemoteNodes(t *testing.T) {
	ctx := context.Background()
	registry := NewConnectionRegistry()

	mockMsgRepo := new(MockMessageRepository)
	mockProfileRepo := new(MockProfileRepository)
	mockPub := new(MockPushPublisher)
	uc := NewDeliveryUseCase(mockMsgRepo, mockProfileRepo, NewPusher(registry, mockPub), NewUnreadTracker(mockMsgRepo))

	mockMsgRepo.On("Insert", ctx, mock.Anything).Return(nil)
	mockProfileRepo.On("FindByUserID", ctx, mock.Anything).Return(nil, nil)
	mockPub.On("Publish", "bob", mock.Anything).Return(nil)
	mockPub.On("Publish", "alice", mock.Anything).Return(nil)

	_, err := uc.Send(ctx, "alice", "bob", "hi")

	assert.NoError(t, err)
	mockPub.AssertExpectations(t)
}
