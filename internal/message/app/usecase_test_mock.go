package app

import (
	"context"
	"sync"

	"direct_message_service/internal/message/domain"

	"github.com/stretchr/testify/mock"
)

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Insert mock insert message
func (m *MockMessageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// FindByID mock find message by id
func (m *MockMessageRepository) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateStatus mock update single message status
func (m *MockMessageRepository) UpdateStatus(ctx context.Context, id string, status domain.MessageStatus, read bool) error {
	args := m.Called(ctx, id, status, read)
	return args.Error(0)
}

// FindBetween mock find messages between two users
func (m *MockMessageRepository) FindBetween(ctx context.Context, userA, userB string, skip, limit int64) ([]domain.Message, error) {
	args := m.Called(ctx, userA, userB, skip, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// CountBetween mock count messages between two users
func (m *MockMessageRepository) CountBetween(ctx context.Context, userA, userB string) (int64, error) {
	args := m.Called(ctx, userA, userB)
	return args.Get(0).(int64), args.Error(1)
}

// FindUnread mock find unread messages
func (m *MockMessageRepository) FindUnread(ctx context.Context, ownerID, partnerID string) ([]domain.Message, error) {
	args := m.Called(ctx, ownerID, partnerID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// MarkConversationRead mock bulk mark read
func (m *MockMessageRepository) MarkConversationRead(ctx context.Context, ownerID, partnerID string) (int64, error) {
	args := m.Called(ctx, ownerID, partnerID)
	return args.Get(0).(int64), args.Error(1)
}

// MarkConversationDelivered mock bulk delivered promotion
func (m *MockMessageRepository) MarkConversationDelivered(ctx context.Context, ownerID, partnerID string) (int64, error) {
	args := m.Called(ctx, ownerID, partnerID)
	return args.Get(0).(int64), args.Error(1)
}

// CountUnread mock durable unread baseline
func (m *MockMessageRepository) CountUnread(ctx context.Context, ownerID, partnerID string) (int64, error) {
	args := m.Called(ctx, ownerID, partnerID)
	return args.Get(0).(int64), args.Error(1)
}

// ConversationSummaries mock conversation list aggregation
func (m *MockMessageRepository) ConversationSummaries(ctx context.Context, userID string) ([]domain.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockProfileRepository Mock ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

// FindByUserID mock find profile by user id
func (m *MockProfileRepository) FindByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.UserProfile), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPushPublisher Mock PushPublisher
type MockPushPublisher struct {
	mock.Mock
}

// Publish mock publisher
func (m *MockPushPublisher) Publish(userID string, event domain.WSResponse) error {
	args := m.Called(userID, event)
	return args.Error(0)
}

// fakeHandle records every event written to it.
type fakeHandle struct {
	mu     sync.Mutex
	events []domain.WSResponse
}

func (h *fakeHandle) WriteEvent(event domain.WSResponse) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *fakeHandle) received() []domain.WSResponse {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.WSResponse, len(h.events))
	copy(out, h.events)
	return out
}

// newTestPusher wires a registry-backed pusher without a publisher.
func newTestPusher(registry *ConnectionRegistry) *Pusher {
	return NewPusher(registry, nil)
}
