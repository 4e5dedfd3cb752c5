package app

import (
	"context"
	"sync"
	"testing"

	"direct_message_service/internal/message/domain"

	"github.com/stretchr/testify/assert"
)

func TestUnreadTracker_IncrementAccumulates(t *testing.T) {
	tracker := NewUnreadTracker(new(MockMessageRepository))

	tracker.Increment("bob", "alice")
	tracker.Increment("bob", "alice")
	tracker.Increment("bob", "carol")

	assert.Equal(t, int64(2), tracker.Unread("bob", "alice"))
	assert.Equal(t, int64(1), tracker.Unread("bob", "carol"))
	assert.Zero(t, tracker.Unread("alice", "bob"))
}

func TestUnreadTracker_CurrentReconciles(t *testing.T) {
	ctx := context.Background()
	mockMsgRepo := new(MockMessageRepository)
	tracker := NewUnreadTracker(mockMsgRepo)

	// Two live pushes happened, then the store already holds both rows.
	tracker.Increment("bob", "alice")
	tracker.Increment("bob", "alice")
	mockMsgRepo.On("CountUnread", ctx, "bob", "alice").Return(int64(2), nil)

	n, err := tracker.Current(ctx, "bob", "alice")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// The durable count subsumed the deltas; nothing is double counted.
	assert.Equal(t, int64(2), tracker.Unread("bob", "alice"))

	tracker.Increment("bob", "alice")
	assert.Equal(t, int64(3), tracker.Unread("bob", "alice"))
}

func TestUnreadTracker_CurrentStoreFailure(t *testing.T) {
	ctx := context.Background()
	mockMsgRepo := new(MockMessageRepository)
	tracker := NewUnreadTracker(mockMsgRepo)

	tracker.Increment("bob", "alice")
	mockMsgRepo.On("CountUnread", ctx, "bob", "alice").Return(int64(0), assert.AnError)

	_, err := tracker.Current(ctx, "bob", "alice")
	assert.ErrorIs(t, err, domain.ErrStore)

	// The cached view survives the failed reconcile.
	assert.Equal(t, int64(1), tracker.Unread("bob", "alice"))
}

func TestUnreadTracker_ResetZeroesThePair(t *testing.T) {
	tracker := NewUnreadTracker(new(MockMessageRepository))

	tracker.Observe("bob", "alice", 5)
	tracker.Increment("bob", "alice")
	tracker.Increment("bob", "carol")

	tracker.Reset("bob", "alice")

	assert.Zero(t, tracker.Unread("bob", "alice"))
	assert.Equal(t, int64(1), tracker.Unread("bob", "carol"))
}

func TestUnreadTracker_SnapshotReconcilesEveryPair(t *testing.T) {
	ctx := context.Background()
	mockMsgRepo := new(MockMessageRepository)
	tracker := NewUnreadTracker(mockMsgRepo)

	tracker.Increment("bob", "alice")
	tracker.Increment("bob", "alice")

	summaries := []domain.Conversation{
		{PartnerID: "alice", Unread: 2},
		{PartnerID: "carol", Unread: 7},
	}
	mockMsgRepo.On("ConversationSummaries", ctx, "bob").Return(summaries, nil)

	counts, err := tracker.Snapshot(ctx, "bob")
	assert.NoError(t, err)
	assert.Equal(t, map[string]int64{"alice": 2, "carol": 7}, counts)

	assert.Equal(t, int64(2), tracker.Unread("bob", "alice"))
	assert.Equal(t, int64(7), tracker.Unread("bob", "carol"))
}

func TestUnreadTracker_ConcurrentIncrements(t *testing.T) {
	tracker := NewUnreadTracker(new(MockMessageRepository))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Increment("bob", "alice")
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), tracker.Unread("bob", "alice"))
}
