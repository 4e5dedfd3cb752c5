package app

import (
	"context"
	"sync"

	"direct_message_service/internal/message/domain"
	"direct_message_service/internal/message/repository"
)

type pairKey struct {
	ownerID   string
	partnerID string
}

type pairCounter struct {
	// baseline is the durable unread count as of the last reconcile.
	baseline int64
	// delta counts messages pushed since that reconcile.
	delta int64
}

// UnreadTracker reconciles unread counts between the message store and live
// pushes. The displayed count for a pair is the durable baseline at the last
// fetch plus the delta accrued since; fetching folds the delta into a fresh
// baseline so nothing is double counted across a reconnect.
type UnreadTracker struct {
	mu      sync.Mutex
	msgRepo repository.MessageRepository
	pairs   map[pairKey]*pairCounter
}

// NewUnreadTracker create UnreadTracker
func NewUnreadTracker(msgRepo repository.MessageRepository) *UnreadTracker {
	return &UnreadTracker{
		msgRepo: msgRepo,
		pairs:   make(map[pairKey]*pairCounter),
	}
}

func (t *UnreadTracker) counter(ownerID, partnerID string) *pairCounter {
	k := pairKey{ownerID: ownerID, partnerID: partnerID}
	c, ok := t.pairs[k]
	if !ok {
		c = &pairCounter{}
		t.pairs[k] = c
	}
	return c
}

// Increment records one live push of an unread message to owner from partner.
func (t *UnreadTracker) Increment(ownerID, partnerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counter(ownerID, partnerID).delta++
}

// Unread returns the tracked count without a store round trip.
func (t *UnreadTracker) Unread(ownerID, partnerID string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := t.counter(ownerID, partnerID)
	return c.baseline + c.delta
}

// Current fetches a fresh durable baseline and folds it in. The counted rows
// subsume every delta accrued so far, so the delta restarts at zero.
func (t *UnreadTracker) Current(ctx context.Context, ownerID, partnerID string) (int64, error) {
	n, err := t.msgRepo.CountUnread(ctx, ownerID, partnerID)
	if err != nil {
		return 0, domain.Storef("count unread", err)
	}
	t.Observe(ownerID, partnerID, n)
	return n, nil
}

// Observe installs a baseline obtained elsewhere (e.g. a conversation-list
// aggregation) as the reconcile point for the pair.
func (t *UnreadTracker) Observe(ownerID, partnerID string, baseline int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := t.counter(ownerID, partnerID)
	c.baseline = baseline
	c.delta = 0
}

// Reset zeroes the pair. Called exactly once when the owner opens the
// conversation, alongside the bulk mark-read that zeroes the durable side.
func (t *UnreadTracker) Reset(ownerID, partnerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := t.counter(ownerID, partnerID)
	c.baseline = 0
	c.delta = 0
}

// Snapshot reconciles and returns every conversation's unread count for the
// owner, keyed by partner id.
func (t *UnreadTracker) Snapshot(ctx context.Context, ownerID string) (map[string]int64, error) {
	convos, err := t.msgRepo.ConversationSummaries(ctx, ownerID)
	if err != nil {
		return nil, domain.Storef("conversation summaries", err)
	}
	counts := make(map[string]int64, len(convos))
	for _, c := range convos {
		t.Observe(ownerID, c.PartnerID, c.Unread)
		counts[c.PartnerID] = c.Unread
	}
	return counts, nil
}
