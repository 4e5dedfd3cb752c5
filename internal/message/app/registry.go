package app

import (
	"sync"

	"direct_message_service/internal/message/domain"
)

// ConnectionHandle is an open, addressable connection to one client instance
// of a user. A user with several devices or tabs holds several handles.
type ConnectionHandle interface {
	WriteEvent(event domain.WSResponse) error
}

// ConnectionRegistry maps a user identity to its live connection handles. It
// is the single shared mutable structure every inbound event touches, so all
// access goes through the lock. State is process-local and empty at startup.
type ConnectionRegistry struct {
	mu     sync.RWMutex
	byUser map[string]map[ConnectionHandle]struct{}
	byConn map[ConnectionHandle]string
}

// NewConnectionRegistry create an empty ConnectionRegistry
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		byUser: make(map[string]map[ConnectionHandle]struct{}),
		byConn: make(map[ConnectionHandle]string),
	}
}

// Register adds a handle under the user identity.
func (r *ConnectionRegistry) Register(userID string, h ConnectionHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.byUser[userID]
	if !ok {
		set = make(map[ConnectionHandle]struct{})
		r.byUser[userID] = set
	}
	set[h] = struct{}{}
	r.byConn[h] = userID
}

// Unregister removes exactly that handle from whichever identity holds it.
// No-op when the handle is already gone.
func (r *ConnectionRegistry) Unregister(h ConnectionHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[h]
	if !ok {
		return
	}
	delete(r.byConn, h)

	set := r.byUser[userID]
	delete(set, h)
	if len(set) == 0 {
		delete(r.byUser, userID)
	}
}

// HandlesFor returns the current live handles of a user, possibly empty.
func (r *ConnectionRegistry) HandlesFor(userID string) []ConnectionHandle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.byUser[userID]
	if len(set) == 0 {
		return nil
	}
	handles := make([]ConnectionHandle, 0, len(set))
	for h := range set {
		handles = append(handles, h)
	}
	return handles
}

// Online reports whether the user has at least one live handle.
func (r *ConnectionRegistry) Online(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}
