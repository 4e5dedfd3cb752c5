package app

import (
	"os"
	"sync"
	"testing"

	"direct_message_service/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.Log = logger.Initialize("message_service_test", os.TempDir())
	os.Exit(m.Run())
}

func TestRegistryMultipleHandlesPerUser(t *testing.T) {
	registry := NewConnectionRegistry()
	userID := "user-1"

	h1 := &fakeHandle{}
	h2 := &fakeHandle{}
	registry.Register(userID, h1)
	registry.Register(userID, h2)

	assert.Len(t, registry.HandlesFor(userID), 2)
	assert.True(t, registry.Online(userID))

	registry.Unregister(h1)
	assert.Len(t, registry.HandlesFor(userID), 1)

	registry.Unregister(h2)
	assert.Empty(t, registry.HandlesFor(userID))
	assert.False(t, registry.Online(userID))
}

func TestRegistryUnregisterIsIdempotent(t *testing.T) {
	registry := NewConnectionRegistry()
	h := &fakeHandle{}
	registry.Register("user-1", h)

	registry.Unregister(h)
	registry.Unregister(h)

	assert.Empty(t, registry.HandlesFor("user-1"))
}

func TestRegistryUnknownUserHasNoHandles(t *testing.T) {
	registry := NewConnectionRegistry()
	assert.Empty(t, registry.HandlesFor("nobody"))
	assert.False(t, registry.Online("nobody"))
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewConnectionRegistry()
	users := []string{"user-1", "user-2", "user-3"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for _, userID := range users {
			wg.Add(1)
			go func(userID string) {
				defer wg.Done()
				h := &fakeHandle{}
				registry.Register(userID, h)
				registry.HandlesFor(userID)
				registry.Unregister(h)
			}(userID)
		}
	}
	wg.Wait()

	for _, userID := range users {
		assert.Empty(t, registry.HandlesFor(userID))
	}
}
