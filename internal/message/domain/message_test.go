package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitionsOnlyMoveForward(t *testing.T) {
	assert.True(t, StatusSent.CanTransition(StatusDelivered))
	assert.True(t, StatusSent.CanTransition(StatusSeen))
	assert.True(t, StatusDelivered.CanTransition(StatusSeen))

	// No regressions, no repeats.
	assert.False(t, StatusSeen.CanTransition(StatusDelivered))
	assert.False(t, StatusSeen.CanTransition(StatusSent))
	assert.False(t, StatusDelivered.CanTransition(StatusSent))
	assert.False(t, StatusSent.CanTransition(StatusSent))
	assert.False(t, StatusSeen.CanTransition(StatusSeen))
}

func TestStatusUnknownValuesAreNeverApplied(t *testing.T) {
	assert.False(t, MessageStatus("read").Valid())
	assert.False(t, StatusSent.CanTransition(MessageStatus("archived")))
	assert.False(t, StatusSent.CanTransition(MessageStatus("")))
}
