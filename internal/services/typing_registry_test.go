package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypingRegistryMarkAndExpiry(t *testing.T) {
	clock := newTestClock()
	registry := NewTypingRegistry(5*time.Second, clock.Now)

	registry.Mark("#ff0000")
	registry.Mark("#00ff00")
	assert.Equal(t, []string{"#00ff00", "#ff0000"}, registry.Typing())

	clock.Advance(3 * time.Second)
	registry.Mark("#ff0000")

	// #00ff00 went idle 6s ago, #ff0000 was refreshed 3s ago.
	clock.Advance(3 * time.Second)
	assert.Equal(t, []string{"#ff0000"}, registry.Typing())

	clock.Advance(6 * time.Second)
	assert.Empty(t, registry.Typing())
}

func TestTypingRegistryClear(t *testing.T) {
	clock := newTestClock()
	registry := NewTypingRegistry(5*time.Second, clock.Now)

	registry.Mark("#ff0000")
	registry.Clear("#ff0000")
	assert.Empty(t, registry.Typing())

	// Clearing an absent mark is a no-op.
	registry.Clear("#123456")
	assert.Empty(t, registry.Typing())
}

func TestTypingRegistryReMarkAfterExpiry(t *testing.T) {
	clock := newTestClock()
	registry := NewTypingRegistry(5*time.Second, clock.Now)

	registry.Mark("#ff0000")
	clock.Advance(10 * time.Second)
	assert.Empty(t, registry.Typing())

	registry.Mark("#ff0000")
	assert.Equal(t, []string{"#ff0000"}, registry.Typing())
}
