package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamManager(t *testing.T) {
	sm := NewStreamManager()
	ch, cancel := sm.Subscribe("s1")
	assert.Equal(t, 1, sm.Subscribers("s1"))

	sm.Broadcast("s1", "hello")
	sm.Broadcast("s2", "ignored")
	assert.Equal(t, "hello", <-ch)

	// A full buffer drops instead of blocking.
	for i := 0; i < 20; i++ {
		sm.Broadcast("s1", "x")
	}
	assert.Len(t, ch, 10)

	cancel()
	assert.Equal(t, 0, sm.Subscribers("s1"))
}
