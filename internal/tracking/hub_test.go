package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastDeliversToAllClients(t *testing.T) {
	hub := NewHub()
	a := &Client{ID: "a", Send: make(chan []byte, 1)}
	b := &Client{ID: "b", Send: make(chan []byte, 1)}
	hub.AddClient(a)
	hub.AddClient(b)

	hub.Broadcast([]byte("ping"))

	assert.Equal(t, []byte("ping"), <-a.Send)
	assert.Equal(t, []byte("ping"), <-b.Send)
}

func TestBroadcastDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{ID: "slow", Send: make(chan []byte, 1)}
	hub.AddClient(slow)

	hub.Broadcast([]byte("one"))
	hub.Broadcast([]byte("two"))

	// The second frame overflowed the buffer, so the client was removed
	// and its channel closed after the pending frame.
	msg, ok := <-slow.Send
	require.True(t, ok)
	assert.Equal(t, []byte("one"), msg)

	_, ok = <-slow.Send
	assert.False(t, ok)

	hub.mu.RLock()
	_, exists := hub.clients["slow"]
	hub.mu.RUnlock()
	assert.False(t, exists)
}

func TestRemoveClientIsIdempotent(t *testing.T) {
	hub := NewHub()
	c := &Client{ID: "c", Send: make(chan []byte, 1)}
	hub.AddClient(c)

	hub.RemoveClient("c")
	hub.RemoveClient("c")
	hub.RemoveClient("never-added")
}
