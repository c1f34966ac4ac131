package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, client *Client) (StreamMessage, bool) {
	t.Helper()
	select {
	case msg, ok := <-client.Messages():
		return msg, ok
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return StreamMessage{}, false
	}
}

func TestHubFanOut(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	first, ok := hub.Subscribe(ctx)
	require.True(t, ok)
	second, ok := hub.Subscribe(ctx)
	require.True(t, ok)
	assert.Equal(t, 2, hub.ClientCount())

	hub.Broadcast(StreamMessage{Type: "nft_receipts", Height: 100})

	for _, client := range []*Client{first, second} {
		msg, ok := receive(t, client)
		require.True(t, ok)
		assert.Equal(t, uint64(100), msg.Height)
	}

	hub.Unsubscribe(first)
	_, ok = receive(t, first)
	assert.False(t, ok, "unsubscribed client channel is closed")
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	client, ok := hub.Subscribe(ctx)
	require.True(t, ok)

	cancel()
	_, ok = receive(t, client)
	assert.False(t, ok)

	<-hub.done
	_, ok = hub.Subscribe(context.Background())
	assert.False(t, ok)
	hub.Unsubscribe(client)
}
