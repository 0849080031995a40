package websocket

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(hub *Hub) *Client {
	return &Client{
		hub:        hub,
		send:       make(chan []byte, 8),
		id:         "test-client",
		remoteAddr: "127.0.0.1:1234",
		logger:     slog.Default(),
	}
}

func TestHubRegisterAndBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Start()
	defer hub.Stop()

	client := testClient(hub)
	hub.register <- client

	// Connection greeting arrives first.
	select {
	case raw := <-client.send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, TypeConnection, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("no connection message received")
	}

	hub.BroadcastDataRefreshed(map[string]string{"reason": "store updated"})

	select {
	case raw := <-client.send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, TypeDataRefreshed, msg.Type)
		assert.NotEmpty(t, msg.Timestamp)
	case <-time.After(time.Second):
		t.Fatal("no refresh message received")
	}
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Start()
	defer hub.Stop()

	client := testClient(hub)
	hub.register <- client
	<-client.send

	hub.unregister <- client

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 10*time.Millisecond)

	// The send channel is closed on unregister.
	_, open := <-client.send
	assert.False(t, open)
}

func TestHubClientCount(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()
	defer hub.Stop()

	assert.Equal(t, 0, hub.ClientCount())

	hub.register <- testClient(hub)
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)
}
