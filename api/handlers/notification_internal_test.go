package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/pickup-notify-api/models"
)

func TestNotificationHub_PublishDropsClientThatFellBehind(t *testing.T) {
	hub := NewNotificationHub()
	c := newClient(nil)
	hub.add("u1", c)

	start := time.Now()
	for i := 0; i < sendBuffer; i++ {
		hub.Publish("u1", models.Notification{RecipientID: "u1"})
	}
	assert.Equal(t, 1, hub.Connected("u1"))

	// nobody drains the queue, the next publish must not wait on it
	hub.Publish("u1", models.Notification{RecipientID: "u1"})
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 0, hub.Connected("u1"))

	queued := 0
	for range c.send {
		queued++
	}
	assert.Equal(t, sendBuffer, queued)
}

func TestClient_EnqueueAfterCloseIsRejected(t *testing.T) {
	c := newClient(nil)
	c.close()
	c.close()

	require.False(t, c.enqueue("x"))
}
