package ws

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func testMessage(t string) Message {
	return Message{Type: t, Payload: json.RawMessage(`{}`)}
}

func TestSendToUnknownConnection(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	err := hub.SendToConnection(uuid.New(), testMessage(TypeArenaEvent))
	assert.Equal(t, ErrConnectionNotFound, err)
}

func TestBroadcastToRunDeliversToSubscribers(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	subscriber := NewConnection(nil, zerolog.Nop())
	bystander := NewConnection(nil, zerolog.Nop())
	subID, byID := uuid.New(), uuid.New()
	hub.RegisterConnection(subID, subscriber)
	hub.RegisterConnection(byID, bystander)
	hub.SubscribeRun("run-1", subID)

	assert.NoError(t, hub.BroadcastToRun("run-1", testMessage(TypeArenaEvent)))

	assert.Len(t, subscriber.sendCh, 1)
	assert.Len(t, bystander.sendCh, 0)
}

func TestSubscribeRunIdempotent(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := NewConnection(nil, zerolog.Nop())
	connID := uuid.New()
	hub.RegisterConnection(connID, conn)
	hub.SubscribeRun("run-1", connID)
	hub.SubscribeRun("run-1", connID)

	assert.NoError(t, hub.BroadcastToRun("run-1", testMessage(TypeArenaEvent)))
	assert.Len(t, conn.sendCh, 1, "double subscribe must not double deliver")
}

func TestUnsubscribeRunStopsDelivery(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := NewConnection(nil, zerolog.Nop())
	connID := uuid.New()
	hub.RegisterConnection(connID, conn)
	hub.SubscribeRun("run-1", connID)
	hub.UnsubscribeRun("run-1", connID)

	assert.NoError(t, hub.BroadcastToRun("run-1", testMessage(TypeArenaEvent)))
	assert.Len(t, conn.sendCh, 0)
}

func TestConnectionWatchesMultipleRuns(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := NewConnection(nil, zerolog.Nop())
	connID := uuid.New()
	hub.RegisterConnection(connID, conn)
	hub.SubscribeRun("run-1", connID)
	hub.SubscribeRun("run-2", connID)

	assert.NoError(t, hub.BroadcastToRun("run-1", testMessage(TypeArenaEvent)))
	assert.NoError(t, hub.BroadcastToRun("run-2", testMessage(TypeArenaEvent)))
	assert.Len(t, conn.sendCh, 2)
}

func TestSendQueueFull(t *testing.T) {
	conn := NewConnection(nil, zerolog.Nop())
	for i := 0; i < cap(conn.sendCh); i++ {
		assert.NoError(t, conn.Send(testMessage(TypePing)))
	}
	assert.Equal(t, ErrSendQueueFull, conn.Send(testMessage(TypePing)))
}

func TestSendAfterClose(t *testing.T) {
	conn := NewConnection(nil, zerolog.Nop())
	conn.closed = true
	assert.Equal(t, ErrConnectionClosed, conn.Send(testMessage(TypePing)))
}
