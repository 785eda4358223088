package ws

import "encoding/json"

// MessageType constants for the arena WebSocket protocol.
const (
	// Client -> Server
	TypeSubscribeRun   = "subscribe_run"
	TypeUnsubscribeRun = "unsubscribe_run"

	// Server -> Client
	TypeArenaEvent = "arena_event"
	TypeError      = "error"
	TypePing       = "ping"
	TypePong       = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	RequestID string          `json:"request_id,omitempty"`
}

// Client messages (incoming)

type SubscribeRunPayload struct {
	RunID string `json:"run_id"`
}

type UnsubscribeRunPayload struct {
	RunID string `json:"run_id"`
}

// Server messages (outgoing)

// ArenaEventPayload relays one arena lifecycle event (round started,
// contestant answer, scores, standings, ...) to watching clients.
type ArenaEventPayload struct {
	RunID string          `json:"run_id"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
