package arena

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	httperrors "github.com/modelarena/arena-platform/pkg/http/errors"
	"github.com/modelarena/arena-platform/pkg/http/ws"
)

// WSHandler bridges arena run events onto the WebSocket hub and lets
// browser clients subscribe to runs they are watching.
type WSHandler struct {
	hub      *ws.Hub
	upgrader *websocket.Upgrader
	logger   zerolog.Logger
}

func NewWSHandler(hub *ws.Hub, upgrader *websocket.Upgrader, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:      hub,
		upgrader: upgrader,
		logger:   logger.With().Str("component", "arena_ws").Logger(),
	}
}

var _ EventSink = (*WSHandler)(nil)

// Publish implements EventSink: one arena event fans out to every
// connection subscribed to the run. Delivery failures are logged and
// dropped; the round must not stall on a slow browser tab.
func (h *WSHandler) Publish(runID string, event Event) {
	data, err := json.Marshal(event.Payload)
	if err != nil {
		h.logger.Warn().Err(err).Str("event", event.Type).Msg("marshal event payload failed")
		return
	}
	payload, err := json.Marshal(ws.ArenaEventPayload{
		RunID: runID,
		Event: event.Type,
		Data:  data,
	})
	if err != nil {
		return
	}
	if err := h.hub.BroadcastToRun(runID, ws.Message{Type: ws.TypeArenaEvent, Payload: payload}); err != nil {
		h.logger.Warn().Err(err).Str("run_id", runID).Msg("broadcast failed")
	}
}

// HandleWebSocket upgrades the connection and services subscribe /
// unsubscribe messages until the client goes away.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	connID := uuid.New()
	wrapped := ws.NewConnection(conn, h.logger)
	h.hub.RegisterConnection(connID, wrapped)
	go wrapped.WritePump()

	wrapped.ReadPump(func(msg ws.Message) error {
		switch msg.Type {
		case ws.TypeSubscribeRun:
			var payload ws.SubscribeRunPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.RunID == "" {
				return h.sendError(connID, httperrors.ErrCodeInvalidPayload, "subscribe_run requires run_id")
			}
			h.hub.SubscribeRun(payload.RunID, connID)
			return nil
		case ws.TypeUnsubscribeRun:
			var payload ws.UnsubscribeRunPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.RunID == "" {
				return h.sendError(connID, httperrors.ErrCodeInvalidPayload, "unsubscribe_run requires run_id")
			}
			h.hub.UnsubscribeRun(payload.RunID, connID)
			return nil
		case ws.TypePing:
			return h.hub.SendToConnection(connID, ws.Message{Type: ws.TypePong})
		default:
			return h.sendError(connID, httperrors.ErrCodeUnknownMessageType, "unsupported message type: "+msg.Type)
		}
	})

	h.hub.UnregisterConnection(connID)
}

func (h *WSHandler) sendError(connID uuid.UUID, code, message string) error {
	payload, err := json.Marshal(ws.ErrorPayload{Code: code, Message: message})
	if err != nil {
		return err
	}
	return h.hub.SendToConnection(connID, ws.Message{Type: ws.TypeError, Payload: payload})
}
