package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Hub manages WebSocket connections and broadcasts arena run events to
// subscribed clients. One browser tab is one connection; a connection
// may watch any number of runs.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]*Connection // connection_id -> connection
	runs        map[string][]uuid.UUID    // run_id -> []connection_id
	logger      zerolog.Logger
}

// NewHub creates a new WebSocket hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID]*Connection),
		runs:        make(map[string][]uuid.UUID),
		logger:      logger,
	}
}

// RegisterConnection adds a connection under a fresh id.
func (h *Hub) RegisterConnection(connID uuid.UUID, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, exists := h.connections[connID]; exists {
		old.Close()
	}
	h.connections[connID] = conn
	h.logger.Info().Str("conn_id", connID.String()).Msg("connection registered")
}

// UnregisterConnection removes a connection and all its run
// subscriptions.
func (h *Hub) UnregisterConnection(connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, exists := h.connections[connID]; exists {
		conn.Close()
		delete(h.connections, connID)
		h.logger.Info().Str("conn_id", connID.String()).Msg("connection unregistered")
	}

	for runID, conns := range h.runs {
		for i, id := range conns {
			if id == connID {
				h.runs[runID] = append(conns[:i], conns[i+1:]...)
				break
			}
		}
	}
}

// SubscribeRun starts delivering a run's events to a connection.
func (h *Hub) SubscribeRun(runID string, connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.runs[runID]
	for _, id := range conns {
		if id == connID {
			return // already subscribed
		}
	}
	h.runs[runID] = append(conns, connID)
}

// UnsubscribeRun stops delivering a run's events to a connection.
func (h *Hub) UnsubscribeRun(runID string, connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.runs[runID]
	for i, id := range conns {
		if id == connID {
			h.runs[runID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
}

// BroadcastToRun sends a message to every connection watching a run.
func (h *Hub) BroadcastToRun(runID string, msg Message) error {
	h.mu.RLock()
	conns := h.runs[runID]
	h.mu.RUnlock()

	var firstErr error
	for _, connID := range conns {
		if err := h.SendToConnection(connID, msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// BroadcastAll sends a message to every connected client.
func (h *Hub) BroadcastAll(msg Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var firstErr error
	for connID, conn := range h.connections {
		if err := conn.Send(msg); err != nil && firstErr == nil {
			firstErr = err
			h.logger.Warn().Err(err).Str("conn_id", connID.String()).Msg("broadcast_all_send_failed")
		}
	}
	return firstErr
}

// SendToConnection delivers a message to one connection.
func (h *Hub) SendToConnection(connID uuid.UUID, msg Message) error {
	h.mu.RLock()
	conn, exists := h.connections[connID]
	h.mu.RUnlock()

	if !exists {
		return ErrConnectionNotFound
	}
	return conn.Send(msg)
}

// Connection represents a WebSocket connection with send queue.
type Connection struct {
	conn   *websocket.Conn
	sendCh chan Message
	mu     sync.Mutex
	closed bool
	logger zerolog.Logger
}

// NewConnection wraps a WebSocket connection.
func NewConnection(conn *websocket.Conn, logger zerolog.Logger) *Connection {
	return &Connection{
		conn:   conn,
		sendCh: make(chan Message, 256),
		logger: logger,
	}
}

// Send queues a message for delivery.
func (c *Connection) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.sendCh <- msg:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close shuts down the connection.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.sendCh)
	c.conn.Close()
}

// WritePump sends messages from the send queue.
func (c *Connection) WritePump() {
	defer c.conn.Close()

	for msg := range c.sendCh {
		if err := c.conn.WriteJSON(msg); err != nil {
			c.logger.Warn().Err(err).Msg("write error")
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ReadPump receives messages and calls the handler.
func (c *Connection) ReadPump(handler func(Message) error) {
	defer c.conn.Close()

	// Set read deadline to 60 seconds, extend on pong
	readDeadline := time.Now().Add(60 * time.Second)
	c.conn.SetReadDeadline(readDeadline)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("read error")
			}
			break
		}

		if err := handler(msg); err != nil {
			c.logger.Warn().Err(err).Msg("message handler error")
		}
	}
}

var (
	ErrConnectionNotFound = &Error{Code: "connection_not_found", Message: "Connection not found"}
	ErrConnectionClosed   = &Error{Code: "connection_closed", Message: "Connection is closed"}
	ErrSendQueueFull      = &Error{Code: "send_queue_full", Message: "Send queue is full"}
)

type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
