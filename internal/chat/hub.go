// Package chat relays private messages between connected users over websockets.
package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roomieradar/roomieradar/internal/errors"
	"github.com/roomieradar/roomieradar/internal/interfaces"
	"github.com/roomieradar/roomieradar/internal/telemetry"
)

// Event types exchanged with the browser.
const (
	EventConnected      = "connected"
	EventPrivateMessage = "private_message"
	EventNewMessage     = "new_message"
	EventMessageSent    = "message_sent"
	EventError          = "error"
)

const (
	sendBufferSize = 16
	maxFrameSize   = 64 << 10
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	writeWait      = 10 * time.Second
)

// InboundMessage is a frame sent by a client.
type InboundMessage struct {
	Type        string `json:"type"`
	RecipientID string `json:"recipient_id"`
	Message     string `json:"message"`
}

// ServerEvent is a frame pushed to a client.
type ServerEvent struct {
	Type string      `json:"type"`
	From string      `json:"from,omitempty"`
	Data interface{} `json:"data,omitempty"`
}

// Client is one websocket connection. A user may hold several.
type Client struct {
	userID string
	conn   *websocket.Conn
	send   chan ServerEvent
}

type Hub struct {
	clients  map[string]map[*Client]bool
	mu       sync.RWMutex
	messages interfaces.MessagingServiceInterface
	presence interfaces.PresenceTracker
}

func NewHub(messages interfaces.MessagingServiceInterface, presence interfaces.PresenceTracker) *Hub {
	return &Hub{
		clients:  make(map[string]map[*Client]bool),
		messages: messages,
		presence: presence,
	}
}

// NewUpgrader accepts connections from allowedOrigin only; "*" or an empty
// value accepts any origin.
func NewUpgrader(allowedOrigin string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return allowedOrigin == "" || allowedOrigin == "*" || origin == "" || origin == allowedOrigin
		},
	}
}

// ServeConn registers conn for userID and pumps frames until the peer goes
// away. It blocks.
func (h *Hub) ServeConn(ctx context.Context, conn *websocket.Conn, userID string) {
	ctx = telemetry.WithUserID(ctx, userID)
	client := &Client{
		userID: userID,
		conn:   conn,
		send:   make(chan ServerEvent, sendBufferSize),
	}

	h.register(ctx, client)
	client.send <- ServerEvent{Type: EventConnected}

	go h.writePump(client)
	h.readPump(ctx, client)
}

func (h *Hub) register(ctx context.Context, c *Client) {
	h.mu.Lock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*Client]bool)
	}
	h.clients[c.userID][c] = true
	connections := len(h.clients[c.userID])
	h.mu.Unlock()

	if err := h.presence.SetOnline(ctx, c.userID); err != nil {
		telemetry.GetContextualLogger(ctx).WithError(err).Warn("Failed to mark user online")
	}
	telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
		"user_id":     c.userID,
		"connections": connections,
	}).Info("Chat client connected")
}

func (h *Hub) unregister(ctx context.Context, c *Client) {
	h.mu.Lock()
	peers, ok := h.clients[c.userID]
	if !ok || !peers[c] {
		h.mu.Unlock()
		return
	}
	delete(peers, c)
	close(c.send)
	lastConnection := len(peers) == 0
	if lastConnection {
		delete(h.clients, c.userID)
	}
	h.mu.Unlock()

	if lastConnection {
		if err := h.presence.SetOffline(context.WithoutCancel(ctx), c.userID); err != nil {
			telemetry.GetContextualLogger(ctx).WithError(err).Warn("Failed to mark user offline")
		}
	}
	telemetry.GetContextualLogger(ctx).WithField("user_id", c.userID).Info("Chat client disconnected")
}

// SendToUser queues evt on every connection userID holds. Full buffers drop
// the event. It reports whether any connection accepted it.
func (h *Hub) SendToUser(userID string, evt ServerEvent) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := false
	for c := range h.clients[userID] {
		select {
		case c.send <- evt:
			delivered = true
		default:
		}
	}
	return delivered
}

// Close drops every connection; read pumps then unregister their clients.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, peers := range h.clients {
		for c := range peers {
			_ = c.conn.Close()
		}
	}
}

func (h *Hub) readPump(ctx context.Context, c *Client) {
	defer func() {
		h.unregister(ctx, c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				telemetry.GetContextualLogger(ctx).WithError(err).Warn("Chat connection closed unexpectedly")
			}
			return
		}
		h.dispatch(ctx, c, payload)
	}
}

func (h *Hub) writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) dispatch(ctx context.Context, c *Client, payload []byte) {
	var msg InboundMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		h.reply(c, ServerEvent{Type: EventError, Data: "invalid message format"})
		return
	}

	switch msg.Type {
	case EventPrivateMessage:
		h.deliver(ctx, c, msg)
	default:
		h.reply(c, ServerEvent{Type: EventError, Data: "unknown message type"})
	}
}

// deliver persists first; an offline recipient reads the message from history.
func (h *Hub) deliver(ctx context.Context, c *Client, msg InboundMessage) {
	logger := telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
		"sender_id":    c.userID,
		"recipient_id": msg.RecipientID,
		"operation":    "chat_private_message",
	})

	saved, err := h.messages.SendMessage(ctx, c.userID, msg.RecipientID, msg.Message)
	if err != nil {
		logger.WithError(err).Warn("Failed to store chat message")
		reason := "cannot send message"
		if appErr, ok := errors.AsAppError(err); ok && appErr.Type == errors.ErrorTypeValidation {
			reason = appErr.Message
		}
		h.reply(c, ServerEvent{Type: EventError, Data: reason})
		return
	}

	delivered := h.SendToUser(saved.RecipientID, ServerEvent{Type: EventNewMessage, From: c.userID, Data: saved})
	h.reply(c, ServerEvent{Type: EventMessageSent, Data: saved})
	logger.WithField("delivered", delivered).Debug("Chat message relayed")
}

func (h *Hub) reply(c *Client, evt ServerEvent) {
	select {
	case c.send <- evt:
	default:
	}
}
