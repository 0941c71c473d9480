package ws

import (
	"log/slog"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Event is the envelope pushed to a connected dashboard.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// conn is the slice of *websocket.Conn the hub needs; tests substitute fakes.
type conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub keeps at most one live-update connection per user. It is constructed in
// main and injected into the services that broadcast, never a package global.
type Hub struct {
	mu      sync.Mutex
	clients map[uuid.UUID]conn
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uuid.UUID]conn)}
}

// Register stores the connection for a user. An existing connection for the
// same user (a second tab, a reconnect) is closed rather than orphaned.
func (h *Hub) Register(userID uuid.UUID, c conn) {
	h.mu.Lock()
	old := h.clients[userID]
	h.clients[userID] = c
	h.mu.Unlock()

	if old != nil {
		old.Close()
	}
	slog.Info("websocket connected", "user_id", userID)
}

// Unregister removes the connection only if it is still the registered one,
// so a replaced socket's close does not evict its successor.
func (h *Hub) Unregister(userID uuid.UUID, c conn) {
	h.mu.Lock()
	if h.clients[userID] == c {
		delete(h.clients, userID)
	}
	h.mu.Unlock()
	slog.Info("websocket disconnected", "user_id", userID)
}

// Broadcast sends one event to the user's connection, if any. Best effort: a
// write failure drops the connection.
func (h *Hub) Broadcast(userID uuid.UUID, eventType string, data any) {
	h.mu.Lock()
	c := h.clients[userID]
	h.mu.Unlock()

	if c == nil {
		return
	}
	if err := c.WriteJSON(Event{Type: eventType, Data: data}); err != nil {
		slog.Error("websocket send failed", "user_id", userID, "error", err)
		h.Unregister(userID, c)
		c.Close()
	}
}

// Connected reports whether a user currently has a live connection.
func (h *Hub) Connected(userID uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clients[userID] != nil
}

// UpgradeRequired gates the websocket route on an actual upgrade request.
func UpgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler upgrades the connection and parks it in the hub until it closes.
// The user identifier travels as a query parameter, matching the dashboard
// client.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		userID, err := uuid.Parse(c.Query("userId"))
		if err != nil {
			c.Close()
			return
		}

		h.Register(userID, c)
		defer h.Unregister(userID, c)

		// Drain reads until the peer goes away; the dashboard never sends
		// anything meaningful upstream.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	})
}
