package chathub

import (
	"log/slog"
	"strangerchat/backend/internal/config"
	"strangerchat/backend/internal/models"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocketClient реалізує інтерфейс chathub.Client поверх gorilla/websocket.
type WebSocketClient struct {
	ConnID string
	Conn   *websocket.Conn
	Hub    *ManagerService

	cfg    *config.Config
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	send   chan models.Event
}

// NewWebSocketClient wraps an upgraded connection. It is not registered with the hub
// until Run is called.
func NewWebSocketClient(hub *ManagerService, conn *websocket.Conn, cfg *config.Config, logger *slog.Logger) *WebSocketClient {
	connID := uuid.NewString()
	buffer := cfg.SendBuffer
	if buffer < 1 {
		buffer = config.DefaultSendBuffer
	}
	return &WebSocketClient{
		ConnID: connID,
		Conn:   conn,
		Hub:    hub,
		cfg:    cfg,
		logger: logger.With("conn_id", connID),
		send:   make(chan models.Event, buffer),
	}
}

func (c *WebSocketClient) GetConnID() string { return c.ConnID }

// Deliver queues ev for the write pump. A full buffer means the peer cannot keep up;
// the client is closed and the hub treats it as gone.
func (c *WebSocketClient) Deliver(ev models.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- ev:
		return true
	default:
		c.logger.Warn("send buffer full, closing connection")
		c.closeLocked()
		return false
	}
}

func (c *WebSocketClient) IsAlive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// Run registers the client with the hub and starts its pumps.
func (c *WebSocketClient) Run() {
	if err := c.Hub.Connect(c); err != nil {
		c.logger.Error("register connection", "error", err)
		c.Close()
		c.Conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// Close закриває Send канал (що зупинить writePump). readPump зупиниться сам, коли
// writePump закриє з'єднання.
func (c *WebSocketClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *WebSocketClient) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
