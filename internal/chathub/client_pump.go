package chathub

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

// readPump читає події з WebSocket і передає їх у хаб.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.Disconnect(c.ConnID)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("error reading message", "error", err)
			}
			break
		}

		if err := c.Hub.Dispatch(c.ConnID, message); err != nil {
			// Stale references are routine (partner already gone); malformed frames are
			// worth a warning. Neither is reported to the client.
			if errors.Is(err, ErrNoSession) || errors.Is(err, ErrNoRoom) {
				c.logger.Debug("event ignored", "error", err)
			} else {
				c.logger.Warn("event dropped", "error", err)
			}
		}
	}
}

// writePump читає події з каналу send і записує їх у WebSocket, по одному JSON-кадру
// на подію.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod())

	defer func() {
		ticker.Stop()
		c.Close()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				// Канал закрито хабом, закриваємо з'єднання WS
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(ev); err != nil {
				c.logger.Debug("write failed", "event", ev.Type, "error", err)
				return
			}

		case <-ticker.C:
			// Надсилаємо Ping для підтримки з'єднання активним
			c.Conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
