package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/unclebandit/adsadmin-backend/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client is one WebSocket connection attached to the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu           sync.RWMutex
	unsubscribed map[string]bool
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, 256),
		unsubscribed: map[string]bool{},
	}
}

// wants reports whether the client still receives envelopes on channel.
// Clients start subscribed to every channel.
func (c *Client) wants(channel string) bool {
	if channel == "" {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.unsubscribed[channel]
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn().Err(err).Msg("unexpected websocket close")
			}
			return
		}

		env, err := Decode(data)
		if err != nil {
			logging.Debug().Err(err).Msg("ignoring malformed client message")
			continue
		}
		switch e := env.(type) {
		case Subscribe:
			c.mu.Lock()
			delete(c.unsubscribed, e.Channel)
			c.mu.Unlock()
		case Unsubscribe:
			c.mu.Lock()
			c.unsubscribed[e.Channel] = true
			c.mu.Unlock()
		case CampaignUpdate, AnalyticsUpdate, ClientUpdate, Unknown:
			// server-push only
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
