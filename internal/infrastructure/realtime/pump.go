package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"teamline/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

const (
	EventSubscribe             = "subscribe"
	EventUnsubscribe           = "unsubscribe"
	EventSubscriptionSucceeded = "subscription-succeeded"
	EventSubscriptionError     = "subscription-error"
)

// ClientFrame is what a connected socket may send: subscribe and unsubscribe
// requests only. Chat messages go through the REST API, never the socket.
type ClientFrame struct {
	Event   string `json:"event"`
	Channel string `json:"channel"`
	Auth    string `json:"auth,omitempty"`
}

type controlFrame struct {
	Event   string `json:"event"`
	Channel string `json:"channel"`
	Message string `json:"message,omitempty"`
}

// ReadPump consumes control frames until the socket closes, then unregisters
// the client.
func (c *Client) ReadPump(h *Hub) {
	defer func() {
		h.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("hub: read error on socket %s: %v", c.SocketID, err)
			}
			return
		}

		var frame ClientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			logger.Warn("hub: malformed frame on socket %s: %v", c.SocketID, err)
			continue
		}

		switch frame.Event {
		case EventSubscribe:
			if err := h.Subscribe(c, frame.Channel, frame.Auth); err != nil {
				c.sendControl(EventSubscriptionError, frame.Channel, err.Error())
				continue
			}
			c.sendControl(EventSubscriptionSucceeded, frame.Channel, "")
		case EventUnsubscribe:
			h.UnsubscribeChannel(c, frame.Channel)
		default:
			logger.Debug("hub: ignoring event %q on socket %s", frame.Event, c.SocketID)
		}
	}
}

func (c *Client) sendControl(event, channel, message string) {
	frame, err := json.Marshal(controlFrame{Event: event, Channel: channel, Message: message})
	if err != nil {
		return
	}
	c.Enqueue(frame)
}

// WritePump drains the send queue to the socket and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("hub: write error on socket %s: %v", c.SocketID, err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
