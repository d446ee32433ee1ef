package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"teamline/internal/infrastructure/realtime"
	"teamline/pkg/logger"
)

// Socket is the live push transport: one websocket connection multiplexing
// any number of private channel subscriptions. Subscribing fetches a signed
// grant from the auth endpoint first; the server re-verifies it before
// binding the channel.
type Socket struct {
	api *API

	mu       sync.Mutex
	conn     *websocket.Conn
	socketID string
	handlers map[string]func(Message)
	closed   bool
}

// Dial connects and waits for the server to assign a socket id.
func Dial(ctx context.Context, baseURL, token string, api *API) (*Socket, error) {
	wsURL, err := websocketURL(baseURL, token)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}

	var hello struct {
		Event string `json:"event"`
		Data  struct {
			SocketID string `json:"socket_id"`
		} `json:"data"`
	}
	if err := conn.ReadJSON(&hello); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read connection frame: %w", err)
	}
	if hello.Event != "connection-established" || hello.Data.SocketID == "" {
		conn.Close()
		return nil, fmt.Errorf("unexpected connection frame %q", hello.Event)
	}

	s := &Socket{
		api:      api,
		conn:     conn,
		socketID: hello.Data.SocketID,
		handlers: make(map[string]func(Message)),
	}
	go s.readLoop()
	return s, nil
}

type socketSubscription struct {
	socket  *Socket
	channel string
}

func (s *socketSubscription) Close() {
	s.socket.unsubscribe(s.channel)
}

// Subscribe implements Subscriber for Conversation.
func (s *Socket) Subscribe(ctx context.Context, channel string, onMessage func(Message)) (Subscription, error) {
	auth, err := s.api.AuthorizeChannel(ctx, s.socketID, channel)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("socket closed")
	}
	s.handlers[channel] = onMessage
	err = s.conn.WriteJSON(realtime.ClientFrame{
		Event:   realtime.EventSubscribe,
		Channel: channel,
		Auth:    auth,
	})
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return &socketSubscription{socket: s, channel: channel}, nil
}

func (s *Socket) unsubscribe(channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers, channel)
	if s.closed {
		return
	}
	if err := s.conn.WriteJSON(realtime.ClientFrame{
		Event:   realtime.EventUnsubscribe,
		Channel: channel,
	}); err != nil {
		logger.Warn("socket: unsubscribe %s: %v", channel, err)
	}
}

func (s *Socket) readLoop() {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			s.closed = true
			s.mu.Unlock()
			logger.Warn("socket: connection closed: %v", err)
			return
		}

		var frame realtime.Envelope
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		if frame.Event != realtime.EventNewMessage {
			continue
		}

		var msg Message
		if err := json.Unmarshal(frame.Data, &msg); err != nil {
			logger.Warn("socket: bad message payload on %s: %v", frame.Channel, err)
			continue
		}

		s.mu.Lock()
		handler := s.handlers[frame.Channel]
		s.mu.Unlock()
		if handler != nil {
			handler(msg)
		}
	}
}

func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

func websocketURL(baseURL, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
