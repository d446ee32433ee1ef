package realtime

import (
	"sync"

	"github.com/gorilla/websocket"

	"teamline/pkg/errors"
	"teamline/pkg/logger"
)

// Client is one websocket connection. A user with several tabs open holds
// several clients, each with its own socket id.
type Client struct {
	SocketID string
	UserID   string
	Conn     *websocket.Conn
	Send     chan []byte

	mu     sync.Mutex
	closed bool
}

// Enqueue queues a frame for delivery. It returns false when the client is
// already unregistered or its queue is full; it never blocks. All writes to
// Send go through here so a concurrent Unregister cannot close the channel
// mid-send.
func (c *Client) Enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// closeSend closes the send queue exactly once, signalling WritePump to
// drain and exit.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

type channelState struct {
	members     map[*Client]bool
	unsubscribe func() error
}

// Hub binds sockets to channels and bridges the broker to them. Each channel
// holds exactly one broker subscription while it has local members; events
// always travel through the broker so every hub instance fans out the same
// stream.
type Hub struct {
	broker     Broker
	authorizer *Authorizer

	mutex    sync.RWMutex
	clients  map[string]*Client
	channels map[string]*channelState
}

func NewHub(broker Broker, authorizer *Authorizer) *Hub {
	return &Hub{
		broker:     broker,
		authorizer: authorizer,
		clients:    make(map[string]*Client),
		channels:   make(map[string]*channelState),
	}
}

func (h *Hub) Register(client *Client) {
	h.mutex.Lock()
	h.clients[client.SocketID] = client
	h.mutex.Unlock()
	logger.Info("hub: socket %s registered for user %s", client.SocketID, client.UserID)
}

// Unregister removes the client and drops every channel membership it holds.
func (h *Hub) Unregister(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client.SocketID]; !ok {
		return
	}
	delete(h.clients, client.SocketID)
	client.closeSend()

	for channel, state := range h.channels {
		if state.members[client] {
			delete(state.members, client)
			h.reapChannelLocked(channel, state)
		}
	}
	logger.Info("hub: socket %s unregistered", client.SocketID)
}

// Subscribe binds the client to the channel after re-verifying the signed
// grant. The first local member opens the broker subscription.
func (h *Hub) Subscribe(client *Client, channel, auth string) error {
	if !h.authorizer.Verify(client.SocketID, channel, auth) {
		return errors.Forbidden("Invalid subscription grant", nil)
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	state, ok := h.channels[channel]
	if !ok {
		state = &channelState{members: make(map[*Client]bool)}
		unsubscribe, err := h.broker.Subscribe(channel, func(data []byte) {
			h.fanOut(channel, data)
		})
		if err != nil {
			return err
		}
		state.unsubscribe = unsubscribe
		h.channels[channel] = state
	}

	state.members[client] = true
	return nil
}

func (h *Hub) UnsubscribeChannel(client *Client, channel string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	state, ok := h.channels[channel]
	if !ok || !state.members[client] {
		return
	}
	delete(state.members, client)
	h.reapChannelLocked(channel, state)
}

// reapChannelLocked drops the broker subscription once the last local member
// leaves. Caller holds the write lock.
func (h *Hub) reapChannelLocked(channel string, state *channelState) {
	if len(state.members) > 0 {
		return
	}
	delete(h.channels, channel)
	if state.unsubscribe != nil {
		if err := state.unsubscribe(); err != nil {
			logger.Warn("hub: unsubscribe %s: %v", channel, err)
		}
	}
}

// SubscriberCount is used by tests and the health endpoint.
func (h *Hub) SubscriberCount(channel string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	state, ok := h.channels[channel]
	if !ok {
		return 0
	}
	return len(state.members)
}

func (h *Hub) fanOut(channel string, data []byte) {
	// Sends never block; a full queue marks the socket as slow instead.
	var slow []*Client

	h.mutex.RLock()
	if state, ok := h.channels[channel]; ok {
		for client := range state.members {
			if !client.Enqueue(data) {
				slow = append(slow, client)
			}
		}
	}
	h.mutex.RUnlock()

	for _, client := range slow {
		logger.Warn("hub: dropping slow socket %s on %s", client.SocketID, channel)
		h.Unregister(client)
	}
}
