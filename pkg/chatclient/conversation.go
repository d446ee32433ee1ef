package chatclient

import (
	"context"
	"fmt"
	"sync"

	"teamline/internal/infrastructure/realtime"
	"teamline/pkg/logger"
)

// Fetcher supplies the authoritative conversation backlog.
type Fetcher interface {
	FetchMessages(ctx context.Context, peerID string) ([]Message, error)
}

// Subscription is a live binding to one conversation channel.
type Subscription interface {
	Close()
}

// Subscriber delivers pushed messages for a channel until the subscription
// is closed.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string, onMessage func(Message)) (Subscription, error)
}

// ScrollFunc anchors the view to the latest message. animate is false for
// the initial render of a newly selected conversation, true for messages
// arriving while it stays open.
type ScrollFunc func(animate bool)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
)

// Conversation reconciles the two message sources for the currently selected
// peer: the REST backlog (authoritative, replaces state wholesale) and the
// live push stream (append-only once Ready). It guarantees a duplicate-free
// list in store order.
type Conversation struct {
	currentUserID string
	fetcher       Fetcher
	subscriber    Subscriber
	scroll        ScrollFunc

	mu       sync.Mutex
	state    State
	peerID   string
	epoch    int
	messages []Message
	buffered []Message
	sub      Subscription
}

func NewConversation(currentUserID string, fetcher Fetcher, subscriber Subscriber, scroll ScrollFunc) *Conversation {
	if scroll == nil {
		scroll = func(bool) {}
	}
	return &Conversation{
		currentUserID: currentUserID,
		fetcher:       fetcher,
		subscriber:    subscriber,
		scroll:        scroll,
	}
}

// SelectPeer switches the view to a new peer: tears down the previous
// subscription, subscribes to the pair's channel, then fetches the backlog.
// The subscription opens before the fetch so pushes landing during the
// in-flight window are buffered and merged instead of lost. A fetch that
// resolves after the user has moved on to another peer is discarded.
func (v *Conversation) SelectPeer(ctx context.Context, peerID string) error {
	if peerID == "" {
		return fmt.Errorf("peer id must not be empty")
	}

	channel, err := realtime.ChannelNameFor(v.currentUserID, peerID)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.epoch++
	epoch := v.epoch
	v.teardownLocked()
	v.state = StateLoading
	v.peerID = peerID
	v.messages = nil
	v.buffered = nil
	v.mu.Unlock()

	sub, err := v.subscriber.Subscribe(ctx, channel, func(msg Message) {
		v.onPush(epoch, msg)
	})
	if err != nil {
		// The backlog still loads; live updates resume on the next explicit
		// re-selection of this peer.
		logger.Warn("conversation: subscribe %s failed: %v", channel, err)
	} else {
		v.mu.Lock()
		if v.epoch == epoch {
			v.sub = sub
			v.mu.Unlock()
		} else {
			v.mu.Unlock()
			sub.Close()
		}
	}

	history, err := v.fetcher.FetchMessages(ctx, peerID)
	if err != nil {
		v.mu.Lock()
		if v.epoch == epoch {
			v.state = StateIdle
			v.teardownLocked()
		}
		v.mu.Unlock()
		return err
	}

	v.mu.Lock()
	if v.epoch != epoch {
		// Stale response: another peer was selected while this fetch was in
		// flight. Its state must not be clobbered.
		v.mu.Unlock()
		return nil
	}

	v.messages = history
	for _, msg := range v.buffered {
		v.appendLocked(msg)
	}
	v.buffered = nil
	v.state = StateReady
	v.mu.Unlock()

	v.scroll(false)
	return nil
}

// AppendLocal inserts a message the current user just sent, taken from the
// send response. Their own publish echo is ignored by the merge rule, so
// this is the only path by which own messages enter the list. A send that
// lands while the backlog is still loading is buffered like a push, so it
// survives into the Ready list even when the fetch started before the send.
func (v *Conversation) AppendLocal(msg Message) {
	v.mu.Lock()
	if !v.belongsToCurrentPeer(msg) {
		v.mu.Unlock()
		return
	}
	if v.state == StateLoading {
		v.buffered = append(v.buffered, msg)
		v.mu.Unlock()
		return
	}
	if v.state != StateReady {
		v.mu.Unlock()
		return
	}
	added := v.appendLocked(msg)
	v.mu.Unlock()

	if added {
		v.scroll(true)
	}
}

func (v *Conversation) onPush(epoch int, msg Message) {
	v.mu.Lock()
	if v.epoch != epoch || !v.belongsToCurrentPeer(msg) {
		v.mu.Unlock()
		return
	}

	// Own messages arrive via AppendLocal from the send response; dropping
	// the echo here keeps them from appearing twice.
	if msg.SenderID == v.currentUserID {
		v.mu.Unlock()
		return
	}

	if v.state == StateLoading {
		v.buffered = append(v.buffered, msg)
		v.mu.Unlock()
		return
	}

	added := v.appendLocked(msg)
	v.mu.Unlock()

	if added {
		v.scroll(true)
	}
}

// appendLocked appends unless a message with the same id is already present.
// Push order matches store order for a single live conversation, so no
// re-sort happens here.
func (v *Conversation) appendLocked(msg Message) bool {
	for _, existing := range v.messages {
		if existing.ID == msg.ID {
			return false
		}
	}
	v.messages = append(v.messages, msg)
	return true
}

func (v *Conversation) belongsToCurrentPeer(msg Message) bool {
	if v.peerID == "" {
		return false
	}
	return (msg.SenderID == v.currentUserID && msg.RecipientID == v.peerID) ||
		(msg.SenderID == v.peerID && msg.RecipientID == v.currentUserID)
}

// Messages returns a copy of the current list in display order.
func (v *Conversation) Messages() []Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Message, len(v.messages))
	copy(out, v.messages)
	return out
}

func (v *Conversation) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *Conversation) Peer() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.peerID
}

// Close tears down the active subscription and returns to Idle.
func (v *Conversation) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.epoch++
	v.teardownLocked()
	v.state = StateIdle
	v.peerID = ""
	v.messages = nil
	v.buffered = nil
}

func (v *Conversation) teardownLocked() {
	if v.sub != nil {
		v.sub.Close()
		v.sub = nil
	}
}
