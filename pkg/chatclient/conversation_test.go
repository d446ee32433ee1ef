package chatclient

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string][]Message
	gates     map[string]chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		responses: make(map[string][]Message),
		gates:     make(map[string]chan struct{}),
	}
}

func (f *fakeFetcher) FetchMessages(ctx context.Context, peerID string) ([]Message, error) {
	f.mu.Lock()
	gate := f.gates[peerID]
	response := append([]Message{}, f.responses[peerID]...)
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return response, nil
}

type fakeSubscription struct {
	mu     sync.Mutex
	closed bool
}

func (s *fakeSubscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *fakeSubscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeSubscriber struct {
	mu       sync.Mutex
	handlers map[string]func(Message)
	subs     map[string]*fakeSubscription
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{
		handlers: make(map[string]func(Message)),
		subs:     make(map[string]*fakeSubscription),
	}
}

func (s *fakeSubscriber) Subscribe(ctx context.Context, channel string, onMessage func(Message)) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &fakeSubscription{}
	s.handlers[channel] = onMessage
	s.subs[channel] = sub
	return sub, nil
}

func (s *fakeSubscriber) push(channel string, msg Message) {
	s.mu.Lock()
	handler := s.handlers[channel]
	s.mu.Unlock()
	if handler != nil {
		handler(msg)
	}
}

type scrollRecorder struct {
	mu    sync.Mutex
	calls []bool
}

func (r *scrollRecorder) record(animate bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, animate)
}

func (r *scrollRecorder) snapshot() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool{}, r.calls...)
}

func message(id int64, sender, recipient, content string) Message {
	return Message{
		ID:          id,
		SenderID:    sender,
		RecipientID: recipient,
		Content:     content,
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, int(id), time.UTC),
	}
}

func TestSelectPeerLoadsHistory(t *testing.T) {
	fetcher := newFakeFetcher()
	subscriber := newFakeSubscriber()
	scroll := &scrollRecorder{}
	fetcher.responses["u2"] = []Message{
		message(1, "u2", "u1", "hello"),
		message(2, "u1", "u2", "hi"),
	}

	conv := NewConversation("u1", fetcher, subscriber, scroll.record)
	require.NoError(t, conv.SelectPeer(context.Background(), "u2"))

	assert.Equal(t, StateReady, conv.State())
	assert.Equal(t, "u2", conv.Peer())
	require.Len(t, conv.Messages(), 2)
	assert.Equal(t, []bool{false}, scroll.snapshot(), "first render scrolls without animation")
}

func TestOwnEchoAppearsExactlyOnce(t *testing.T) {
	fetcher := newFakeFetcher()
	subscriber := newFakeSubscriber()
	conv := NewConversation("u1", fetcher, subscriber, nil)
	require.NoError(t, conv.SelectPeer(context.Background(), "u2"))

	sent := message(7, "u1", "u2", "mine")
	conv.AppendLocal(sent)

	// The sender's own publish comes back on the channel; it must not be
	// inserted a second time.
	subscriber.push("private-chat-u1-u2", sent)

	messages := conv.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, int64(7), messages[0].ID)
}

func TestPushFromPeerAppendsAndDeduplicates(t *testing.T) {
	fetcher := newFakeFetcher()
	subscriber := newFakeSubscriber()
	scroll := &scrollRecorder{}
	conv := NewConversation("u1", fetcher, subscriber, scroll.record)
	require.NoError(t, conv.SelectPeer(context.Background(), "u2"))

	incoming := message(3, "u2", "u1", "ping")
	subscriber.push("private-chat-u1-u2", incoming)
	subscriber.push("private-chat-u1-u2", incoming)

	require.Len(t, conv.Messages(), 1)
	assert.Equal(t, []bool{false, true}, scroll.snapshot(), "live arrivals scroll with animation")
}

func TestPushForAnotherConversationIgnored(t *testing.T) {
	fetcher := newFakeFetcher()
	subscriber := newFakeSubscriber()
	conv := NewConversation("u1", fetcher, subscriber, nil)
	require.NoError(t, conv.SelectPeer(context.Background(), "u2"))

	subscriber.push("private-chat-u1-u2", message(9, "u3", "u1", "wrong pair"))
	assert.Empty(t, conv.Messages())
}

func TestStaleFetchDoesNotClobberNewerSelection(t *testing.T) {
	fetcher := newFakeFetcher()
	subscriber := newFakeSubscriber()
	conv := NewConversation("u1", fetcher, subscriber, nil)

	gate := make(chan struct{})
	fetcher.mu.Lock()
	fetcher.gates["u2"] = gate
	fetcher.responses["u2"] = []Message{message(1, "u2", "u1", "old peer")}
	fetcher.responses["u3"] = []Message{message(2, "u3", "u1", "new peer")}
	fetcher.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- conv.SelectPeer(context.Background(), "u2") }()

	// Wait until the first selection is blocked in its fetch.
	require.Eventually(t, func() bool { return conv.State() == StateLoading }, time.Second, time.Millisecond)

	require.NoError(t, conv.SelectPeer(context.Background(), "u3"))
	require.Equal(t, StateReady, conv.State())

	// Now the slow fetch for u2 resolves; it must be discarded.
	close(gate)
	require.NoError(t, <-done)

	assert.Equal(t, "u3", conv.Peer())
	messages := conv.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "new peer", messages[0].Content)
}

func TestPushDuringFetchIsBufferedAndMerged(t *testing.T) {
	fetcher := newFakeFetcher()
	subscriber := newFakeSubscriber()
	conv := NewConversation("u1", fetcher, subscriber, nil)

	gate := make(chan struct{})
	inHistory := message(1, "u2", "u1", "already fetched")
	fetcher.mu.Lock()
	fetcher.gates["u2"] = gate
	fetcher.responses["u2"] = []Message{inHistory}
	fetcher.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- conv.SelectPeer(context.Background(), "u2") }()
	require.Eventually(t, func() bool { return conv.State() == StateLoading }, time.Second, time.Millisecond)

	// Two pushes land inside the fetch window: one duplicates a message the
	// fetch will return, one is genuinely new.
	subscriber.push("private-chat-u1-u2", inHistory)
	subscriber.push("private-chat-u1-u2", message(2, "u2", "u1", "while loading"))

	close(gate)
	require.NoError(t, <-done)

	messages := conv.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, int64(1), messages[0].ID)
	assert.Equal(t, int64(2), messages[1].ID)
}

func TestOwnSendDuringFetchSurvivesIntoHistory(t *testing.T) {
	fetcher := newFakeFetcher()
	subscriber := newFakeSubscriber()
	conv := NewConversation("u1", fetcher, subscriber, nil)

	gate := make(chan struct{})
	fetcher.mu.Lock()
	fetcher.gates["u2"] = gate
	fetcher.responses["u2"] = []Message{message(1, "u2", "u1", "already fetched")}
	fetcher.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- conv.SelectPeer(context.Background(), "u2") }()
	require.Eventually(t, func() bool { return conv.State() == StateLoading }, time.Second, time.Millisecond)

	// The user sends while the backlog fetch is still in flight. The fetch
	// started before the send, so its response will not contain it.
	sent := message(2, "u1", "u2", "sent mid-load")
	conv.AppendLocal(sent)

	close(gate)
	require.NoError(t, <-done)

	messages := conv.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, int64(2), messages[1].ID)

	// The echo of that send coming back on the channel still merges to one.
	subscriber.push("private-chat-u1-u2", sent)
	assert.Len(t, conv.Messages(), 2)
}

func TestPeerSwitchTearsDownSubscription(t *testing.T) {
	fetcher := newFakeFetcher()
	subscriber := newFakeSubscriber()
	conv := NewConversation("u1", fetcher, subscriber, nil)

	require.NoError(t, conv.SelectPeer(context.Background(), "u2"))
	first := subscriber.subs["private-chat-u1-u2"]

	require.NoError(t, conv.SelectPeer(context.Background(), "u3"))
	assert.True(t, first.isClosed(), "subscription must not outlive its peer selection")

	// A late push on the old channel is ignored even if the transport still
	// delivers it.
	subscriber.push("private-chat-u1-u2", message(5, "u2", "u1", "late"))
	assert.Empty(t, conv.Messages())

	conv.Close()
	assert.True(t, subscriber.subs["private-chat-u1-u3"].isClosed())
	assert.Equal(t, StateIdle, conv.State())
}
