package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamline/internal/domain/entity"
)

func TestPublisherEmitsNewMessageOnPairChannel(t *testing.T) {
	broker := newFakeBroker()
	publisher := NewPublisher(broker)

	msg := &entity.Message{
		ID:          42,
		SenderID:    "u2",
		RecipientID: "u1",
		Content:     "hi",
		Attachments: []entity.Attachment{},
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	publisher.Publish(context.Background(), msg)

	frames := broker.published["private-chat-u1-u2"]
	require.Len(t, frames, 1)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(frames[0], &envelope))
	assert.Equal(t, EventNewMessage, envelope.Event)
	assert.Equal(t, "private-chat-u1-u2", envelope.Channel)

	var decoded entity.Message
	require.NoError(t, json.Unmarshal(envelope.Data, &decoded))
	assert.Equal(t, int64(42), decoded.ID)
	assert.Equal(t, "hi", decoded.Content)
}

func TestPublisherSwallowsBadInput(t *testing.T) {
	broker := newFakeBroker()
	publisher := NewPublisher(broker)

	// No channel can be derived; nothing is published and nothing panics.
	publisher.Publish(context.Background(), &entity.Message{ID: 1, SenderID: "", RecipientID: "u1"})
	assert.Empty(t, broker.published)
}
