package realtime

import (
	"context"
	"encoding/json"

	"teamline/internal/domain/entity"
	"teamline/pkg/logger"
)

const EventNewMessage = "new-message"

// Envelope is the wire frame delivered to subscribed sockets.
type Envelope struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// Publisher pushes stored messages onto their conversation channel. The
// store calls it after a successful persist, never before, and at most once
// per message.
type Publisher struct {
	broker Broker
}

func NewPublisher(broker Broker) *Publisher {
	return &Publisher{broker: broker}
}

// Publish is fire-and-forget: the message is already durable and reachable
// through the fetch API, so a push failure is logged and swallowed rather
// than failing the send request.
func (p *Publisher) Publish(ctx context.Context, message *entity.Message) {
	channel, err := ChannelNameFor(message.SenderID, message.RecipientID)
	if err != nil {
		logger.Error("publisher: cannot derive channel for message %d: %v", message.ID, err)
		return
	}

	payload, err := json.Marshal(message)
	if err != nil {
		logger.Error("publisher: marshal message %d: %v", message.ID, err)
		return
	}

	frame, err := json.Marshal(Envelope{
		Event:   EventNewMessage,
		Channel: channel,
		Data:    payload,
	})
	if err != nil {
		logger.Error("publisher: marshal envelope for message %d: %v", message.ID, err)
		return
	}

	if err := p.broker.Publish(ctx, channel, frame); err != nil {
		logger.Error("publisher: push message %d to %s: %v", message.ID, channel, err)
	}
}
