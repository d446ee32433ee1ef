package realtime

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

const subjectPrefix = "chat"

// Broker carries channel events between the API process and every hub
// instance. Delivery is best-effort broadcast; durability lives in the
// message store, not here.
type Broker interface {
	Publish(ctx context.Context, channel string, data []byte) error
	// Subscribe invokes handler for every event published to the channel and
	// returns a function that drops the subscription.
	Subscribe(channel string, handler func(data []byte)) (func() error, error)
	Close()
}

type NatsBroker struct {
	nc *nats.Conn
}

func NewNatsBroker(url string) (*NatsBroker, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NatsBroker{nc: nc}, nil
}

func (b *NatsBroker) Publish(ctx context.Context, channel string, data []byte) error {
	if err := b.nc.Publish(subject(channel), data); err != nil {
		return fmt.Errorf("failed to publish to subject %q: %w", subject(channel), err)
	}
	return nil
}

func (b *NatsBroker) Subscribe(channel string, handler func(data []byte)) (func() error, error) {
	sub, err := b.nc.Subscribe(subject(channel), func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to subject %q: %w", subject(channel), err)
	}
	return sub.Unsubscribe, nil
}

func (b *NatsBroker) Close() {
	if b.nc != nil {
		b.nc.Close()
	}
}

func subject(channel string) string {
	return subjectPrefix + "." + channel
}
