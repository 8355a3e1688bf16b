// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/graphrec/internal/config"
)

// Consumer tuning. Redeliveries are cheap because the journal is
// idempotent on event id, so a generous MaxDeliver only risks log
// noise, never duplicate rows.
const (
	subscriberMaxReconnects = 60
	subscriberReconnectWait = time.Second
	subscriberMaxDeliver    = 5
	subscriberAckWait       = 30 * time.Second
	subscriberMaxAckPending = 256
	subscriberCloseTimeout  = 10 * time.Second
)

// Subscriber is a durable JetStream subscription over the activity
// stream. The durable name persists the consumer position across
// restarts; DeliverAll on first creation backfills events published
// before the consumer existed.
type Subscriber struct {
	subscriber message.Subscriber
}

// NewSubscriber creates the durable activity subscriber bound to the
// configured stream. Binding is required because the activity topic is
// a wildcard, which cannot name a stream.
func NewSubscriber(cfg config.EventsConfig, url string, wmLogger watermill.LoggerAdapter) (*Subscriber, error) {
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(subscriberMaxReconnects),
		natsgo.ReconnectWait(subscriberReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				wmLogger.Error("subscriber disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			wmLogger.Info("subscriber reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	subOpts := []natsgo.SubOpt{
		natsgo.MaxDeliver(subscriberMaxDeliver),
		natsgo.MaxAckPending(subscriberMaxAckPending),
		natsgo.AckWait(subscriberAckWait),
		natsgo.DeliverAll(),
		natsgo.BindStream(cfg.Stream),
	}

	wmConfig := wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1, // journal appends are ordered per stream
		AckWaitTimeout:   subscriberAckWait,
		CloseTimeout:     subscriberCloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:         false,
			AutoProvision:    false,
			AckAsync:         false,
			SubscribeOptions: subOpts,
			DurablePrefix:    cfg.Durable,
		},
	}

	sub, err := wmNats.NewSubscriber(wmConfig, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}

	return &Subscriber{subscriber: sub}, nil
}

// Subscribe returns the message channel for topic. The channel closes
// on context cancellation or subscriber close.
func (s *Subscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return s.subscriber.Subscribe(ctx, topic)
}

// Close shuts the subscription down.
func (s *Subscriber) Close() error {
	return s.subscriber.Close()
}
