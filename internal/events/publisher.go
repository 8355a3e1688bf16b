// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package events

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/graphrec/internal/config"
	"github.com/tomtom215/graphrec/internal/metrics"
)

// Publisher emits activity events after a mutation's synchronous
// critical path has completed. Publishing is observability, not
// correctness: implementations log and count failures but never
// surface them to the HTTP caller.
type Publisher interface {
	PublishActivity(ctx context.Context, event *ActivityEvent)
	Close() error
}

// NopPublisher discards events. It stands in when the pipeline is
// disabled so mutation paths never branch on configuration.
type NopPublisher struct{}

// PublishActivity discards the event.
func (NopPublisher) PublishActivity(_ context.Context, _ *ActivityEvent) {}

// Close is a no-op.
func (NopPublisher) Close() error { return nil }

// Connection tuning for the publisher's NATS client. The broker is
// in-process, so reconnects are about surviving its supervised
// restarts, not network flaps.
const (
	publisherMaxReconnects = 60
	publisherReconnectWait = time.Second
)

// NATSPublisher publishes activity events to the JetStream activity
// stream through Watermill. The event id rides as Nats-Msg-Id so the
// stream's duplicate window absorbs retried publishes.
type NATSPublisher struct {
	publisher message.Publisher
	prefix    string
	logger    zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewNATSPublisher connects a Watermill NATS publisher to the embedded
// broker at url. The stream must already exist; the publisher never
// auto-provisions.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewNATSPublisher(cfg config.EventsConfig, url string, wmLogger watermill.LoggerAdapter, logger zerolog.Logger) (*NATSPublisher, error) {
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(publisherMaxReconnects),
		natsgo.ReconnectWait(publisherReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				wmLogger.Error("publisher disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			wmLogger.Info("publisher reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false, // stream is provisioned by StreamManager
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	return &NATSPublisher{
		publisher: pub,
		prefix:    cfg.SubjectPrefix,
		logger:    logger.With().Str("component", "event_publisher").Logger(),
	}, nil
}

// PublishActivity validates, serializes, and publishes the event to its
// action subject. Failures are logged and counted, never returned; a
// lost event costs a journal row and a feed entry, not user data.
func (p *NATSPublisher) PublishActivity(_ context.Context, event *ActivityEvent) {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return
	}

	data, err := MarshalEvent(event)
	if err != nil {
		metrics.RecordNATSPublish(err)
		p.logger.Error().Err(err).Str("action", event.Action).Msg("dropping unencodable activity event")
		return
	}

	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set(natsgo.MsgIdHdr, event.EventID)
	msg.Metadata.Set("action", event.Action)
	msg.Metadata.Set("user_id", strconv.FormatInt(event.UserID, 10))

	err = p.publisher.Publish(SubjectFor(p.prefix, event.Action), msg)
	metrics.RecordNATSPublish(err)
	if err != nil {
		p.logger.Error().Err(err).
			Str("event_id", event.EventID).
			Str("action", event.Action).
			Msg("activity event publish failed")
	}
}

// Close shuts the publisher down. Subsequent publishes are dropped.
func (p *NATSPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
