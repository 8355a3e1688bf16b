// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/graphrec/internal/metrics"
	"github.com/tomtom215/graphrec/internal/models"
)

// MessageSource abstracts the subscription so the consumer can be
// tested against an in-memory channel.
type MessageSource interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

// Journal persists activity entries. Implemented by the database layer;
// the append is idempotent on event id, which makes JetStream
// redeliveries harmless.
type Journal interface {
	AppendActivity(ctx context.Context, entry *models.ActivityEntry) (bool, error)
}

// Broadcaster fans an event out to connected dashboards. Implemented by
// the WebSocket hub.
type Broadcaster interface {
	BroadcastActivity(event interface{})
}

// Consumer drains the activity stream: each event is journaled, counted,
// and broadcast. It runs as a supervised service; Run blocks until the
// context is canceled.
type Consumer struct {
	source  MessageSource
	topic   string
	journal Journal
	hub     Broadcaster
	logger  zerolog.Logger
}

// NewConsumer wires the activity consumer. hub may be nil when no feed
// is attached.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewConsumer(source MessageSource, topic string, journal Journal, hub Broadcaster, logger zerolog.Logger) *Consumer {
	return &Consumer{
		source:  source,
		topic:   topic,
		journal: journal,
		hub:     hub,
		logger:  logger.With().Str("component", "activity_consumer").Logger(),
	}
}

// Run subscribes and processes messages until ctx is canceled. Journal
// failures nack for redelivery; undecodable payloads are acked and
// dropped so a poison message cannot wedge the stream.
func (c *Consumer) Run(ctx context.Context) error {
	messages, err := c.source.Subscribe(ctx, c.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.topic, err)
	}
	c.logger.Info().Str("topic", c.topic).Msg("activity consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			c.handle(ctx, msg)
		}
	}
}

// handle processes one message and settles it.
func (c *Consumer) handle(ctx context.Context, msg *message.Message) {
	start := time.Now()
	metrics.RecordNATSConsume()

	event, err := UnmarshalEvent(msg.Payload)
	if err == nil {
		if verr := event.Validate(); verr != nil {
			err = verr
		}
	}
	if err != nil {
		metrics.RecordNATSParseFailed()
		c.logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("dropping undecodable activity event")
		msg.Ack()
		return
	}

	inserted, err := c.journal.AppendActivity(ctx, event.JournalEntry())
	if err != nil {
		c.logger.Error().Err(err).Str("event_id", event.EventID).Msg("journal append failed, message will redeliver")
		msg.Nack()
		return
	}
	if !inserted {
		// Redelivery of an already-journaled event. Settled without a
		// second broadcast.
		c.logger.Debug().Str("event_id", event.EventID).Msg("duplicate activity event skipped")
		msg.Ack()
		return
	}

	if c.hub != nil {
		c.hub.BroadcastActivity(event)
	}

	metrics.RecordNATSProcessed(time.Since(start))
	msg.Ack()
}
