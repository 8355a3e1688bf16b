// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/graphrec/internal/config"
)

// Pipeline owns the activity event components: the embedded NATS
// server, stream provisioning, the publisher, and the consumer. The
// process entry point constructs one pipeline and registers its
// consumer with the supervisor tree.
//
// A disabled pipeline is fully inert: Publisher returns a no-op,
// Consumer returns nil, and Close has nothing to release.
type Pipeline struct {
	server    *EmbeddedServer
	conn      *nats.Conn
	publisher Publisher
	consumer  *Consumer
	logger    zerolog.Logger
}

// NewPipeline starts the embedded broker, provisions the activity
// stream, and wires the publisher and consumer. ctx bounds stream
// provisioning only; the components outlive it.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPipeline(ctx context.Context, cfg config.EventsConfig, journal Journal, hub Broadcaster, logger zerolog.Logger) (*Pipeline, error) {
	log := logger.With().Str("component", "event_pipeline").Logger()

	if !cfg.Enabled {
		log.Info().Msg("activity event pipeline disabled")
		return &Pipeline{publisher: NopPublisher{}, logger: log}, nil
	}

	srv, err := NewEmbeddedServer(cfg)
	if err != nil {
		return nil, fmt.Errorf("start embedded NATS server: %w", err)
	}

	p := &Pipeline{server: srv, logger: log}
	if err := p.wire(ctx, cfg, journal, hub); err != nil {
		p.teardown()
		return nil, err
	}

	log.Info().
		Str("url", srv.ClientURL()).
		Str("stream", cfg.Stream).
		Msg("activity event pipeline ready")
	return p, nil
}

// wire connects the pipeline components against the running server.
func (p *Pipeline) wire(ctx context.Context, cfg config.EventsConfig, journal Journal, hub Broadcaster) error {
	url := p.server.ClientURL()

	conn, err := nats.Connect(url, nats.Name("graphrec-stream-admin"))
	if err != nil {
		return fmt.Errorf("connect to embedded NATS: %w", err)
	}
	p.conn = conn

	streams, err := NewStreamManager(conn, cfg)
	if err != nil {
		return err
	}
	if _, err := streams.EnsureStream(ctx); err != nil {
		return err
	}

	wmLogger := NewWatermillLogger(p.logger)

	pub, err := NewNATSPublisher(cfg, url, wmLogger, p.logger)
	if err != nil {
		return err
	}
	p.publisher = pub

	sub, err := NewSubscriber(cfg, url, wmLogger)
	if err != nil {
		return err
	}
	p.consumer = NewConsumer(sub, cfg.SubjectPrefix+".>", journal, hub, p.logger)

	return nil
}

// Publisher returns the mutation-path publisher. Never nil.
func (p *Pipeline) Publisher() Publisher {
	return p.publisher
}

// Consumer returns the activity consumer to supervise, or nil when the
// pipeline is disabled.
func (p *Pipeline) Consumer() *Consumer {
	return p.consumer
}

// Healthy reports whether the embedded broker is serving. A disabled
// pipeline is vacuously healthy.
func (p *Pipeline) Healthy() bool {
	return p.server == nil || p.server.IsRunning()
}

// Close releases pipeline resources in reverse construction order. The
// consumer is stopped by its supervisor before this runs.
func (p *Pipeline) Close(ctx context.Context) {
	if p.publisher != nil {
		if err := p.publisher.Close(); err != nil {
			p.logger.Warn().Err(err).Msg("publisher close failed")
		}
	}
	if p.consumer != nil {
		if err := p.consumer.source.Close(); err != nil {
			p.logger.Warn().Err(err).Msg("subscriber close failed")
		}
	}
	if p.conn != nil {
		p.conn.Close()
	}
	if p.server != nil {
		if err := p.server.Shutdown(ctx); err != nil {
			p.logger.Warn().Err(err).Msg("embedded NATS shutdown interrupted")
		}
	}
}

// teardown releases whatever wire managed to construct after a failure.
func (p *Pipeline) teardown() {
	if p.conn != nil {
		p.conn.Close()
	}
	if p.server != nil {
		p.server.Shutdown(context.Background()) //nolint:errcheck // best-effort during failed startup
	}
}
