// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/graphrec/internal/config"
)

// StreamManager owns the activity stream's JetStream lifecycle.
type StreamManager struct {
	js  jetstream.JetStream
	cfg config.EventsConfig
}

// NewStreamManager builds a stream manager over an established NATS
// connection.
func NewStreamManager(nc *nats.Conn, cfg config.EventsConfig) (*StreamManager, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}
	return &StreamManager{js: js, cfg: cfg}, nil
}

// EnsureStream creates or updates the activity stream. The stream holds
// every activity subject under the configured prefix with limits
// retention and a duplicate window keyed on Nats-Msg-Id, which carries
// the event id.
func (m *StreamManager) EnsureStream(ctx context.Context) (jetstream.Stream, error) {
	streamCfg := jetstream.StreamConfig{
		Name:       m.cfg.Stream,
		Subjects:   []string{m.cfg.SubjectPrefix + ".>"},
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     m.cfg.MaxAge,
		MaxMsgs:    m.cfg.MaxMsgs,
		Duplicates: m.cfg.DedupWindow,
		Storage:    jetstream.FileStorage,
		Discard:    jetstream.DiscardOld,
	}

	if _, err := m.js.Stream(ctx, m.cfg.Stream); err == nil {
		stream, err := m.js.UpdateStream(ctx, streamCfg)
		if err != nil {
			return nil, fmt.Errorf("update stream %s: %w", m.cfg.Stream, err)
		}
		return stream, nil
	}

	stream, err := m.js.CreateStream(ctx, streamCfg)
	if err != nil {
		return nil, fmt.Errorf("create stream %s: %w", m.cfg.Stream, err)
	}
	return stream, nil
}

// StreamInfo returns the current stream state, for health reporting.
func (m *StreamManager) StreamInfo(ctx context.Context) (*jetstream.StreamInfo, error) {
	stream, err := m.js.Stream(ctx, m.cfg.Stream)
	if err != nil {
		return nil, fmt.Errorf("get stream %s: %w", m.cfg.Stream, err)
	}
	return stream.Info(ctx)
}
