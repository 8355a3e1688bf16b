// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package services

import (
	"context"
	"errors"
)

// ActivityRunner interface matches *events.Consumer's Run method.
//
// This interface allows the ActivityConsumerService to work with the
// consumer without importing the events package, avoiding circular
// dependencies.
type ActivityRunner interface {
	Run(ctx context.Context) error
}

// ActivityConsumerService wraps the activity event consumer as a
// supervised service.
//
// The consumer's Run method already implements the suture.Service
// pattern: it subscribes, processes until context cancellation, and
// returns. This wrapper delegates to it, normalizes the shutdown
// error, and provides a name for logging.
//
// The service is only registered when the event pipeline is enabled;
// a disabled pipeline has no consumer to run.
type ActivityConsumerService struct {
	consumer ActivityRunner
	name     string
}

// NewActivityConsumerService creates a new activity consumer service wrapper.
func NewActivityConsumerService(consumer ActivityRunner) *ActivityConsumerService {
	return &ActivityConsumerService{
		consumer: consumer,
		name:     "activity-consumer",
	}
}

// Serve implements suture.Service.
//
// Context cancellation is the normal stop signal, so context.Canceled
// is converted to nil; any other error propagates and triggers a
// supervised restart with a fresh subscription.
func (s *ActivityConsumerService) Serve(ctx context.Context) error {
	err := s.consumer.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return ctx.Err()
	}
	return err
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *ActivityConsumerService) String() string {
	return s.name
}
