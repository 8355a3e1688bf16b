// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package recommend

import "errors"

var (
	// ErrInvalidAlgo is returned when a request names an algorithm
	// outside the supported set.
	ErrInvalidAlgo = errors.New("invalid recommendation algorithm")

	// ErrCapabilityAbsent is returned by adapter persistence calls when
	// the underlying engine does not implement the capability. Callers
	// treat it as a skip, not a failure.
	ErrCapabilityAbsent = errors.New("engine capability absent")

	// ErrEmptyGraph is returned when a snapshot save is requested while
	// the engine holds no items. Empty snapshots are never persisted.
	ErrEmptyGraph = errors.New("engine graph is empty")
)
