// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

// Package websocket implements the live activity feed.
//
// A single Hub owns the set of connected clients and fans activity
// messages out to them. The hub runs under supervision via
// RunWithContext; the HTTP upgrade handler lives in the api package
// and hands accepted connections to the hub through the Register
// channel. The feed is push-only: clients receive activity frames and
// may send application-level pings, nothing else.
package websocket
