// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

// Package auth authenticates HTTP callers and binds them to graph users.
//
// Two providers are supported, selected by configuration:
//
//   - "local": GraphRec issues and verifies HS256 JWTs itself. Users live in
//     the config file with bcrypt password hashes, and POST /auth/login
//     exchanges credentials for a token. Profiles for local users are seeded
//     at startup.
//   - "oidc": bearer tokens are verified against an external OIDC issuer
//     (signature via JWKS, issuer, audience, expiry). GraphRec never issues
//     tokens in this mode; unknown subjects get a profile on first request.
//
// Either way a verified token carries a subject UUID which the
// ProfileResolver maps to the profiles table, yielding the integer user id
// the recommendation graph operates on. Middleware.RequireAuth performs the
// whole chain and stores the resulting Identity in the request context for
// handlers and the authorization layer.
package auth
