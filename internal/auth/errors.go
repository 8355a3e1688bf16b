// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package auth

import "errors"

var (
	// ErrNoToken indicates the request carried no usable token in either
	// the Authorization header or the token cookie.
	ErrNoToken = errors.New("no token provided")

	// ErrInvalidToken indicates the token failed verification (signature,
	// expiry, issuer, or malformed structure).
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidCredentials indicates a failed username/password login.
	// Unknown users and wrong passwords are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrProfileNotFound indicates a verified token whose subject has no
	// profiles row and the resolver is not allowed to create one.
	ErrProfileNotFound = errors.New("profile not found for subject")
)
