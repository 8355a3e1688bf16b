// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package authz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/graphrec/internal/auth"
	"github.com/tomtom215/graphrec/internal/models"
)

func newAuthzMiddleware(t *testing.T) *Middleware {
	t.Helper()
	enforcer, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	return NewMiddleware(enforcer, zerolog.Nop())
}

func requestWithRole(method, path, role string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	identity := &auth.Identity{
		Claims:  &auth.Claims{Username: "someone", Role: role},
		Profile: &models.Profile{UserID: 1},
	}
	ctx := context.WithValue(req.Context(), auth.IdentityContextKey, identity)
	return req.WithContext(ctx)
}

func TestAuthorizeRequest(t *testing.T) {
	m := newAuthzMiddleware(t)

	var ran bool
	handler := m.AuthorizeRequest(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ran = true
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantRan    bool
	}{
		{
			name:       "no identity",
			req:        httptest.NewRequest(http.MethodGet, "/admin/activity", nil),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "user denied admin route",
			req:        requestWithRole(http.MethodGet, "/admin/activity", "user"),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "admin reads admin route",
			req:        requestWithRole(http.MethodGet, "/admin/activity", "admin"),
			wantStatus: http.StatusOK,
			wantRan:    true,
		},
		{
			name:       "admin forces snapshot",
			req:        requestWithRole(http.MethodPost, "/admin/snapshot", "admin"),
			wantStatus: http.StatusOK,
			wantRan:    true,
		},
		{
			name:       "user posts interaction",
			req:        requestWithRole(http.MethodPost, "/interaction/", "user"),
			wantStatus: http.StatusOK,
			wantRan:    true,
		},
		{
			name:       "user deletes interaction",
			req:        requestWithRole(http.MethodDelete, "/interaction/", "user"),
			wantStatus: http.StatusOK,
			wantRan:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ran = false
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, tt.req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ran != tt.wantRan {
				t.Errorf("handler ran = %v, want %v", ran, tt.wantRan)
			}
		})
	}
}
