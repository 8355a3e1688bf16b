// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package authz

import "testing"

func TestNewEnforcer(t *testing.T) {
	enforcer, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	if len(enforcer.GetPolicy()) == 0 {
		t.Error("embedded policy loaded zero rules")
	}
}

func TestEnforce(t *testing.T) {
	enforcer, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}

	tests := []struct {
		name    string
		subject string
		object  string
		action  string
		want    bool
	}{
		{name: "admin writes admin surface", subject: "admin", object: "/admin/snapshot", action: "write", want: true},
		{name: "admin reads admin surface", subject: "admin", object: "/admin/activity", action: "read", want: true},
		{name: "user denied admin surface", subject: "user", object: "/admin/snapshot", action: "write", want: false},
		{name: "user denied admin reads", subject: "user", object: "/admin/activity", action: "read", want: false},
		{name: "user adds interaction", subject: "user", object: "/interaction/", action: "write", want: true},
		{name: "user removes interaction", subject: "user", object: "/interaction/", action: "delete", want: true},
		{name: "user sets preferences", subject: "user", object: "/recommend/preferences/7", action: "write", want: true},
		{name: "user cannot delete preferences", subject: "user", object: "/recommend/preferences/7", action: "delete", want: false},
		{name: "admin inherits user permissions", subject: "admin", object: "/interaction/", action: "write", want: true},
		{name: "admin inherits preference writes", subject: "admin", object: "/recommend/preferences/7", action: "write", want: true},
		{name: "unknown role denied everywhere", subject: "viewer", object: "/interaction/", action: "write", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := enforcer.Enforce(tt.subject, tt.object, tt.action)
			if err != nil {
				t.Fatalf("Enforce() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Enforce(%s, %s, %s) = %v, want %v",
					tt.subject, tt.object, tt.action, got, tt.want)
			}
		})
	}
}
