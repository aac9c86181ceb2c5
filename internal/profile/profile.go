// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

// Package profile defines the contract with the external profile store.
//
// # Architecture
//
// The profile store keeps a durable record per account, decoupled from
// authentication: a sign-in that succeeds is authoritative even if profile
// sync fails. The session container calls [Syncer.Upsert] best-effort after
// every successful sign-in.
package profile

import (
	"context"
	"time"

	"github.com/canvio/canvio/internal/identity"
)

// Profile mirrors the durable profile record keyed by the account ID.
type Profile struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Role        string    `json:"role,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastLogin   time.Time `json:"last_login"`

	// Canvases lists the IDs of canvases this profile owns or joined.
	Canvases []string `json:"canvases"`
}

// Syncer is the external profile store boundary.
type Syncer interface {
	// Upsert creates the profile record on first sign-in and updates only
	// the last-login marker on subsequent ones. It must be safe to call
	// redundantly (idempotent).
	Upsert(ctx context.Context, ident *identity.Identity) error

	// Fetch returns the profile for the given account ID, or nil if no
	// record exists yet.
	Fetch(ctx context.Context, uid string) (*Profile, error)
}
