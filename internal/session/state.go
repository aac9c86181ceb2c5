// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

// Package session implements the client-side authentication session store.
//
// # Architecture
//
// The [Store] is the single source of truth for "who is signed in" on this
// client. The view layer observes its state and calls its operations; the
// store delegates the real work to the identity provider and profile store
// boundaries and owns nothing but the resulting state transitions.
//
// It is an explicitly constructed, dependency-injected service — never an
// ambient global. The process creates exactly one and hands it to the UI.
package session

import (
	"time"
)

// Role is the authorization label carried on an account.
//
// It is stored and displayed but never enforced anywhere in this client;
// access decisions belong to the backend.
type Role string

const (
	RoleUser  Role = "user"  // Default role for registered accounts.
	RoleAdmin Role = "admin" // Administrative accounts.
)

// User is the identity record of the signed-in account.
type User struct {
	// ID is an opaque identifier, stable for the lifetime of the account.
	ID string `json:"id"`

	// Email is the uniqueness key used by the identity provider.
	Email string `json:"email"`

	// Name is the display name; derived from the email local-part when the
	// provider supplies none.
	Name string `json:"name"`

	// AvatarURL optionally points at a profile image.
	AvatarURL string `json:"avatar,omitempty"`

	Role Role `json:"role"`

	// CreatedAt is set once at account creation and never mutated.
	CreatedAt time.Time `json:"created_at"`
}

// UserPatch carries the mutable profile fields for [Store.UpdateUser].
//
// ID, Email, and CreatedAt are deliberately absent: the patch type makes
// the immutable fields unpatchable by construction instead of rejecting
// them at runtime.
type UserPatch struct {
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar,omitempty"`
	Role      *Role   `json:"role,omitempty"`
}

// State is the observable session state.
//
// # Invariant
//
// Token is non-empty if and only if User is present. Every operation
// preserves this; it also holds for rehydrated snapshots.
type State struct {
	// User is nil while unauthenticated.
	User *User `json:"user"`

	// Token is the opaque session credential. The client stores and
	// replays it verbatim; it never interprets it.
	Token string `json:"token"`

	// IsLoading is true only for the duration of an in-flight auth
	// operation.
	IsLoading bool `json:"-"`

	// Err is the last human-readable failure message, empty when clear.
	// It is cleared at the start of the next operation or explicitly via
	// [Store.ClearError].
	Err string `json:"-"`
}

// SignedIn reports whether the state carries an authenticated user.
func (s State) SignedIn() bool {
	return s.User != nil
}

// clone returns a deep copy so observers can never alias store internals.
func (s State) clone() State {
	copied := s
	if s.User != nil {
		user := *s.User
		copied.User = &user
	}
	return copied
}
