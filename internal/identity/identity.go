// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

// Package identity defines the contract with the external identity provider.
//
// # Architecture
//
// The identity provider performs the real credential verification, federated
// sign-in, and token issuance. This package owns only the boundary: the
// [Provider] interface the session container calls, the [Identity] value it
// receives, and the closed error taxonomy ([Kind]) every provider failure is
// classified into. Concrete adapters ([RESTProvider], [OIDCProvider]) live
// alongside it; nothing here touches session state.
package identity

import "context"

// Identity is the authenticated identity returned by a provider.
//
// DisplayName and PhotoURL are optional; the session container derives a
// display name from the email local-part when the provider supplies none.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`

	// Token is the opaque session credential issued alongside the identity.
	// The client never interprets it; it is stored and replayed verbatim.
	Token string `json:"-"`
}

// Provider is the external identity provider boundary.
//
// # Failure Contract
//
// Every failing operation returns a [*Error] whose Kind is one of the closed
// taxonomy values. Callers never see raw provider codes.
type Provider interface {
	// SignInWithCredentials verifies an email/password pair.
	SignInWithCredentials(ctx context.Context, email, password string) (*Identity, error)

	// SignUp creates a brand-new account. A duplicate email is surfaced as
	// a provider-classified failure, not checked client-side.
	SignUp(ctx context.Context, name, email, password string) (*Identity, error)

	// SignInWithFederated runs the federated (popup-style) sign-in flow for
	// the given provider ID (e.g. "google.com").
	SignInWithFederated(ctx context.Context, providerID string) (*Identity, error)

	// SendPasswordReset triggers an out-of-band password reset message.
	SendPasswordReset(ctx context.Context, email string) error
}
