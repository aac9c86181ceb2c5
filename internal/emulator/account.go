// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

// Package emulator implements a local stand-in for the managed Canvio
// backend: the account, profile, and canvas endpoints the client adapters
// speak during development.
//
// # Architecture
//
// The package follows the service/store split: services orchestrate domain
// entities and talk to storage through interfaces; stores implement those
// interfaces on PostgreSQL and Redis. HTTP handlers are thin gatekeepers
// that parse, validate, and delegate.
//
// # Wire Compatibility
//
// The account endpoints reproduce the vendor identity-toolkit protocol the
// production client speaks, including its error code strings, so switching
// CANVIO_API_URL between emulator and real backend needs no client change.
package emulator

import (
	"context"
	"net/http"
	"time"
)

// AccountProvider identifies how an account authenticates.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google.com"
)

// Account is the identity record stored by the emulator.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	Role         string    `json:"role"`
	Provider     string    `json:"provider"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// # Wire Error Codes

// Account endpoint failures carry a vendor-protocol code string in the
// error payload; the client classifies on exactly these values.
const (
	CodeEmailNotFound      = "EMAIL_NOT_FOUND"
	CodeInvalidPassword    = "INVALID_PASSWORD"
	CodeInvalidEmail       = "INVALID_EMAIL"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeUserDisabled       = "USER_DISABLED"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeTooManyAttempts    = "TOO_MANY_ATTEMPTS_TRY_LATER"
	CodeCredentialMismatch = "ACCOUNT_EXISTS_WITH_DIFFERENT_CREDENTIAL"
	CodeInvalidOobCode     = "INVALID_OOB_CODE"
	CodeInvalidIdpResponse = "INVALID_IDP_RESPONSE"
)

// AccountError is a failure expressed in the account-API wire protocol.
type AccountError struct {
	// HTTPStatus is the response status; the toolkit uses 400 for almost
	// everything.
	HTTPStatus int

	// Code is the protocol code string from the constants above.
	Code string
}

// Error implements the error interface with the wire code.
func (e *AccountError) Error() string { return e.Code }

// NewAccountError builds a wire-protocol failure with the standard status.
func NewAccountError(code string) *AccountError {
	return &AccountError{HTTPStatus: http.StatusBadRequest, Code: code}
}

// # Storage Contracts

// AccountStore persists identity records.
type AccountStore interface {
	Create(ctx context.Context, account *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	UpdatePassword(ctx context.Context, accountID, newHash string) error
}

// ResetCodeStore keeps out-of-band password reset codes with a TTL.
type ResetCodeStore interface {
	Set(ctx context.Context, code, accountID string, ttl time.Duration) error
	Get(ctx context.Context, code string) (string, error)
	Delete(ctx context.Context, code string) error
}

// TokenProvider mints signed ID tokens for authenticated accounts.
type TokenProvider interface {
	GenerateIDToken(uid, email, role string, timeToLive time.Duration) (string, error)
}
