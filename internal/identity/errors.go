// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package identity

import (
	"fmt"
)

// Kind is the closed classification of provider failures.
//
// # Why a closed enum?
//
// Provider failures arrive as loosely-typed error payloads with a string
// code. Modeling them as a closed tagged enumeration lets the session
// container map them exhaustively and keeps raw provider codes out of the
// view layer.
type Kind int

const (
	// KindUnknown is the catch-all; it still produces a non-empty message.
	KindUnknown Kind = iota

	// KindInvalidCredentials covers wrong password or unknown account.
	KindInvalidCredentials

	// KindInvalidEmailFormat covers malformed email addresses.
	KindInvalidEmailFormat

	// KindAccountDisabled covers administratively disabled accounts.
	KindAccountDisabled

	// KindRateLimited covers too many attempts in a window.
	KindRateLimited

	// KindNetworkFailure covers transport-level failures reaching the provider.
	KindNetworkFailure

	// KindPopupCancelled covers a federated flow aborted by the user.
	KindPopupCancelled

	// KindPopupBlocked covers a federated flow the environment refused to open.
	KindPopupBlocked

	// KindAccountCollision covers a federated email that matches an account
	// created through a different sign-in method.
	KindAccountCollision

	// KindEmailInUse covers sign-up against an already registered email.
	KindEmailInUse
)

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "InvalidCredentials"
	case KindInvalidEmailFormat:
		return "InvalidEmailFormat"
	case KindAccountDisabled:
		return "AccountDisabled"
	case KindRateLimited:
		return "RateLimited"
	case KindNetworkFailure:
		return "NetworkFailure"
	case KindPopupCancelled:
		return "PopupCancelled"
	case KindPopupBlocked:
		return "PopupBlocked"
	case KindAccountCollision:
		return "AccountCollision"
	case KindEmailInUse:
		return "EmailInUse"
	default:
		return "Unknown"
	}
}

// Message returns the user-facing text for the kind. The view layer shows
// exactly this string; it never inspects provider codes.
func (k Kind) Message() string {
	switch k {
	case KindInvalidCredentials:
		return "Invalid email or password"
	case KindInvalidEmailFormat:
		return "Please enter a valid email address"
	case KindAccountDisabled:
		return "This account has been disabled"
	case KindRateLimited:
		return "Too many attempts. Please try again later"
	case KindNetworkFailure:
		return "Network error. Check your connection and try again"
	case KindPopupCancelled:
		return "Sign-in was cancelled"
	case KindPopupBlocked:
		return "Sign-in window was blocked. Allow popups and try again"
	case KindAccountCollision:
		return "An account already exists with this email using a different sign-in method"
	case KindEmailInUse:
		return "An account with this email already exists"
	default:
		return "Something went wrong. Please try again"
	}
}

// Error is the provider failure type carried across the adapter boundary.
type Error struct {
	// Kind is the closed taxonomy classification.
	Kind Kind

	// Code is the raw provider-defined code, kept for logging only.
	Code string

	// Message overrides the Kind's default user-facing text when non-empty.
	Message string

	// Cause is the underlying error, used for logging only.
	Cause error
}

// Error implements the error interface with the user-facing message.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Message()
}

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *Error) Unwrap() error { return e.Cause }

// NewError builds a classified provider error.
func NewError(kind Kind, code string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Cause: cause}
}

// # Provider Code Classification

// ClassifyCode maps a backend account-API error code onto the taxonomy.
//
// The codes mirror the vendor identity toolkit wire protocol; anything
// unrecognized collapses into [KindUnknown].
func ClassifyCode(code string) Kind {
	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return KindInvalidCredentials
	case "INVALID_EMAIL":
		return KindInvalidEmailFormat
	case "USER_DISABLED":
		return KindAccountDisabled
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return KindRateLimited
	case "EMAIL_EXISTS":
		return KindEmailInUse
	case "ACCOUNT_EXISTS_WITH_DIFFERENT_CREDENTIAL":
		return KindAccountCollision
	default:
		return KindUnknown
	}
}

// NetworkError wraps a transport failure (DNS, refused connection, timeout)
// as a [KindNetworkFailure] provider error.
func NetworkError(cause error) *Error {
	return &Error{
		Kind:  KindNetworkFailure,
		Cause: fmt.Errorf("identity: transport failure: %w", cause),
	}
}
