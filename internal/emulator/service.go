// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package emulator

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/canvio/canvio/internal/platform/constants"
	"github.com/canvio/canvio/internal/platform/sec"
	"github.com/canvio/canvio/pkg/uuidv7"
)

// minPasswordLength mirrors the vendor toolkit's weak-password floor.
const minPasswordLength = 6

// AccountService implements the account-API use cases.
type AccountService struct {
	accounts   AccountStore
	resetCodes ResetCodeStore
	tokens     TokenProvider
	log        *slog.Logger
}

// NewAccountService constructs the service with its storage and token
// dependencies.
func NewAccountService(accounts AccountStore, resetCodes ResetCodeStore, tokens TokenProvider, log *slog.Logger) *AccountService {
	return &AccountService{
		accounts:   accounts,
		resetCodes: resetCodes,
		tokens:     tokens,
		log:        log,
	}
}

// AuthResult is a successfully authenticated account plus its fresh token.
type AuthResult struct {
	Account *Account
	IDToken string
}

// SignUp creates a brand new password account and signs it in.
//
// # Business Rules
//   - Emails must be well-formed and unique.
//   - Passwords must meet the minimum length.
//   - Default role is always 'member'.
func (service *AccountService) SignUp(ctx context.Context, email, password, displayName string) (*AuthResult, error) {
	// ── 1. Input Rules ────────────────────────────────────────────────────

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, NewAccountError(CodeInvalidEmail)
	}
	if len(password) < minPasswordLength {
		return nil, NewAccountError(CodeWeakPassword)
	}

	// ── 2. Uniqueness Check ───────────────────────────────────────────────

	if _, err := service.accounts.FindByEmail(ctx, email); err == nil {
		return nil, NewAccountError(CodeEmailExists)
	}

	// ── 3. Security ───────────────────────────────────────────────────────

	hashedPassword, err := sec.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("emulator_signup_hash_failed: %w", err)
	}

	// ── 4. Entity Construction & Persistence ──────────────────────────────

	if displayName == "" {
		displayName, _, _ = strings.Cut(email, "@")
	}

	account := &Account{
		ID:           uuidv7.New(), // Time-sortable ID to prevent PG index fragmentation.
		Email:        email,
		PasswordHash: hashedPassword,
		DisplayName:  displayName,
		Role:         "member",
		Provider:     ProviderPassword,
	}

	if err := service.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("emulator_signup_persist_failed: %w", err)
	}

	return service.issue(account)
}

// SignInWithPassword verifies an email/password pair and issues a token.
//
// # Flow
//  1. Lookup account by email.
//  2. Reject disabled accounts before touching the password.
//  3. Verify password hash using bcrypt.
func (service *AccountService) SignInWithPassword(ctx context.Context, email, password string) (*AuthResult, error) {
	account, err := service.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, NewAccountError(CodeEmailNotFound)
	}

	if account.Disabled {
		return nil, NewAccountError(CodeUserDisabled)
	}

	if !sec.CheckPasswordHash(password, account.PasswordHash) {
		return nil, NewAccountError(CodeInvalidPassword)
	}

	return service.issue(account)
}

// SignInWithIdp completes a federated sign-in: the client already verified
// the provider ID token; the emulator decodes its profile claims without a
// second verification (it is a development stand-in, not a trust anchor).
//
// An email registered through a different sign-in method is rejected with
// the credential-mismatch code.
func (service *AccountService) SignInWithIdp(ctx context.Context, providerID, rawIDToken string) (*AuthResult, error) {
	email, displayName, photoURL, err := decodeIdpToken(rawIDToken)
	if err != nil {
		return nil, NewAccountError(CodeInvalidIdpResponse)
	}

	account, err := service.accounts.FindByEmail(ctx, email)
	switch {
	case err == nil && account.Provider != providerID:
		return nil, NewAccountError(CodeCredentialMismatch)

	case err == nil:
		if account.Disabled {
			return nil, NewAccountError(CodeUserDisabled)
		}
		return service.issue(account)
	}

	// First federated sign-in: provision the account on the fly.
	account = &Account{
		ID:          uuidv7.New(),
		Email:       email,
		DisplayName: displayName,
		PhotoURL:    photoURL,
		Role:        "member",
		Provider:    providerID,
	}
	if err := service.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("emulator_idp_provision_failed: %w", err)
	}

	return service.issue(account)
}

// SendOobCode generates an out-of-band password reset code for the email.
//
// The emulator has no mail pipeline: the code is written to the log, which
// is where developers pick it up.
func (service *AccountService) SendOobCode(ctx context.Context, email string) error {
	account, err := service.accounts.FindByEmail(ctx, email)
	if err != nil {
		return NewAccountError(CodeEmailNotFound)
	}

	code, err := sec.GenerateSecureToken(16)
	if err != nil {
		return fmt.Errorf("emulator_oob_code_generation_failed: %w", err)
	}

	// Stored hashed: a leaked store never yields redeemable codes.
	if err := service.resetCodes.Set(ctx, sec.HashToken(code), account.ID, constants.ResetCodeTTL); err != nil {
		return fmt.Errorf("emulator_oob_code_store_failed: %w", err)
	}

	service.log.Info("password_reset_code_issued",
		slog.String("email", email),
		slog.String("oob_code", code),
	)
	return nil
}

// ResetPassword redeems a reset code and installs the new password.
// Codes are single-use: redemption deletes them even on success.
func (service *AccountService) ResetPassword(ctx context.Context, oobCode, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return NewAccountError(CodeWeakPassword)
	}

	codeHash := sec.HashToken(oobCode)
	accountID, err := service.resetCodes.Get(ctx, codeHash)
	if err != nil {
		return NewAccountError(CodeInvalidOobCode)
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("emulator_reset_hash_failed: %w", err)
	}

	if err := service.accounts.UpdatePassword(ctx, accountID, hashedPassword); err != nil {
		return fmt.Errorf("emulator_reset_persist_failed: %w", err)
	}

	if err := service.resetCodes.Delete(ctx, codeHash); err != nil {
		service.log.Warn("reset_code_cleanup_failed", slog.Any("error", err))
	}
	return nil
}

// issue mints the ID token for an account and bundles the result.
func (service *AccountService) issue(account *Account) (*AuthResult, error) {
	idToken, err := service.tokens.GenerateIDToken(account.ID, account.Email, account.Role, constants.IDTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("emulator_token_issue_failed: %w", err)
	}
	return &AuthResult{Account: account, IDToken: idToken}, nil
}

// decodeIdpToken pulls the standard OIDC profile claims out of a federated
// ID token without verifying its signature.
func decodeIdpToken(rawIDToken string) (email, name, picture string, err error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(rawIDToken, claims); err != nil {
		return "", "", "", err
	}

	email, _ = claims["email"].(string)
	name, _ = claims["name"].(string)
	picture, _ = claims["picture"].(string)
	if email == "" {
		return "", "", "", fmt.Errorf("emulator: federated token carries no email claim")
	}
	return email, name, picture, nil
}
