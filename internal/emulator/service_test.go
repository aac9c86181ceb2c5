// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package emulator

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canvio/canvio/internal/platform/apperr"
	"github.com/canvio/canvio/internal/platform/sec"
)

// memoryAccounts is an in-memory AccountStore keyed by email and ID.
type memoryAccounts struct {
	byEmail map[string]*Account
	byID    map[string]*Account
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{byEmail: map[string]*Account{}, byID: map[string]*Account{}}
}

func (m *memoryAccounts) Create(ctx context.Context, account *Account) error {
	stored := *account
	m.byEmail[account.Email] = &stored
	m.byID[account.ID] = &stored
	return nil
}

func (m *memoryAccounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	account, ok := m.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	copied := *account
	return &copied, nil
}

func (m *memoryAccounts) FindByID(ctx context.Context, id string) (*Account, error) {
	account, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	copied := *account
	return &copied, nil
}

func (m *memoryAccounts) UpdatePassword(ctx context.Context, accountID, newHash string) error {
	account, ok := m.byID[accountID]
	if !ok {
		return apperr.NotFound("Account")
	}
	account.PasswordHash = newHash
	return nil
}

// memoryResetCodes is an in-memory ResetCodeStore; TTLs are ignored.
type memoryResetCodes struct {
	codes map[string]string
}

func newMemoryResetCodes() *memoryResetCodes {
	return &memoryResetCodes{codes: map[string]string{}}
}

func (m *memoryResetCodes) Set(ctx context.Context, code, accountID string, ttl time.Duration) error {
	m.codes[code] = accountID
	return nil
}

func (m *memoryResetCodes) Get(ctx context.Context, code string) (string, error) {
	accountID, ok := m.codes[code]
	if !ok {
		return "", apperr.NotFound("Reset code")
	}
	return accountID, nil
}

func (m *memoryResetCodes) Delete(ctx context.Context, code string) error {
	delete(m.codes, code)
	return nil
}

// staticTokens mints predictable tokens for assertions.
type staticTokens struct{}

func (staticTokens) GenerateIDToken(uid, email, role string, ttl time.Duration) (string, error) {
	return "idtoken:" + uid, nil
}

func newTestService() (*AccountService, *memoryAccounts, *memoryResetCodes) {
	accounts := newMemoryAccounts()
	resetCodes := newMemoryResetCodes()
	service := NewAccountService(accounts, resetCodes, staticTokens{}, slog.Default())
	return service, accounts, resetCodes
}

/*
TestAccountService_SignUp verifies the enrollment rules: hashed password,
member role, derived display name, and the duplicate-email wire code.
*/
func TestAccountService_SignUp(t *testing.T) {
	service, accounts, _ := newTestService()
	ctx := context.Background()

	// ── 1. Success ──
	result, err := service.SignUp(ctx, "alice@canvio.app", "s3cret-pw", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", result.Account.DisplayName, "display name derives from the email local-part")
	assert.Equal(t, "member", result.Account.Role)
	assert.Equal(t, ProviderPassword, result.Account.Provider)
	assert.NotEqual(t, "s3cret-pw", result.Account.PasswordHash, "password is never stored in plain text")
	assert.True(t, sec.CheckPasswordHash("s3cret-pw", result.Account.PasswordHash))
	assert.Equal(t, "idtoken:"+result.Account.ID, result.IDToken)

	// ── 2. Duplicate email ──
	_, err = service.SignUp(ctx, "alice@canvio.app", "another-pw", "Alice II")
	requireAccountCode(t, err, CodeEmailExists)

	// ── 3. Input rules ──
	_, err = service.SignUp(ctx, "not-an-email", "s3cret-pw", "")
	requireAccountCode(t, err, CodeInvalidEmail)

	_, err = service.SignUp(ctx, "bob@canvio.app", "short", "")
	requireAccountCode(t, err, CodeWeakPassword)

	assert.Len(t, accounts.byEmail, 1)
}

/*
TestAccountService_SignInWithPassword verifies credential verification and
the disabled-account gate.
*/
func TestAccountService_SignInWithPassword(t *testing.T) {
	service, accounts, _ := newTestService()
	ctx := context.Background()
	_, err := service.SignUp(ctx, "alice@canvio.app", "s3cret-pw", "Alice")
	require.NoError(t, err)

	// ── 1. Success ──
	result, err := service.SignInWithPassword(ctx, "alice@canvio.app", "s3cret-pw")
	require.NoError(t, err)
	assert.NotEmpty(t, result.IDToken)

	// ── 2. Failure codes ──
	_, err = service.SignInWithPassword(ctx, "ghost@canvio.app", "whatever")
	requireAccountCode(t, err, CodeEmailNotFound)

	_, err = service.SignInWithPassword(ctx, "alice@canvio.app", "wrong-pw")
	requireAccountCode(t, err, CodeInvalidPassword)

	// ── 3. Disabled account ──
	accounts.byEmail["alice@canvio.app"].Disabled = true
	_, err = service.SignInWithPassword(ctx, "alice@canvio.app", "s3cret-pw")
	requireAccountCode(t, err, CodeUserDisabled)
}

/*
TestAccountService_SignInWithIdp verifies federated provisioning and the
credential-mismatch rule for emails registered with a password.
*/
func TestAccountService_SignInWithIdp(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	federatedToken := unsignedIdpToken(t, map[string]any{
		"email":   "carol@canvio.app",
		"name":    "Carol",
		"picture": "https://img.example/carol.png",
	})

	// ── 1. First sign-in provisions the account ──
	result, err := service.SignInWithIdp(ctx, ProviderGoogle, federatedToken)
	require.NoError(t, err)
	assert.Equal(t, "Carol", result.Account.DisplayName)
	assert.Equal(t, ProviderGoogle, result.Account.Provider)

	// ── 2. Second sign-in reuses it ──
	again, err := service.SignInWithIdp(ctx, ProviderGoogle, federatedToken)
	require.NoError(t, err)
	assert.Equal(t, result.Account.ID, again.Account.ID)

	// ── 3. Password account collides ──
	_, err = service.SignUp(ctx, "dave@canvio.app", "s3cret-pw", "Dave")
	require.NoError(t, err)

	daveToken := unsignedIdpToken(t, map[string]any{"email": "dave@canvio.app"})
	_, err = service.SignInWithIdp(ctx, ProviderGoogle, daveToken)
	requireAccountCode(t, err, CodeCredentialMismatch)
}

/*
TestAccountService_PasswordResetFlow verifies the full out-of-band loop:
issue a code, redeem it once, and reject reuse.
*/
func TestAccountService_PasswordResetFlow(t *testing.T) {
	service, _, resetCodes := newTestService()
	ctx := context.Background()
	_, err := service.SignUp(ctx, "alice@canvio.app", "old-password", "Alice")
	require.NoError(t, err)

	// ── 1. Unknown email is rejected ──
	requireAccountCode(t, service.SendOobCode(ctx, "ghost@canvio.app"), CodeEmailNotFound)

	// ── 2. Issue ──
	require.NoError(t, service.SendOobCode(ctx, "alice@canvio.app"))
	require.Len(t, resetCodes.codes, 1)

	// The store holds the hash; recover the raw code is not possible, so the
	// redemption path is exercised with a code set up directly.
	rawCode := "a1b2c3d4"
	account, err := service.accounts.FindByEmail(ctx, "alice@canvio.app")
	require.NoError(t, err)
	require.NoError(t, resetCodes.Set(ctx, sec.HashToken(rawCode), account.ID, time.Minute))

	// ── 3. Redeem ──
	require.NoError(t, service.ResetPassword(ctx, rawCode, "new-password"))
	result, err := service.SignInWithPassword(ctx, "alice@canvio.app", "new-password")
	require.NoError(t, err)
	assert.NotEmpty(t, result.IDToken)

	// ── 4. Codes are single-use ──
	requireAccountCode(t, service.ResetPassword(ctx, rawCode, "another-password"), CodeInvalidOobCode)
	requireAccountCode(t, service.ResetPassword(ctx, "bogus", "long-enough"), CodeInvalidOobCode)
}

// requireAccountCode asserts err is an [*AccountError] with the given code.
func requireAccountCode(t *testing.T, err error, code string) {
	t.Helper()
	var accountErr *AccountError
	require.ErrorAs(t, err, &accountErr)
	assert.Equal(t, code, accountErr.Code)
}

// unsignedIdpToken builds a federated ID token the service can decode.
func unsignedIdpToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims))
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}
