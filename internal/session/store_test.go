// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package session_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canvio/canvio/internal/identity"
	"github.com/canvio/canvio/internal/platform/snapshot"
	"github.com/canvio/canvio/internal/profile"
	"github.com/canvio/canvio/internal/session"
	"github.com/canvio/canvio/pkg/pointer"
)

// fakeProvider scripts the identity boundary per test.
type fakeProvider struct {
	mu sync.Mutex

	signInIdent *identity.Identity
	signInErr   error
	signUpIdent *identity.Identity
	signUpErr   error
	resetErr    error

	signInCalls int
	resetEmails []string

	// block, when non-nil, stalls SignInWithCredentials until closed.
	block chan struct{}
}

func (p *fakeProvider) SignInWithCredentials(ctx context.Context, email, password string) (*identity.Identity, error) {
	p.mu.Lock()
	p.signInCalls++
	block := p.block
	p.mu.Unlock()

	if block != nil {
		<-block
	}
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	return p.signInIdent, nil
}

func (p *fakeProvider) SignUp(ctx context.Context, name, email, password string) (*identity.Identity, error) {
	if p.signUpErr != nil {
		return nil, p.signUpErr
	}
	return p.signUpIdent, nil
}

func (p *fakeProvider) SignInWithFederated(ctx context.Context, providerID string) (*identity.Identity, error) {
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	return p.signInIdent, nil
}

func (p *fakeProvider) SendPasswordReset(ctx context.Context, email string) error {
	p.mu.Lock()
	p.resetEmails = append(p.resetEmails, email)
	p.mu.Unlock()
	return p.resetErr
}

// fakeSyncer records upsert calls and optionally fails them.
type fakeSyncer struct {
	mu      sync.Mutex
	upserts []string
	err     error
}

func (s *fakeSyncer) Upsert(ctx context.Context, ident *identity.Identity) error {
	s.mu.Lock()
	s.upserts = append(s.upserts, ident.ID)
	s.mu.Unlock()
	return s.err
}

func (s *fakeSyncer) Fetch(ctx context.Context, uid string) (*profile.Profile, error) {
	return nil, nil
}

// memorySnapshots is an in-memory snapshot.Store.
type memorySnapshots struct {
	mu   sync.Mutex
	data []byte
	err  error
}

func (m *memorySnapshots) Save(payload any) error {
	if m.err != nil {
		return m.err
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = encoded
	m.mu.Unlock()
	return nil
}

func (m *memorySnapshots) Load(target any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return snapshot.ErrNotFound
	}
	return json.Unmarshal(m.data, target)
}

func (m *memorySnapshots) Clear() error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}

func aliceIdentity() *identity.Identity {
	return &identity.Identity{
		ID:    "uid-alice",
		Email: "alice@canvio.app",
		Token: "token-alice",
	}
}

func newStore(provider *fakeProvider, syncer *fakeSyncer, snapshots *memorySnapshots) *session.Store {
	cfg := session.Config{Provider: provider}

	// A typed-nil fake stored in an interface field is not a nil interface;
	// only set the optional collaborators when they actually exist.
	if syncer != nil {
		cfg.Syncer = syncer
	}
	if snapshots != nil {
		cfg.Snapshots = snapshots
	}

	return session.NewStore(cfg)
}

/*
TestStore_LoginSuccess verifies the happy path: user and token installed
together, name derived from the email local-part, loading off, no error.
*/
func TestStore_LoginSuccess(t *testing.T) {
	provider := &fakeProvider{signInIdent: aliceIdentity()}
	store := newStore(provider, nil, nil)

	require.NoError(t, store.Login(context.Background(), "alice@canvio.app", "s3cret"))

	state := store.Snapshot()
	require.True(t, state.SignedIn())
	assert.Equal(t, "uid-alice", state.User.ID)
	assert.Equal(t, "alice", state.User.Name, "display name derives from the email local-part")
	assert.Equal(t, session.RoleUser, state.User.Role)
	assert.Equal(t, "token-alice", state.Token)
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.Err)
	assert.WithinDuration(t, time.Now(), state.User.CreatedAt, time.Minute)
}

/*
TestStore_LoginFailureLeavesSessionIntact verifies a failed login against an
already signed-in session: the prior user and token survive, only the error
message changes, and the classified error is returned.
*/
func TestStore_LoginFailureLeavesSessionIntact(t *testing.T) {
	provider := &fakeProvider{signInIdent: aliceIdentity()}
	store := newStore(provider, nil, nil)
	require.NoError(t, store.Login(context.Background(), "alice@canvio.app", "s3cret"))

	provider.signInErr = &identity.Error{Kind: identity.KindInvalidCredentials}
	err := store.Login(context.Background(), "bob@canvio.app", "wrong")

	var providerErr *identity.Error
	require.ErrorAs(t, err, &providerErr)

	state := store.Snapshot()
	assert.Equal(t, "uid-alice", state.User.ID, "prior session survives a failed attempt")
	assert.Equal(t, "token-alice", state.Token)
	assert.Equal(t, "Invalid email or password", state.Err)
	assert.False(t, state.IsLoading)
}

/*
TestStore_LoginValidatesLocally verifies malformed inputs never reach the
provider: a bad email or empty password fails fast with a recorded message.
*/
func TestStore_LoginValidatesLocally(t *testing.T) {
	provider := &fakeProvider{signInIdent: aliceIdentity()}
	store := newStore(provider, nil, nil)

	// ── 1. Malformed email ──
	require.Error(t, store.Login(context.Background(), "not-an-email", "pw"))
	assert.Equal(t, identity.KindInvalidEmailFormat.Message(), store.Snapshot().Err)

	// ── 2. Empty password ──
	require.Error(t, store.Login(context.Background(), "alice@canvio.app", "   "))
	assert.NotEmpty(t, store.Snapshot().Err)

	assert.Zero(t, provider.signInCalls, "invalid inputs never leave the client")
}

/*
TestStore_TokenIffUser verifies the core invariant across the full lifecycle:
the token is non-empty exactly when a user is present.
*/
func TestStore_TokenIffUser(t *testing.T) {
	provider := &fakeProvider{signInIdent: aliceIdentity()}
	store := newStore(provider, nil, nil)

	check := func() {
		t.Helper()
		state := store.Snapshot()
		assert.Equal(t, state.User != nil, state.Token != "")
	}

	check()
	require.NoError(t, store.Login(context.Background(), "alice@canvio.app", "pw"))
	check()
	store.Logout()
	check()
}

/*
TestStore_LogoutIsIdempotent verifies logging out twice, including from the
signed-out state, lands on the same observable state.
*/
func TestStore_LogoutIsIdempotent(t *testing.T) {
	provider := &fakeProvider{signInIdent: aliceIdentity()}
	store := newStore(provider, nil, nil)
	require.NoError(t, store.Login(context.Background(), "alice@canvio.app", "pw"))

	store.Logout()
	first := store.Snapshot()
	store.Logout()
	second := store.Snapshot()

	assert.Equal(t, first, second)
	assert.Nil(t, second.User)
	assert.Empty(t, second.Token)
	assert.Empty(t, second.Err)
}

/*
TestStore_ClearError verifies the error message clears without touching the
rest of the state.
*/
func TestStore_ClearError(t *testing.T) {
	provider := &fakeProvider{signInErr: &identity.Error{Kind: identity.KindInvalidCredentials}}
	store := newStore(provider, nil, nil)

	require.Error(t, store.Login(context.Background(), "alice@canvio.app", "pw"))
	require.NotEmpty(t, store.Snapshot().Err)

	store.ClearError()
	assert.Empty(t, store.Snapshot().Err)
}

/*
TestStore_UpdateUserMergesPatch verifies partial updates: patched fields
change, everything else — notably ID and CreatedAt — stays put.
*/
func TestStore_UpdateUserMergesPatch(t *testing.T) {
	provider := &fakeProvider{signInIdent: aliceIdentity()}
	store := newStore(provider, nil, nil)
	require.NoError(t, store.Login(context.Background(), "alice@canvio.app", "pw"))
	before := store.Snapshot()

	store.UpdateUser(session.UserPatch{Name: pointer.To("Alice Liddell")})

	after := store.Snapshot()
	assert.Equal(t, "Alice Liddell", after.User.Name)
	assert.Equal(t, before.User.ID, after.User.ID)
	assert.Equal(t, before.User.Email, after.User.Email)
	assert.Equal(t, before.User.CreatedAt, after.User.CreatedAt)
	assert.Equal(t, before.Token, after.Token)
}

/*
TestStore_UpdateUserWhileSignedOut verifies the patch is a silent no-op when
no user is present.
*/
func TestStore_UpdateUserWhileSignedOut(t *testing.T) {
	store := newStore(&fakeProvider{}, nil, nil)

	store.UpdateUser(session.UserPatch{Name: pointer.To("ghost")})

	state := store.Snapshot()
	assert.Nil(t, state.User)
	assert.Empty(t, state.Err)
}

/*
TestStore_ResetPasswordNeverTouchesSession verifies the reset flow, success
and failure, leaves user and token exactly as they were.
*/
func TestStore_ResetPasswordNeverTouchesSession(t *testing.T) {
	provider := &fakeProvider{signInIdent: aliceIdentity()}
	store := newStore(provider, nil, nil)
	require.NoError(t, store.Login(context.Background(), "alice@canvio.app", "pw"))
	before := store.Snapshot()

	// ── 1. Success ──
	require.NoError(t, store.ResetPassword(context.Background(), "alice@canvio.app"))
	state := store.Snapshot()
	assert.Equal(t, before.User, state.User)
	assert.Equal(t, before.Token, state.Token)
	assert.Equal(t, []string{"alice@canvio.app"}, provider.resetEmails)

	// ── 2. Failure ──
	provider.resetErr = &identity.Error{Kind: identity.KindRateLimited}
	require.Error(t, store.ResetPassword(context.Background(), "alice@canvio.app"))
	state = store.Snapshot()
	assert.Equal(t, before.User, state.User)
	assert.Equal(t, before.Token, state.Token)
	assert.Equal(t, identity.KindRateLimited.Message(), state.Err)
}

/*
TestStore_RejectsOverlappingOperations verifies the double-submit policy: a
second suspendable operation started while one is in flight is rejected with
ErrBusy and leaves all observable state untouched.
*/
func TestStore_RejectsOverlappingOperations(t *testing.T) {
	block := make(chan struct{})
	provider := &fakeProvider{signInIdent: aliceIdentity(), block: block}
	store := newStore(provider, nil, nil)

	done := make(chan error, 1)
	go func() {
		done <- store.Login(context.Background(), "alice@canvio.app", "pw")
	}()

	// Wait for the first operation to enter the loading phase.
	require.Eventually(t, func() bool {
		return store.Snapshot().IsLoading
	}, time.Second, 5*time.Millisecond)

	err := store.Login(context.Background(), "bob@canvio.app", "pw")
	require.ErrorIs(t, err, session.ErrBusy)
	assert.True(t, store.Snapshot().IsLoading, "rejected call must not disturb the in-flight one")

	close(block)
	require.NoError(t, <-done)
	assert.Equal(t, "uid-alice", store.Snapshot().User.ID)
}

/*
TestStore_ProfileSyncIsBestEffort verifies a failing profile upsert does not
fail the sign-in: the session is installed regardless.
*/
func TestStore_ProfileSyncIsBestEffort(t *testing.T) {
	provider := &fakeProvider{signInIdent: aliceIdentity()}
	syncer := &fakeSyncer{err: assert.AnError}
	store := session.NewStore(session.Config{Provider: provider, Syncer: syncer})

	require.NoError(t, store.Login(context.Background(), "alice@canvio.app", "pw"))

	assert.Equal(t, []string{"uid-alice"}, syncer.upserts)
	assert.True(t, store.Snapshot().SignedIn())
	assert.Empty(t, store.Snapshot().Err)
}

/*
TestStore_SnapshotRoundTrip verifies persistence: a second store built over
the same snapshot source wakes up signed in, with transient fields reset.
*/
func TestStore_SnapshotRoundTrip(t *testing.T) {
	provider := &fakeProvider{signInIdent: aliceIdentity()}
	snapshots := &memorySnapshots{}
	first := newStore(provider, nil, snapshots)
	require.NoError(t, first.Login(context.Background(), "alice@canvio.app", "pw"))

	second := newStore(&fakeProvider{}, nil, snapshots)

	state := second.Snapshot()
	require.True(t, state.SignedIn())
	assert.Equal(t, "uid-alice", state.User.ID)
	assert.Equal(t, "token-alice", state.Token)
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.Err)
}

/*
TestStore_RehydrationDropsHalfPersistedSession verifies a snapshot carrying a
token without a user (or vice versa) is discarded rather than trusted.
*/
func TestStore_RehydrationDropsHalfPersistedSession(t *testing.T) {
	snapshots := &memorySnapshots{}
	require.NoError(t, snapshots.Save(map[string]any{"user": nil, "token": "orphan"}))

	store := newStore(&fakeProvider{}, nil, snapshots)

	state := store.Snapshot()
	assert.Nil(t, state.User)
	assert.Empty(t, state.Token)
}

/*
TestStore_PersistenceFailureIsInvisible verifies a broken snapshot store
never surfaces: operations still succeed and state still transitions.
*/
func TestStore_PersistenceFailureIsInvisible(t *testing.T) {
	provider := &fakeProvider{signInIdent: aliceIdentity()}
	snapshots := &memorySnapshots{err: assert.AnError}
	store := newStore(provider, nil, snapshots)

	require.NoError(t, store.Login(context.Background(), "alice@canvio.app", "pw"))
	assert.True(t, store.Snapshot().SignedIn())
}

/*
TestStore_SubscribeObservesTransitions verifies observers see the loading
phase and the terminal state, and that unsubscribe stops delivery.
*/
func TestStore_SubscribeObservesTransitions(t *testing.T) {
	provider := &fakeProvider{signInIdent: aliceIdentity()}
	store := newStore(provider, nil, nil)

	var mu sync.Mutex
	var seen []session.State
	unsubscribe := store.Subscribe(func(state session.State) {
		mu.Lock()
		seen = append(seen, state)
		mu.Unlock()
	})

	require.NoError(t, store.Login(context.Background(), "alice@canvio.app", "pw"))

	mu.Lock()
	require.Len(t, seen, 2)
	assert.True(t, seen[0].IsLoading)
	assert.Nil(t, seen[0].User)
	assert.False(t, seen[1].IsLoading)
	assert.Equal(t, "uid-alice", seen[1].User.ID)
	mu.Unlock()

	unsubscribe()
	store.Logout()

	mu.Lock()
	assert.Len(t, seen, 2, "no delivery after unsubscribe")
	mu.Unlock()
}

/*
TestStore_SignupInstallsSession verifies sign-up behaves like sign-in on
success, and that a duplicate email surfaces the dedicated message.
*/
func TestStore_SignupInstallsSession(t *testing.T) {
	provider := &fakeProvider{signUpIdent: &identity.Identity{
		ID:          "uid-new",
		Email:       "new@canvio.app",
		DisplayName: "New User",
		Token:       "token-new",
	}}
	store := newStore(provider, nil, nil)

	require.NoError(t, store.Signup(context.Background(), "New User", "new@canvio.app", "pw"))
	state := store.Snapshot()
	assert.Equal(t, "New User", state.User.Name, "provider display name wins over derivation")
	assert.Equal(t, "token-new", state.Token)

	provider.signUpErr = &identity.Error{Kind: identity.KindEmailInUse}
	require.Error(t, store.Signup(context.Background(), "Other", "new@canvio.app", "pw"))
	assert.Equal(t, identity.KindEmailInUse.Message(), store.Snapshot().Err)
}

// fakeFederated implements only the federated slice of the identity
// boundary, the same shape as [identity.OIDCProvider].
type fakeFederated struct {
	ident       *identity.Identity
	providerIDs []string
}

func (f *fakeFederated) SignInWithFederated(ctx context.Context, providerID string) (*identity.Identity, error) {
	f.providerIDs = append(f.providerIDs, providerID)
	return f.ident, nil
}

// The real federated adapter must keep satisfying the narrow interface.
var _ session.FederatedProvider = (*identity.OIDCProvider)(nil)

/*
TestStore_LoginWithGoogleUsesFederatedAdapter verifies the dedicated
federated adapter handles the flow when configured, and that the call
falls through to the primary provider when it is absent.
*/
func TestStore_LoginWithGoogleUsesFederatedAdapter(t *testing.T) {
	federated := &fakeFederated{ident: aliceIdentity()}
	store := session.NewStore(session.Config{
		Provider:  &fakeProvider{},
		Federated: federated,
	})

	require.NoError(t, store.LoginWithGoogle(context.Background()))
	require.Equal(t, []string{session.GoogleProviderID}, federated.providerIDs)
	assert.Equal(t, "uid-alice", store.Snapshot().User.ID)

	fallback := newStore(&fakeProvider{signInIdent: aliceIdentity()}, nil, nil)
	require.NoError(t, fallback.LoginWithGoogle(context.Background()))
	assert.True(t, fallback.Snapshot().SignedIn())
}
