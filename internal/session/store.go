// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/canvio/canvio/internal/identity"
	"github.com/canvio/canvio/internal/platform/snapshot"
	"github.com/canvio/canvio/internal/platform/validate"
	"github.com/canvio/canvio/internal/profile"
)

// ErrBusy is returned when a suspendable operation is invoked while another
// one is still in flight. The rejected call leaves all observable state
// untouched (double-submit policy: reject-while-busy).
var ErrBusy = errors.New("session: another operation is in flight")

// GoogleProviderID is the federated provider the client offers today.
const GoogleProviderID = "google.com"

// Store is the session state container.
//
// # Contract
//
// Suspendable operations (Login, Signup, LoginWithGoogle, ResetPassword)
// never panic and never leak provider errors: every failure is translated
// into the observable error message. The recorded error is also returned so
// Go call sites can branch on it, but the state is authoritative — the view
// layer may ignore the return entirely.
//
// # Concurrency
//
// All mutations happen under one mutex; observers only ever see a state
// where user and token move together (no partial transition is visible).
// At most one suspendable operation runs at a time; see [ErrBusy].
type Store struct {
	provider  identity.Provider
	federated FederatedProvider
	syncer    profile.Syncer
	snapshots snapshot.Store
	log       *slog.Logger

	mu          sync.Mutex
	state       State
	busy        bool
	subscribers map[int]func(State)
	nextSubID   int
}

// FederatedProvider runs the popup-style federated sign-in flow. It is the
// narrow slice of the identity boundary a federated-only adapter (such as
// [identity.OIDCProvider]) implements; the full [identity.Provider] method
// set satisfies it too.
type FederatedProvider interface {
	SignInWithFederated(ctx context.Context, providerID string) (*identity.Identity, error)
}

// Config carries the constructor dependencies for [NewStore].
type Config struct {
	// Provider handles credential sign-in, sign-up, and password resets.
	Provider identity.Provider

	// Federated handles popup-style sign-in. Optional; when nil, federated
	// calls fall through to Provider.
	Federated FederatedProvider

	// Syncer is called best-effort after successful sign-ins. Optional.
	Syncer profile.Syncer

	// Snapshots persists the session across restarts. Optional; when nil
	// the session lives only in memory.
	Snapshots snapshot.Store

	Logger *slog.Logger
}

// persistedSession is the durable subset of [State]. IsLoading and Err are
// transient by design and never survive a restart.
type persistedSession struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// NewStore constructs the session container and rehydrates any previously
// persisted session before the first observation.
func NewStore(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store := &Store{
		provider:    cfg.Provider,
		federated:   cfg.Federated,
		syncer:      cfg.Syncer,
		snapshots:   cfg.Snapshots,
		log:         logger,
		subscribers: make(map[int]func(State)),
	}

	store.rehydrate()
	return store
}

// rehydrate loads the persisted snapshot verbatim. Corrupt or invariant-
// violating payloads are discarded; the session starts empty instead.
func (store *Store) rehydrate() {
	if store.snapshots == nil {
		return
	}

	var persisted persistedSession
	if err := store.snapshots.Load(&persisted); err != nil {
		if !errors.Is(err, snapshot.ErrNotFound) {
			store.log.Warn("session_snapshot_unreadable", slog.Any("error", err))
		}
		return
	}

	// Token present iff user present; a half-persisted pair is dropped.
	if persisted.User == nil || persisted.Token == "" {
		return
	}

	store.state = State{User: persisted.User, Token: persisted.Token}
}

// # Observation

// Snapshot returns a copy of the current state.
func (store *Store) Snapshot() State {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.state.clone()
}

// Token returns the current opaque session credential, or "" when signed out.
func (store *Store) Token() string {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.state.Token
}

// Subscribe registers an observer invoked after every state mutation with a
// copy of the new state. The returned function unsubscribes.
func (store *Store) Subscribe(fn func(State)) func() {
	store.mu.Lock()
	defer store.mu.Unlock()

	id := store.nextSubID
	store.nextSubID++
	store.subscribers[id] = fn

	return func() {
		store.mu.Lock()
		defer store.mu.Unlock()
		delete(store.subscribers, id)
	}
}

// # Suspendable Operations

// Login authenticates an email/password pair.
//
// On success the user and token are installed together and the state is
// persisted. On failure the previously authenticated session (if any) is
// left exactly as it was; only the error message changes.
func (store *Store) Login(ctx context.Context, email, password string) error {
	if err := store.begin(); err != nil {
		return err
	}

	if err := checkCredentials(email, password); err != nil {
		return store.fail(err)
	}

	ident, err := store.provider.SignInWithCredentials(ctx, email, password)
	if err != nil {
		return store.fail(err)
	}

	store.syncProfile(ctx, ident)
	store.succeed(ident)
	return nil
}

// Signup creates a fresh account with the given display name.
//
// A duplicate email is the provider's call to make; it comes back as a
// classified failure like any other.
func (store *Store) Signup(ctx context.Context, name, email, password string) error {
	if err := store.begin(); err != nil {
		return err
	}

	if err := checkCredentials(email, password); err != nil {
		return store.fail(err)
	}

	ident, err := store.provider.SignUp(ctx, name, email, password)
	if err != nil {
		return store.fail(err)
	}

	store.syncProfile(ctx, ident)
	store.succeed(ident)
	return nil
}

// LoginWithGoogle runs the federated popup-style sign-in flow.
func (store *Store) LoginWithGoogle(ctx context.Context) error {
	if err := store.begin(); err != nil {
		return err
	}

	provider := store.federated
	if provider == nil {
		provider = store.provider
	}

	ident, err := provider.SignInWithFederated(ctx, GoogleProviderID)
	if err != nil {
		return store.fail(err)
	}

	store.syncProfile(ctx, ident)
	store.succeed(ident)
	return nil
}

// ResetPassword triggers the out-of-band reset flow for the email.
//
// It never mutates user or token, regardless of outcome.
func (store *Store) ResetPassword(ctx context.Context, email string) error {
	if err := store.begin(); err != nil {
		return err
	}

	validator := &validate.Validator{}
	if err := validator.Required("email", email).Email("email", email).Err(); err != nil {
		return store.fail(&identity.Error{Kind: identity.KindInvalidEmailFormat})
	}

	if err := store.provider.SendPasswordReset(ctx, email); err != nil {
		return store.fail(err)
	}

	store.finish(func(state *State) {})
	return nil
}

// # Synchronous Operations

// Logout unconditionally resets the session to the signed-out state.
// Calling it while already signed out is a no-op observable state-wise.
func (store *Store) Logout() {
	store.mutate(func(state *State) {
		state.User = nil
		state.Token = ""
		state.Err = ""
	})
}

// UpdateUser merges the patch into the current user. It is a silent no-op
// while unauthenticated. ID, Email, and CreatedAt cannot change; the patch
// type has no such fields.
func (store *Store) UpdateUser(patch UserPatch) {
	store.mutate(func(state *State) {
		if state.User == nil {
			return
		}
		if patch.Name != nil {
			state.User.Name = *patch.Name
		}
		if patch.AvatarURL != nil {
			state.User.AvatarURL = *patch.AvatarURL
		}
		if patch.Role != nil {
			state.User.Role = *patch.Role
		}
	})
}

// ClearError unconditionally clears the error message.
func (store *Store) ClearError() {
	store.mutate(func(state *State) {
		state.Err = ""
	})
}

// # State Transition Internals

// begin marks a suspendable operation as in flight: loading on, error
// cleared. Rejects with [ErrBusy] when one is already running, leaving all
// observable state untouched.
func (store *Store) begin() error {
	store.mu.Lock()
	if store.busy {
		store.mu.Unlock()
		return ErrBusy
	}
	store.busy = true
	store.state.IsLoading = true
	store.state.Err = ""
	published := store.state.clone()
	store.mu.Unlock()

	store.persist(published)
	store.notify(published)
	return nil
}

// finish applies a terminal transition for an in-flight operation and
// drops the loading flag in the same step, so observers never see an
// intermediate state.
func (store *Store) finish(apply func(*State)) {
	store.mu.Lock()
	apply(&store.state)
	store.state.IsLoading = false
	store.busy = false
	published := store.state.clone()
	store.mu.Unlock()

	store.persist(published)
	store.notify(published)
}

// succeed installs the authenticated identity atomically.
func (store *Store) succeed(ident *identity.Identity) {
	user := userFromIdentity(ident)
	store.finish(func(state *State) {
		state.User = user
		state.Token = ident.Token
		state.Err = ""
	})
}

// fail records the classified failure message and returns the same error.
// user/token stay exactly as they were.
func (store *Store) fail(err error) error {
	message := errorMessage(err)
	store.finish(func(state *State) {
		state.Err = message
	})
	return err
}

// mutate applies a synchronous transition (no loading discipline).
func (store *Store) mutate(apply func(*State)) {
	store.mu.Lock()
	apply(&store.state)
	published := store.state.clone()
	store.mu.Unlock()

	store.persist(published)
	store.notify(published)
}

// persist writes the durable subset fire-and-forget: failures are logged,
// never surfaced, and no write-ack is awaited beyond the call itself.
func (store *Store) persist(state State) {
	if store.snapshots == nil {
		return
	}
	payload := persistedSession{User: state.User, Token: state.Token}
	if err := store.snapshots.Save(payload); err != nil {
		store.log.Warn("session_snapshot_write_failed", slog.Any("error", err))
	}
}

// notify fans the new state out to observers outside the lock.
func (store *Store) notify(state State) {
	store.mu.Lock()
	observers := make([]func(State), 0, len(store.subscribers))
	for _, fn := range store.subscribers {
		observers = append(observers, fn)
	}
	store.mu.Unlock()

	for _, fn := range observers {
		fn(state.clone())
	}
}

// syncProfile runs the best-effort profile upsert. Authentication success
// is authoritative; a sync failure is logged and changes nothing.
func (store *Store) syncProfile(ctx context.Context, ident *identity.Identity) {
	if store.syncer == nil {
		return
	}
	if err := store.syncer.Upsert(ctx, ident); err != nil {
		store.log.Warn("profile_sync_failed",
			slog.String("uid", ident.ID),
			slog.Any("error", err),
		)
	}
}

// # Helpers

// checkCredentials validates inputs locally before delegating, so obviously
// malformed requests never leave the client.
func checkCredentials(email, password string) error {
	validator := &validate.Validator{}
	validator.Required("email", email).Email("email", email)
	if validator.HasErrors() {
		return &identity.Error{Kind: identity.KindInvalidEmailFormat}
	}

	if strings.TrimSpace(password) == "" {
		return &identity.Error{Kind: identity.KindInvalidCredentials, Message: "Password is required"}
	}

	return nil
}

// userFromIdentity builds the session user from a provider identity,
// deriving the display name from the email local-part when absent.
func userFromIdentity(ident *identity.Identity) *User {
	name := ident.DisplayName
	if name == "" {
		name, _, _ = strings.Cut(ident.Email, "@")
	}

	return &User{
		ID:        ident.ID,
		Email:     ident.Email,
		Name:      name,
		AvatarURL: ident.PhotoURL,
		Role:      RoleUser,
		CreatedAt: time.Now().UTC(),
	}
}

// errorMessage extracts the user-facing text for any failure. Unclassified
// errors still produce a non-empty message.
func errorMessage(err error) string {
	var providerErr *identity.Error
	if errors.As(err, &providerErr) {
		return providerErr.Error()
	}
	return identity.KindUnknown.Message()
}
