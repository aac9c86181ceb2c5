// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/canvio/canvio/internal/platform/sec"
)

// federatedTimeout bounds how long we wait for the user to finish the
// browser consent screen before treating the flow as cancelled.
const federatedTimeout = 3 * time.Minute

// OIDCProvider implements the federated half of [Provider].
//
// # Flow
//
// The browser popup of the web client becomes a loopback redirect here:
//
//  1. Start a one-shot listener on the configured loopback port.
//  2. Open the provider consent URL in the system browser.
//  3. Exchange the returned code and verify the ID token via go-oidc.
//  4. Hand the verified federated token to the backend, which mints the
//     Canvio session credential (trust decisions stay server-side).
//
// A listener that cannot start maps to [KindPopupBlocked]; a user who
// abandons the consent screen maps to [KindPopupCancelled].
type OIDCProvider struct {
	issuer       string
	clientID     string
	clientSecret string
	callbackPort int

	// backend finishes the handshake (accounts:signInWithIdp).
	backendBaseURL string
	httpClient     *http.Client
}

// OIDCConfig carries the settings needed to construct an [OIDCProvider].
type OIDCConfig struct {
	Issuer         string
	ClientID       string
	ClientSecret   string
	CallbackPort   int
	BackendBaseURL string
}

// NewOIDCProvider creates the federated sign-in adapter.
func NewOIDCProvider(cfg OIDCConfig, httpClient *http.Client) *OIDCProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &OIDCProvider{
		issuer:         cfg.Issuer,
		clientID:       cfg.ClientID,
		clientSecret:   cfg.ClientSecret,
		callbackPort:   cfg.CallbackPort,
		backendBaseURL: cfg.BackendBaseURL,
		httpClient:     httpClient,
	}
}

// callbackResult is delivered by the loopback handler.
type callbackResult struct {
	code string
	err  error
}

// SignInWithFederated runs the full federated flow for the provider ID.
func (provider *OIDCProvider) SignInWithFederated(ctx context.Context, providerID string) (*Identity, error) {
	// ── 1. Provider Discovery ─────────────────────────────────────────────

	oidcProvider, err := oidc.NewProvider(ctx, provider.issuer)
	if err != nil {
		return nil, NetworkError(err)
	}

	redirectURL := fmt.Sprintf("http://127.0.0.1:%d/callback", provider.callbackPort)
	oauthConfig := oauth2.Config{
		ClientID:     provider.clientID,
		ClientSecret: provider.clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	// CSRF protection for the loopback redirect.
	state, err := sec.GenerateSecureToken(16)
	if err != nil {
		return nil, NewError(KindUnknown, "", err)
	}

	// ── 2. Loopback Listener (the "popup") ────────────────────────────────

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", provider.callbackPort))
	if err != nil {
		return nil, &Error{Kind: KindPopupBlocked, Cause: fmt.Errorf("identity: cannot open callback listener: %w", err)}
	}

	results := make(chan callbackResult, 1)
	server := &http.Server{Handler: callbackHandler(state, results)}
	go func() { _ = server.Serve(listener) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	// ── 3. Browser Hand-off ───────────────────────────────────────────────

	authURL := oauthConfig.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
	if err := openBrowser(authURL); err != nil {
		return nil, &Error{Kind: KindPopupBlocked, Cause: fmt.Errorf("identity: cannot open browser: %w", err)}
	}

	flowCtx, cancel := context.WithTimeout(ctx, federatedTimeout)
	defer cancel()

	var code string
	select {
	case result := <-results:
		if result.err != nil {
			return nil, &Error{Kind: KindPopupCancelled, Cause: result.err}
		}
		code = result.code
	case <-flowCtx.Done():
		return nil, &Error{Kind: KindPopupCancelled, Cause: flowCtx.Err()}
	}

	// ── 4. Code Exchange & Verification ───────────────────────────────────

	token, err := oauthConfig.Exchange(flowCtx, code)
	if err != nil {
		return nil, NetworkError(err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, NewError(KindUnknown, "", errors.New("identity: no id_token in provider response"))
	}

	verifier := oidcProvider.Verifier(&oidc.Config{ClientID: provider.clientID})
	if _, err := verifier.Verify(flowCtx, rawIDToken); err != nil {
		return nil, NewError(KindUnknown, "", fmt.Errorf("identity: federated token failed verification: %w", err))
	}

	// ── 5. Backend Handshake ──────────────────────────────────────────────

	return provider.exchangeWithBackend(flowCtx, providerID, rawIDToken)
}

// exchangeWithBackend trades the verified federated token for a Canvio
// session credential via accounts:signInWithIdp.
func (provider *OIDCProvider) exchangeWithBackend(ctx context.Context, providerID, rawIDToken string) (*Identity, error) {
	payload, err := json.Marshal(map[string]any{
		"providerId":        providerID,
		"idToken":           rawIDToken,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, NewError(KindUnknown, "", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, provider.backendBaseURL+"/v1/accounts:signInWithIdp", bytes.NewReader(payload))
	if err != nil {
		return nil, NewError(KindUnknown, "", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := provider.httpClient.Do(request)
	if err != nil {
		return nil, NetworkError(err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode >= 400 {
		var failure errorResponse
		if err := json.NewDecoder(response.Body).Decode(&failure); err != nil {
			return nil, NewError(KindUnknown, "", fmt.Errorf("identity: unreadable error payload (HTTP %d): %w", response.StatusCode, err))
		}
		code := failure.Error.Message
		return nil, NewError(ClassifyCode(code), code, nil)
	}

	account := &accountResponse{}
	if err := json.NewDecoder(response.Body).Decode(account); err != nil {
		return nil, NewError(KindUnknown, "", fmt.Errorf("identity: cannot decode response: %w", err))
	}

	return account.identity(), nil
}

// callbackHandler serves the one-shot loopback redirect.
func callbackHandler(expectedState string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		query := request.URL.Query()

		if query.Get("state") != expectedState {
			results <- callbackResult{err: errors.New("identity: state mismatch on callback")}
			http.Error(writer, "State mismatch", http.StatusBadRequest)
			return
		}

		if providerError := query.Get("error"); providerError != "" {
			// access_denied is the consent screen's cancel button.
			results <- callbackResult{err: fmt.Errorf("identity: provider returned %q", providerError)}
			fmt.Fprintln(writer, "Sign-in was cancelled. You can close this window.")
			return
		}

		results <- callbackResult{code: query.Get("code")}
		fmt.Fprintln(writer, "Signed in. You can close this window and return to the terminal.")
	})
}

// openBrowser launches the system browser at the given URL.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
