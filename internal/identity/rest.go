// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// defaultHTTPTimeout bounds a single account-API round trip.
const defaultHTTPTimeout = 15 * time.Second

// RESTProvider implements [Provider] against the backend's account API.
//
// # Wire Protocol
//
// The endpoints mirror the vendor identity toolkit:
//
//   - POST /v1/accounts:signUp
//   - POST /v1/accounts:signInWithPassword
//   - POST /v1/accounts:sendOobCode
//
// Failures arrive as {"error": {"message": "<CODE>"}} payloads; the code is
// classified via [ClassifyCode]. Transport failures become [KindNetworkFailure].
type RESTProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewRESTProvider creates a provider adapter for the given API base URL.
// A nil client gets a default with a bounded timeout.
func NewRESTProvider(baseURL string, httpClient *http.Client) *RESTProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &RESTProvider{baseURL: baseURL, httpClient: httpClient}
}

// accountResponse is the success payload shape of the account endpoints.
type accountResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
	IDToken     string `json:"idToken"`
}

// errorResponse is the failure payload shape of the account endpoints.
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignInWithCredentials verifies an email/password pair against the backend.
func (provider *RESTProvider) SignInWithCredentials(ctx context.Context, email, password string) (*Identity, error) {
	payload := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}

	account, err := provider.post(ctx, "/v1/accounts:signInWithPassword", payload)
	if err != nil {
		return nil, err
	}

	return account.identity(), nil
}

// SignUp creates a new account with the given profile details.
func (provider *RESTProvider) SignUp(ctx context.Context, name, email, password string) (*Identity, error) {
	payload := map[string]any{
		"email":             email,
		"password":          password,
		"displayName":       name,
		"returnSecureToken": true,
	}

	account, err := provider.post(ctx, "/v1/accounts:signUp", payload)
	if err != nil {
		return nil, err
	}

	return account.identity(), nil
}

// SignInWithFederated is not supported over the plain account API; federated
// flows go through [OIDCProvider].
func (provider *RESTProvider) SignInWithFederated(ctx context.Context, providerID string) (*Identity, error) {
	return nil, &Error{
		Kind:    KindPopupBlocked,
		Code:    "OPERATION_NOT_ALLOWED",
		Message: fmt.Sprintf("Federated sign-in with %q is not available here", providerID),
	}
}

// SendPasswordReset triggers the out-of-band reset message for the email.
// The outcome never carries an identity; only the classified error matters.
func (provider *RESTProvider) SendPasswordReset(ctx context.Context, email string) error {
	payload := map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}

	_, err := provider.post(ctx, "/v1/accounts:sendOobCode", payload)
	return err
}

// post executes one account-API call and normalizes every failure into a
// classified [*Error].
func (provider *RESTProvider) post(ctx context.Context, path string, payload map[string]any) (*accountResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewError(KindUnknown, "", fmt.Errorf("identity: cannot encode request: %w", err))
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, provider.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, NewError(KindUnknown, "", fmt.Errorf("identity: cannot build request: %w", err))
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
		if code == "" && response.StatusCode == http.StatusTooManyRequests {
			// Infrastructure-level throttling answers before the account API
			// and carries no toolkit code.
			return nil, NewError(KindRateLimited, "", nil)
		}
		return nil, NewError(ClassifyCode(code), code, nil)
	}

	account := &accountResponse{}
	if err := json.NewDecoder(response.Body).Decode(account); err != nil {
		return nil, NewError(KindUnknown, "", fmt.Errorf("identity: cannot decode response: %w", err))
	}

	return account, nil
}

// identity converts the wire payload into the domain [*Identity].
func (account *accountResponse) identity() *Identity {
	return &Identity{
		ID:          account.LocalID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		PhotoURL:    account.PhotoURL,
		Token:       account.IDToken,
	}
}
