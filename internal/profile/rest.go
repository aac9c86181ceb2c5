// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/canvio/canvio/internal/identity"
)

// defaultHTTPTimeout bounds a single profile-store round trip.
const defaultHTTPTimeout = 10 * time.Second

// RESTSyncer implements [Syncer] against the backend's profile endpoints.
//
// # Upsert Shape
//
// The adapter mirrors the original client's document flow: read the record,
// then either create it in full (first sign-in) or patch only the
// last-login marker (returning user). Both legs are idempotent.
type RESTSyncer struct {
	baseURL    string
	token      func() string
	httpClient *http.Client
}

// NewRESTSyncer creates a profile-store adapter.
//
// token supplies the current session credential per call; profile writes
// always ride on the caller's authenticated session.
func NewRESTSyncer(baseURL string, token func() string, httpClient *http.Client) *RESTSyncer {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &RESTSyncer{baseURL: baseURL, token: token, httpClient: httpClient}
}

// Upsert creates the record or bumps its last-login marker.
//
// Writes ride on the freshly issued credential carried by ident rather than
// the session store's token, which has not been installed yet at this point
// in the sign-in flow.
func (syncer *RESTSyncer) Upsert(ctx context.Context, ident *identity.Identity) error {
	existing, err := syncer.fetch(ctx, ident.ID, ident.Token)
	if err != nil {
		return err
	}

	if existing == nil {
		// First sign-in: create the full record. Display name falls back to
		// the email local-part the same way the session container derives it.
		displayName := ident.DisplayName
		if displayName == "" {
			displayName, _, _ = strings.Cut(ident.Email, "@")
		}

		record := Profile{
			UID:         ident.ID,
			Email:       ident.Email,
			DisplayName: displayName,
			PhotoURL:    ident.PhotoURL,
			Role:        "member",
			Canvases:    []string{},
		}
		return syncer.do(ctx, http.MethodPost, "/v1/profiles/"+ident.ID, record, ident.Token)
	}

	// Returning user: only the last-login marker moves.
	return syncer.do(ctx, http.MethodPatch, "/v1/profiles/"+ident.ID, map[string]any{
		"last_login": time.Now().UTC(),
	}, ident.Token)
}

// Fetch returns the stored profile, or nil when no record exists.
func (syncer *RESTSyncer) Fetch(ctx context.Context, uid string) (*Profile, error) {
	return syncer.fetch(ctx, uid, "")
}

func (syncer *RESTSyncer) fetch(ctx context.Context, uid, token string) (*Profile, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, syncer.baseURL+"/v1/profiles/"+uid, nil)
	if err != nil {
		return nil, fmt.Errorf("profile: cannot build request: %w", err)
	}
	syncer.authorize(request, token)

	response, err := syncer.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("profile: fetch failed: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if response.StatusCode >= 400 {
		return nil, fmt.Errorf("profile: fetch returned HTTP %d", response.StatusCode)
	}

	var envelope struct {
		Data Profile `json:"data"`
	}
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("profile: cannot decode record: %w", err)
	}

	return &envelope.Data, nil
}

// do executes a single write against the profile store.
func (syncer *RESTSyncer) do(ctx context.Context, method, path string, payload any, token string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("profile: cannot encode payload: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, method, syncer.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("profile: cannot build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	syncer.authorize(request, token)

	response, err := syncer.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("profile: write failed: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode >= 400 {
		return fmt.Errorf("profile: write returned HTTP %d", response.StatusCode)
	}

	return nil
}

// authorize attaches a session credential: the explicit token when given,
// otherwise whatever the session currently holds.
func (syncer *RESTSyncer) authorize(request *http.Request, token string) {
	if token == "" && syncer.token != nil {
		token = syncer.token()
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
}
