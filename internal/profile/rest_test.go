// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package profile_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canvio/canvio/internal/identity"
	"github.com/canvio/canvio/internal/profile"
)

/*
TestRESTSyncer_FirstSignInCreatesRecord verifies the insert leg of the
upsert: no existing record means a full POST with a derived display name.
*/
func TestRESTSyncer_FirstSignInCreatesRecord(t *testing.T) {
	var created profile.Profile
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.Method {
		case http.MethodGet:
			writer.WriteHeader(http.StatusNotFound)
		case http.MethodPost:
			require.NoError(t, json.NewDecoder(request.Body).Decode(&created))
			assert.Equal(t, "Bearer fresh-token", request.Header.Get("Authorization"))
			writer.WriteHeader(http.StatusCreated)
		default:
			t.Fatalf("unexpected method %s", request.Method)
		}
	}))
	defer server.Close()

	syncer := profile.NewRESTSyncer(server.URL, nil, server.Client())
	err := syncer.Upsert(context.Background(), &identity.Identity{
		ID:    "uid-1",
		Email: "alice@b.com",
		Token: "fresh-token",
	})

	require.NoError(t, err)
	assert.Equal(t, "uid-1", created.UID)
	assert.Equal(t, "alice@b.com", created.Email)
	assert.Equal(t, "alice", created.DisplayName, "display name derives from the email local-part")
	assert.NotNil(t, created.Canvases)
}

/*
TestRESTSyncer_ReturningSignInTouchesLastLogin verifies the update leg: an
existing record only gets its last-login marker patched.
*/
func TestRESTSyncer_ReturningSignInTouchesLastLogin(t *testing.T) {
	var patched map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.Method {
		case http.MethodGet:
			writer.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(writer).Encode(map[string]any{
				"data": map[string]any{"uid": "uid-1", "email": "a@b.com"},
			}))
		case http.MethodPatch:
			require.NoError(t, json.NewDecoder(request.Body).Decode(&patched))
			writer.WriteHeader(http.StatusOK)
		default:
			t.Fatalf("unexpected method %s", request.Method)
		}
	}))
	defer server.Close()

	syncer := profile.NewRESTSyncer(server.URL, nil, server.Client())
	err := syncer.Upsert(context.Background(), &identity.Identity{ID: "uid-1", Email: "a@b.com", Token: "t"})

	require.NoError(t, err)
	assert.Contains(t, patched, "last_login")
	assert.Len(t, patched, 1, "only the last-login marker moves for returning users")
}

/*
TestRESTSyncer_UpsertIsIdempotent verifies calling Upsert twice in a row
settles on the update leg without error.
*/
func TestRESTSyncer_UpsertIsIdempotent(t *testing.T) {
	exists := false
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.Method {
		case http.MethodGet:
			if !exists {
				writer.WriteHeader(http.StatusNotFound)
				return
			}
			writer.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(writer).Encode(map[string]any{
				"data": map[string]any{"uid": "uid-1"},
			}))
		case http.MethodPost:
			exists = true
			writer.WriteHeader(http.StatusCreated)
		case http.MethodPatch:
			writer.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	syncer := profile.NewRESTSyncer(server.URL, nil, server.Client())
	ident := &identity.Identity{ID: "uid-1", Email: "a@b.com", Token: "t"}

	require.NoError(t, syncer.Upsert(context.Background(), ident))
	require.NoError(t, syncer.Upsert(context.Background(), ident))
}
