// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package canvas_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canvio/canvio/internal/canvas"
	"github.com/canvio/canvio/pkg/pagination"
)

/*
TestRESTClient_ListPassesTokenAndPagination verifies the bearer token and
page parameters reach the backend and the envelope decodes.
*/
func TestRESTClient_ListPassesTokenAndPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer session-token", request.Header.Get("Authorization"))
		assert.Equal(t, "2", request.URL.Query().Get("page"))
		assert.Equal(t, "10", request.URL.Query().Get("limit"))

		writer.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(writer).Encode(map[string]any{
			"data": []map[string]any{{"id": "cv-1", "name": "Roadmap", "slug": "roadmap"}},
			"meta": map[string]any{"page": 2, "limit": 10, "total": 11, "total_pages": 2},
		}))
	}))
	defer server.Close()

	client := canvas.NewRESTClient(server.URL, func() string { return "session-token" }, server.Client())
	canvases, meta, err := client.List(context.Background(), pagination.Params{Page: 2, Limit: 10})

	require.NoError(t, err)
	require.Len(t, canvases, 1)
	assert.Equal(t, "cv-1", canvases[0].ID)
	assert.Equal(t, 11, meta.Total)
}

/*
TestRESTClient_CreateDecodesCanvas verifies the create call posts the name
and template and returns the backend's record.
*/
func TestRESTClient_CreateDecodesCanvas(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, http.MethodPost, request.Method)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(request.Body).Decode(&payload))
		assert.Equal(t, "Sprint Retro", payload["name"])
		assert.Equal(t, "retro", payload["template"])

		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusCreated)
		require.NoError(t, json.NewEncoder(writer).Encode(map[string]any{
			"data": map[string]any{"id": "cv-9", "name": "Sprint Retro", "slug": "sprint-retro"},
		}))
	}))
	defer server.Close()

	client := canvas.NewRESTClient(server.URL, nil, server.Client())
	created, err := client.Create(context.Background(), "Sprint Retro", "retro")

	require.NoError(t, err)
	assert.Equal(t, "cv-9", created.ID)
	assert.Equal(t, "sprint-retro", created.Slug)
}

/*
TestRESTClient_UnlockSurfacesBackendMessage verifies a rejected unlock comes
back with the backend's message rather than a bare status code.
*/
func TestRESTClient_UnlockSurfacesBackendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusForbidden)
		require.NoError(t, json.NewEncoder(writer).Encode(map[string]any{
			"error": "Only the locker can unlock this canvas",
			"code":  "FORBIDDEN",
		}))
	}))
	defer server.Close()

	client := canvas.NewRESTClient(server.URL, nil, server.Client())
	err := client.Unlock(context.Background(), "cv-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Only the locker can unlock this canvas")
}
