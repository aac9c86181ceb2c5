// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/canvio/canvio/pkg/pagination"
)

// defaultHTTPTimeout bounds a single dashboard round trip.
const defaultHTTPTimeout = 10 * time.Second

// RESTClient talks to the backend's canvas endpoints on behalf of the
// signed-in user. Every request rides on the current session token.
type RESTClient struct {
	baseURL    string
	token      func() string
	httpClient *http.Client
}

// NewRESTClient creates a dashboard client. token supplies the current
// session credential per call.
func NewRESTClient(baseURL string, token func() string, httpClient *http.Client) *RESTClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &RESTClient{baseURL: baseURL, token: token, httpClient: httpClient}
}

// List returns one page of the user's canvases plus pagination metadata.
func (client *RESTClient) List(ctx context.Context, params pagination.Params) ([]Canvas, pagination.Meta, error) {
	path := fmt.Sprintf("/v1/canvases?page=%d&limit=%d", params.Page, params.Limit)

	var envelope struct {
		Data []Canvas        `json:"data"`
		Meta pagination.Meta `json:"meta"`
	}
	if err := client.do(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, pagination.Meta{}, err
	}
	return envelope.Data, envelope.Meta, nil
}

// Create makes a new canvas from the named template and returns it.
func (client *RESTClient) Create(ctx context.Context, name, template string) (*Canvas, error) {
	payload := map[string]string{"name": name, "template": template}

	var envelope struct {
		Data Canvas `json:"data"`
	}
	if err := client.do(ctx, http.MethodPost, "/v1/canvases", payload, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// Rename changes the canvas display name. The backend re-derives the slug.
func (client *RESTClient) Rename(ctx context.Context, id, name string) error {
	return client.do(ctx, http.MethodPatch, "/v1/canvases/"+id, map[string]string{"name": name}, nil)
}

// Lock marks the canvas read-only and records the caller as the locker.
func (client *RESTClient) Lock(ctx context.Context, id string) error {
	return client.do(ctx, http.MethodPost, "/v1/canvases/"+id+"/lock", nil, nil)
}

// Unlock releases the lock. The backend rejects callers other than the
// locker.
func (client *RESTClient) Unlock(ctx context.Context, id string) error {
	return client.do(ctx, http.MethodPost, "/v1/canvases/"+id+"/unlock", nil, nil)
}

// Delete removes the canvas permanently.
func (client *RESTClient) Delete(ctx context.Context, id string) error {
	return client.do(ctx, http.MethodDelete, "/v1/canvases/"+id, nil, nil)
}

// do executes one authenticated request, optionally decoding the response
// envelope into target.
func (client *RESTClient) do(ctx context.Context, method, path string, payload, target any) error {
	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("canvas: cannot encode payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("canvas: cannot build request: %w", err)
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if client.token != nil {
		if token := client.token(); token != "" {
			request.Header.Set("Authorization", "Bearer "+token)
		}
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("canvas: request failed: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode >= 400 {
		return decodeError(response)
	}

	if target != nil {
		if err := json.NewDecoder(response.Body).Decode(target); err != nil {
			return fmt.Errorf("canvas: cannot decode response: %w", err)
		}
	}
	return nil
}

// decodeError extracts the backend's error message when present.
func decodeError(response *http.Response) error {
	var envelope struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(response.Body).Decode(&envelope); err == nil && envelope.Error != "" {
		return fmt.Errorf("canvas: %s (HTTP %d)", envelope.Error, response.StatusCode)
	}
	return fmt.Errorf("canvas: request returned HTTP %d", response.StatusCode)
}
