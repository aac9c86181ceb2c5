// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package emulator

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/canvio/canvio/internal/platform/apperr"
	"github.com/canvio/canvio/internal/platform/middleware"
	requestutil "github.com/canvio/canvio/internal/platform/request"
	"github.com/canvio/canvio/internal/platform/respond"
	"github.com/canvio/canvio/internal/platform/validate"
)

// ProfileRecord is the durable per-account profile document.
type ProfileRecord struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Role        string    `json:"role,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastLogin   time.Time `json:"last_login"`
	Canvases    []string  `json:"canvases"`
}

// ProfileStore persists profile records.
type ProfileStore interface {
	Get(ctx context.Context, uid string) (*ProfileRecord, error)
	Create(ctx context.Context, record *ProfileRecord) error
	TouchLastLogin(ctx context.Context, uid string, at time.Time) error
}

// ProfileHandler implements the /profiles endpoints.
//
// The upsert split lives on the client side (read, then create or patch);
// the emulator only offers the three primitive operations.
type ProfileHandler struct {
	store ProfileStore
}

// NewProfileHandler constructs a new [ProfileHandler].
func NewProfileHandler(store ProfileStore) *ProfileHandler {
	return &ProfileHandler{store: store}
}

// Routes returns a [chi.Router] with the profile endpoints, mounted under
// /v1/profiles.
//
// # Endpoints
//   - GET   /{uid} : Fetches the record (404 when absent).
//   - POST  /{uid} : Creates the full record.
//   - PATCH /{uid} : Bumps the last-login marker.
//
// All three require an authenticated session.
func (handler *ProfileHandler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/{uid}", handler.get)
	router.Post("/{uid}", handler.create)
	router.Patch("/{uid}", handler.touch)

	return router
}

// get handles GET /v1/profiles/{uid}.
func (handler *ProfileHandler) get(writer http.ResponseWriter, request *http.Request) {
	uid := requestutil.ID(request, "uid")

	record, err := handler.store.Get(request.Context(), uid)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, record)
}

// create handles POST /v1/profiles/{uid}.
func (handler *ProfileHandler) create(writer http.ResponseWriter, request *http.Request) {
	uid := requestutil.ID(request, "uid")

	var record ProfileRecord
	if err := requestutil.DecodeJSON(request, &record); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if err := validator.Required("email", record.Email).Email("email", record.Email).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// The path segment is authoritative over any uid in the body.
	record.UID = uid
	if record.Canvases == nil {
		record.Canvases = []string{}
	}
	now := time.Now()
	record.CreatedAt = now
	record.LastLogin = now

	if _, err := handler.store.Get(request.Context(), uid); err == nil {
		respond.Error(writer, request, apperr.Conflict("Profile already exists"))
		return
	}

	if err := handler.store.Create(request.Context(), &record); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, record)
}

// touch handles PATCH /v1/profiles/{uid}.
func (handler *ProfileHandler) touch(writer http.ResponseWriter, request *http.Request) {
	uid := requestutil.ID(request, "uid")

	var patch struct {
		LastLogin time.Time `json:"last_login"`
	}
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if patch.LastLogin.IsZero() {
		patch.LastLogin = time.Now()
	}

	if err := handler.store.TouchLastLogin(request.Context(), uid, patch.LastLogin); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"uid": uid, "last_login": patch.LastLogin})
}
