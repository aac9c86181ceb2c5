// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package emulator

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canvio/canvio/internal/platform/middleware"
	requestutil "github.com/canvio/canvio/internal/platform/request"
	"github.com/canvio/canvio/internal/platform/respond"
	"github.com/canvio/canvio/pkg/pagination"
)

// CanvasHandler implements the /canvases endpoints.
type CanvasHandler struct {
	service *CanvasService
}

// NewCanvasHandler constructs a new [CanvasHandler].
func NewCanvasHandler(service *CanvasService) *CanvasHandler {
	return &CanvasHandler{service: service}
}

// Routes returns a [chi.Router] with the canvas endpoints, mounted under
// /v1/canvases.
//
// # Endpoints
//   - GET    /             : Paginated list of the caller's canvases.
//   - POST   /             : Creates a canvas from a template.
//   - PATCH  /{id}         : Renames a canvas.
//   - POST   /{id}/lock    : Locks a canvas.
//   - POST   /{id}/unlock  : Unlocks a canvas (locker only).
//   - DELETE /{id}         : Deletes a canvas (owner only).
func (handler *CanvasHandler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Patch("/{id}", handler.rename)
	router.Post("/{id}/lock", handler.lock)
	router.Post("/{id}/unlock", handler.unlock)
	router.Delete("/{id}", handler.remove)

	return router
}

// canvasRequest is the JSON payload for create and rename.
type canvasRequest struct {
	Name     string `json:"name"`
	Template string `json:"template"`
}

// list handles GET /v1/canvases.
func (handler *CanvasHandler) list(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	params := pagination.FromRequest(request)

	records, meta, err := handler.service.List(request.Context(), accountID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, records, meta)
}

// create handles POST /v1/canvases.
func (handler *CanvasHandler) create(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input canvasRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Create(request.Context(), accountID, input.Name, input.Template)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, record)
}

// rename handles PATCH /v1/canvases/{id}.
func (handler *CanvasHandler) rename(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	canvasID := requestutil.ID(request, "id")

	var input canvasRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Rename(request.Context(), accountID, canvasID, input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, record)
}

// lock handles POST /v1/canvases/{id}/lock.
func (handler *CanvasHandler) lock(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Lock(request.Context(), accountID, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, record)
}

// unlock handles POST /v1/canvases/{id}/unlock.
func (handler *CanvasHandler) unlock(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Unlock(request.Context(), accountID, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, record)
}

// remove handles DELETE /v1/canvases/{id}.
func (handler *CanvasHandler) remove(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), accountID, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
