// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package emulator

import (
	"context"
	"fmt"
	"time"

	"github.com/canvio/canvio/internal/platform/apperr"
	"github.com/canvio/canvio/internal/platform/validate"
	"github.com/canvio/canvio/pkg/pagination"
	"github.com/canvio/canvio/pkg/slug"
	"github.com/canvio/canvio/pkg/uuidv7"
)

// CanvasRecord is a dashboard canvas as stored by the emulator.
type CanvasRecord struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Slug     string   `json:"slug"`
	OwnerID  string   `json:"owner_id"`
	Members  []string `json:"members"`
	Locked   bool     `json:"locked"`
	LockedBy string   `json:"locked_by,omitempty"`
	Template string   `json:"template,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// isMember reports whether the account participates in the canvas.
func (record *CanvasRecord) isMember(accountID string) bool {
	for _, member := range record.Members {
		if member == accountID {
			return true
		}
	}
	return false
}

// CanvasStore persists canvas records.
type CanvasStore interface {
	Create(ctx context.Context, record *CanvasRecord) error
	FindByID(ctx context.Context, id string) (*CanvasRecord, error)
	Update(ctx context.Context, record *CanvasRecord) error
	Delete(ctx context.Context, id string) error

	// ListByMember returns one page of canvases the account belongs to,
	// newest first, plus the total count for pagination metadata.
	ListByMember(ctx context.Context, accountID string, limit, offset int) ([]CanvasRecord, int, error)
}

// CanvasService implements the dashboard use cases.
//
// # Lock Semantics
//
// A locked canvas rejects renames and deletion. Locking records the actor;
// only that actor may unlock. Locking an already-locked canvas is a no-op
// for the locker and a conflict for everyone else.
type CanvasService struct {
	canvases CanvasStore
}

// NewCanvasService constructs the service with its storage dependency.
func NewCanvasService(canvases CanvasStore) *CanvasService {
	return &CanvasService{canvases: canvases}
}

// List returns one page of the account's canvases.
func (service *CanvasService) List(ctx context.Context, accountID string, params pagination.Params) ([]CanvasRecord, pagination.Meta, error) {
	records, total, err := service.canvases.ListByMember(ctx, accountID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("canvas_service_list_failed: %w", err)
	}

	return records, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// Create makes a new canvas owned by the account.
func (service *CanvasService) Create(ctx context.Context, ownerID, name, template string) (*CanvasRecord, error) {
	validator := &validate.Validator{}
	if err := validator.Required("name", name).MaxLen("name", name, 120).Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	record := &CanvasRecord{
		ID:        uuidv7.New(),
		Name:      name,
		Slug:      slug.From(name),
		OwnerID:   ownerID,
		Members:   []string{ownerID},
		Template:  template,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := service.canvases.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("canvas_service_create_failed: %w", err)
	}

	return record, nil
}

// Rename changes the display name and re-derives the slug.
func (service *CanvasService) Rename(ctx context.Context, actorID, canvasID, name string) (*CanvasRecord, error) {
	validator := &validate.Validator{}
	if err := validator.Required("name", name).MaxLen("name", name, 120).Err(); err != nil {
		return nil, err
	}

	record, err := service.member(ctx, actorID, canvasID)
	if err != nil {
		return nil, err
	}

	if record.Locked {
		return nil, apperr.Conflict("Canvas is locked")
	}

	record.Name = name
	record.Slug = slug.From(name)
	record.UpdatedAt = time.Now()

	if err := service.canvases.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("canvas_service_rename_failed: %w", err)
	}

	return record, nil
}

// Lock marks the canvas read-only and records the actor as the locker.
func (service *CanvasService) Lock(ctx context.Context, actorID, canvasID string) (*CanvasRecord, error) {
	record, err := service.member(ctx, actorID, canvasID)
	if err != nil {
		return nil, err
	}

	if record.Locked {
		if record.LockedBy == actorID {
			return record, nil
		}
		return nil, apperr.Conflict("Canvas is already locked by another member")
	}

	record.Locked = true
	record.LockedBy = actorID
	record.UpdatedAt = time.Now()

	if err := service.canvases.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("canvas_service_lock_failed: %w", err)
	}

	return record, nil
}

// Unlock releases the lock. Only the locker may unlock.
func (service *CanvasService) Unlock(ctx context.Context, actorID, canvasID string) (*CanvasRecord, error) {
	record, err := service.member(ctx, actorID, canvasID)
	if err != nil {
		return nil, err
	}

	if !record.Locked {
		return record, nil
	}
	if record.LockedBy != actorID {
		return nil, apperr.Forbidden("Only the locker can unlock this canvas")
	}

	record.Locked = false
	record.LockedBy = ""
	record.UpdatedAt = time.Now()

	if err := service.canvases.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("canvas_service_unlock_failed: %w", err)
	}

	return record, nil
}

// Delete removes the canvas permanently. Only the owner may delete, and a
// locked canvas must be unlocked first.
func (service *CanvasService) Delete(ctx context.Context, actorID, canvasID string) error {
	record, err := service.member(ctx, actorID, canvasID)
	if err != nil {
		return err
	}

	if record.OwnerID != actorID {
		return apperr.Forbidden("Only the owner can delete this canvas")
	}
	if record.Locked {
		return apperr.Conflict("Canvas is locked")
	}

	if err := service.canvases.Delete(ctx, canvasID); err != nil {
		return fmt.Errorf("canvas_service_delete_failed: %w", err)
	}

	return nil
}

// member fetches the canvas and checks that the actor belongs to it.
// Outsiders get a 404 rather than a 403 to avoid leaking canvas existence.
func (service *CanvasService) member(ctx context.Context, actorID, canvasID string) (*CanvasRecord, error) {
	record, err := service.canvases.FindByID(ctx, canvasID)
	if err != nil {
		return nil, err
	}

	if !record.isMember(actorID) {
		return nil, apperr.NotFound("Canvas")
	}

	return record, nil
}
