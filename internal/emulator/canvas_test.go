// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package emulator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canvio/canvio/internal/platform/apperr"
	"github.com/canvio/canvio/pkg/pagination"
)

// memoryCanvases is an in-memory CanvasStore preserving insertion order.
type memoryCanvases struct {
	records []*CanvasRecord
}

func (m *memoryCanvases) Create(ctx context.Context, record *CanvasRecord) error {
	stored := *record
	m.records = append(m.records, &stored)
	return nil
}

func (m *memoryCanvases) FindByID(ctx context.Context, id string) (*CanvasRecord, error) {
	for _, record := range m.records {
		if record.ID == id {
			copied := *record
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Canvas")
}

func (m *memoryCanvases) Update(ctx context.Context, record *CanvasRecord) error {
	for i, existing := range m.records {
		if existing.ID == record.ID {
			stored := *record
			m.records[i] = &stored
			return nil
		}
	}
	return apperr.NotFound("Canvas")
}

func (m *memoryCanvases) Delete(ctx context.Context, id string) error {
	for i, record := range m.records {
		if record.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Canvas")
}

func (m *memoryCanvases) ListByMember(ctx context.Context, accountID string, limit, offset int) ([]CanvasRecord, int, error) {
	matched := make([]CanvasRecord, 0, len(m.records))
	for _, record := range m.records {
		if record.isMember(accountID) {
			matched = append(matched, *record)
		}
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

/*
TestCanvasService_CreateDerivesSlug verifies creation sets the owner as
sole member and derives a URL slug from the name.
*/
func TestCanvasService_CreateDerivesSlug(t *testing.T) {
	service := NewCanvasService(&memoryCanvases{})

	record, err := service.Create(context.Background(), "uid-owner", "Product Roadmap Q4", "kanban")
	require.NoError(t, err)

	assert.Equal(t, "product-roadmap-q4", record.Slug)
	assert.Equal(t, []string{"uid-owner"}, record.Members)
	assert.Equal(t, "kanban", record.Template)
	assert.False(t, record.Locked)

	_, err = service.Create(context.Background(), "uid-owner", "", "blank")
	require.Error(t, err, "empty names are rejected")
}

/*
TestCanvasService_LockRules verifies the lock lifecycle: locking records
the actor, relocking by the locker is a no-op, other members cannot lock
over it or unlock it, and locked canvases reject renames and deletion.
*/
func TestCanvasService_LockRules(t *testing.T) {
	store := &memoryCanvases{}
	service := NewCanvasService(store)
	ctx := context.Background()

	record, err := service.Create(ctx, "uid-owner", "Retro Board", "retro")
	require.NoError(t, err)

	// Invite a second member directly through the store.
	record.Members = append(record.Members, "uid-guest")
	require.NoError(t, store.Update(ctx, record))

	// ── 1. Guest locks ──
	locked, err := service.Lock(ctx, "uid-guest", record.ID)
	require.NoError(t, err)
	assert.True(t, locked.Locked)
	assert.Equal(t, "uid-guest", locked.LockedBy)

	// ── 2. Relock and cross-lock ──
	_, err = service.Lock(ctx, "uid-guest", record.ID)
	require.NoError(t, err, "relocking by the locker is a no-op")
	_, err = service.Lock(ctx, "uid-owner", record.ID)
	require.Error(t, err, "another member cannot lock over an existing lock")

	// ── 3. Locked canvases reject edits ──
	_, err = service.Rename(ctx, "uid-owner", record.ID, "New Name")
	require.Error(t, err)
	require.Error(t, service.Delete(ctx, "uid-owner", record.ID))

	// ── 4. Only the locker unlocks ──
	_, err = service.Unlock(ctx, "uid-owner", record.ID)
	require.Error(t, err)
	unlocked, err := service.Unlock(ctx, "uid-guest", record.ID)
	require.NoError(t, err)
	assert.False(t, unlocked.Locked)
	assert.Empty(t, unlocked.LockedBy)
}

/*
TestCanvasService_OwnershipRules verifies deletion is owner-only and that
outsiders cannot observe a canvas at all.
*/
func TestCanvasService_OwnershipRules(t *testing.T) {
	store := &memoryCanvases{}
	service := NewCanvasService(store)
	ctx := context.Background()

	record, err := service.Create(ctx, "uid-owner", "Secret Plans", "blank")
	require.NoError(t, err)
	record.Members = append(record.Members, "uid-guest")
	require.NoError(t, store.Update(ctx, record))

	// ── 1. Outsiders see a 404 ──
	_, err = service.Rename(ctx, "uid-stranger", record.ID, "Hijacked")
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	// ── 2. Members cannot delete ──
	err = service.Delete(ctx, "uid-guest", record.ID)
	appErr = apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "FORBIDDEN", appErr.Code)

	// ── 3. Owner deletes ──
	require.NoError(t, service.Delete(ctx, "uid-owner", record.ID))
	_, _, err = service.List(ctx, "uid-owner", pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	records, total, err := store.ListByMember(ctx, "uid-owner", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, total)
}

/*
TestCanvasService_ListPaginates verifies list paging math against the
member filter.
*/
func TestCanvasService_ListPaginates(t *testing.T) {
	store := &memoryCanvases{}
	service := NewCanvasService(store)
	ctx := context.Background()

	for _, name := range []string{"One", "Two", "Three"} {
		_, err := service.Create(ctx, "uid-owner", name, "blank")
		require.NoError(t, err)
	}
	_, err := service.Create(ctx, "uid-other", "Not Mine", "blank")
	require.NoError(t, err)

	records, meta, err := service.List(ctx, "uid-owner", pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)

	assert.Len(t, records, 1)
	assert.Equal(t, 3, meta.Total)
	assert.Equal(t, 2, meta.TotalPages)
}
