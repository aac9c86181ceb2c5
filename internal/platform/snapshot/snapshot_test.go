// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package snapshot_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canvio/canvio/internal/platform/snapshot"
)

type payload struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

/*
TestFileStore_RoundTrip verifies that a saved payload rehydrates verbatim.
*/
func TestFileStore_RoundTrip(t *testing.T) {
	store := snapshot.NewFileStore(t.TempDir(), "auth-storage.json")

	saved := payload{Email: "a@b.com", Token: "opaque-token"}
	require.NoError(t, store.Save(saved))

	var loaded payload
	require.NoError(t, store.Load(&loaded))
	assert.Equal(t, saved, loaded)
}

/*
TestFileStore_LoadAbsent verifies that loading before any save reports ErrNotFound.
*/
func TestFileStore_LoadAbsent(t *testing.T) {
	store := snapshot.NewFileStore(t.TempDir(), "auth-storage.json")

	var loaded payload
	err := store.Load(&loaded)
	assert.ErrorIs(t, err, snapshot.ErrNotFound)
}

/*
TestFileStore_Clear verifies that clearing removes the snapshot and that
clearing twice is a no-op.
*/
func TestFileStore_Clear(t *testing.T) {
	store := snapshot.NewFileStore(t.TempDir(), "auth-storage.json")
	require.NoError(t, store.Save(payload{Email: "a@b.com"}))

	require.NoError(t, store.Clear())
	assert.ErrorIs(t, store.Load(&payload{}), snapshot.ErrNotFound)

	// Idempotent
	assert.NoError(t, store.Clear())
}

/*
TestFileStore_CorruptSnapshot verifies that a truncated payload surfaces an
error instead of partially-populated state.
*/
func TestFileStore_CorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	store := snapshot.NewFileStore(dir, "auth-storage.json")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "auth-storage.json"), []byte("{not json"), 0o600))

	var loaded payload
	assert.Error(t, store.Load(&loaded))
}
