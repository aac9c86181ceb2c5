// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

/*
Package snapshot persists the client session state across process restarts.

It is the durable client storage of the Canvio client: the session container
writes a snapshot under a fixed namespaced key after every mutation and
rehydrates it verbatim at next startup. There is no migration or versioning
scheme; a payload that cannot be decoded is treated as absent.

Core Responsibilities:

  - Durability: Survives process restarts via the filesystem.
  - Atomicity: Writes go through a temp file + rename so a crash mid-write
    never leaves a truncated snapshot behind.
  - Opacity: The store knows nothing about the session semantics; it moves
    JSON bytes for any serializable payload.
*/
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by [Store.Load] when no snapshot has been
// persisted yet under the store's key.
var ErrNotFound = errors.New("snapshot: not found")

// Store reads and writes a single JSON snapshot under a fixed key.
type Store interface {
	// Save serializes the payload and persists it. Callers treat failures
	// as non-fatal (fire-and-forget): a failed write is logged upstream,
	// never surfaced to the user.
	Save(payload any) error

	// Load deserializes the persisted payload into target.
	// Returns [ErrNotFound] if nothing has been persisted.
	Load(target any) error

	// Clear removes the persisted snapshot. Clearing an absent snapshot
	// is a no-op.
	Clear() error
}

// FileStore implements [Store] on the local filesystem.
type FileStore struct {
	dir string
	key string
}

// NewFileStore creates a [FileStore] rooted at dir, storing its payload
// under the given key (a filename). The directory is created on first Save.
func NewFileStore(dir, key string) *FileStore {
	return &FileStore{dir: dir, key: key}
}

// Path returns the absolute location of the snapshot file.
func (store *FileStore) Path() string {
	return filepath.Join(store.dir, store.key)
}

// Save writes the payload as JSON via a temp file + atomic rename.
func (store *FileStore) Save(payload any) error {
	if err := os.MkdirAll(store.dir, 0o700); err != nil {
		return fmt.Errorf("snapshot: cannot create state dir: %w", err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("snapshot: cannot encode payload: %w", err)
	}

	// Write-then-rename keeps the previous snapshot intact on failure.
	tempPath := store.Path() + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return fmt.Errorf("snapshot: cannot write temp file: %w", err)
	}

	if err := os.Rename(tempPath, store.Path()); err != nil {
		return fmt.Errorf("snapshot: cannot commit snapshot: %w", err)
	}

	return nil
}

// Load reads the persisted JSON payload into target.
func (store *FileStore) Load(target any) error {
	data, err := os.ReadFile(store.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("snapshot: cannot read snapshot: %w", err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		// A corrupt snapshot is indistinguishable from an absent one for
		// the caller: both rehydrate to the empty session.
		return fmt.Errorf("snapshot: cannot decode snapshot: %w", err)
	}

	return nil
}

// Clear deletes the snapshot file if present.
func (store *FileStore) Clear() error {
	err := os.Remove(store.Path())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("snapshot: cannot remove snapshot: %w", err)
	}
	return nil
}
