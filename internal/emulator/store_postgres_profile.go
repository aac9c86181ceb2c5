// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package emulator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/canvio/canvio/internal/platform/apperr"
	"github.com/canvio/canvio/internal/platform/dberr"
)

// PostgresProfileStore implements [ProfileStore] using pgx.
type PostgresProfileStore struct {
	pool *pgxpool.Pool
}

// NewPostgresProfileStore creates the PostgreSQL implementation of [ProfileStore].
func NewPostgresProfileStore(pool *pgxpool.Pool) *PostgresProfileStore {
	return &PostgresProfileStore{pool: pool}
}

// Get retrieves a profile record by account ID.
//
// # Returns
//
// Returns [*ProfileRecord] if found, or [apperr.NotFound] if no record exists.
func (store *PostgresProfileStore) Get(ctx context.Context, uid string) (*ProfileRecord, error) {
	const query = `
		SELECT uid, email, displayname, photourl, role, createdat, lastlogin, canvases
		FROM auth.profile
		WHERE uid = $1`

	record := &ProfileRecord{}
	err := store.pool.QueryRow(ctx, query, uid).Scan(
		&record.UID,
		&record.Email,
		&record.DisplayName,
		&record.PhotoURL,
		&record.Role,
		&record.CreatedAt,
		&record.LastLogin,
		&record.Canvases,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Profile")
		}
		return nil, fmt.Errorf("postgres_profile_store_get_failed: %w", err)
	}

	return record, nil
}

// Create persists a new profile record into the auth.profile table.
func (store *PostgresProfileStore) Create(ctx context.Context, record *ProfileRecord) error {
	const query = `
		INSERT INTO auth.profile (
			uid, email, displayname, photourl, role, createdat, lastlogin, canvases
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := store.pool.Exec(ctx, query,
		record.UID,
		record.Email,
		record.DisplayName,
		record.PhotoURL,
		record.Role,
		record.CreatedAt,
		record.LastLogin,
		record.Canvases,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Profile already exists")
		}
		return fmt.Errorf("postgres_profile_store_create_failed: %w", err)
	}

	return nil
}

// TouchLastLogin updates only the last-login marker for an account.
func (store *PostgresProfileStore) TouchLastLogin(ctx context.Context, uid string, at time.Time) error {
	const query = "UPDATE auth.profile SET lastlogin = $2 WHERE uid = $1"

	tag, err := store.pool.Exec(ctx, query, uid, at)
	if err != nil {
		return fmt.Errorf("postgres_profile_store_touch_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Profile")
	}

	return nil
}
