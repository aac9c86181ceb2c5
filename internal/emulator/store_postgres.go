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

// PostgresAccountStore implements [AccountStore] using pgx.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
type PostgresAccountStore struct {
	pool *pgxpool.Pool
}

// NewPostgresAccountStore creates the PostgreSQL implementation of [AccountStore].
func NewPostgresAccountStore(pool *pgxpool.Pool) *PostgresAccountStore {
	return &PostgresAccountStore{pool: pool}
}

// Create persists a new account record into the auth.account table.
func (store *PostgresAccountStore) Create(ctx context.Context, account *Account) error {
	const query = `
		INSERT INTO auth.account (
			id, email, passwordhash, displayname, photourl, role, provider, disabled, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := store.pool.Exec(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.DisplayName,
		account.PhotoURL,
		account.Role,
		account.Provider,
		account.Disabled,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		// Unique email violations race with the service-level duplicate check.
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Account already exists")
		}
		return fmt.Errorf("postgres_account_store_create_failed: %w", err)
	}

	return nil
}

// FindByEmail retrieves an account by its unique email address.
//
// # Returns
//
// Returns [*Account] if found, or [apperr.NotFound] if no account exists.
func (store *PostgresAccountStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	const query = `
		SELECT id, email, passwordhash, displayname, photourl, role, provider, disabled, createdat, updatedat
		FROM auth.account
		WHERE email = $1`

	return store.scanOne(store.pool.QueryRow(ctx, query, email), "email")
}

// FindByID retrieves an account by its unique ID.
func (store *PostgresAccountStore) FindByID(ctx context.Context, id string) (*Account, error) {
	const query = `
		SELECT id, email, passwordhash, displayname, photourl, role, provider, disabled, createdat, updatedat
		FROM auth.account
		WHERE id = $1`

	return store.scanOne(store.pool.QueryRow(ctx, query, id), "id")
}

// UpdatePassword updates only the password hash for a specific account.
func (store *PostgresAccountStore) UpdatePassword(ctx context.Context, accountID, newHash string) error {
	const query = `
		UPDATE auth.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1`

	_, err := store.pool.Exec(ctx, query, accountID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_account_store_update_password_failed: %w", err)
	}

	return nil
}

// scanOne maps a single-row result into an [*Account].
func (store *PostgresAccountStore) scanOne(row pgx.Row, lookup string) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.DisplayName,
		&account.PhotoURL,
		&account.Role,
		&account.Provider,
		&account.Disabled,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("postgres_account_store_find_by_%s_failed: %w", lookup, err)
	}

	return account, nil
}
