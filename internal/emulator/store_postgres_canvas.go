// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package emulator

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/canvio/canvio/internal/platform/apperr"
)

// PostgresCanvasStore implements [CanvasStore] using pgx.
type PostgresCanvasStore struct {
	pool *pgxpool.Pool
}

// NewPostgresCanvasStore creates the PostgreSQL implementation of [CanvasStore].
func NewPostgresCanvasStore(pool *pgxpool.Pool) *PostgresCanvasStore {
	return &PostgresCanvasStore{pool: pool}
}

// Create persists a new canvas record into the canvas.board table.
func (store *PostgresCanvasStore) Create(ctx context.Context, record *CanvasRecord) error {
	const query = `
		INSERT INTO canvas.board (
			id, name, slug, ownerid, members, locked, lockedby, template, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := store.pool.Exec(ctx, query,
		record.ID,
		record.Name,
		record.Slug,
		record.OwnerID,
		record.Members,
		record.Locked,
		record.LockedBy,
		record.Template,
		record.CreatedAt,
		record.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_canvas_store_create_failed: %w", err)
	}

	return nil
}

// FindByID retrieves a canvas record by its unique ID.
func (store *PostgresCanvasStore) FindByID(ctx context.Context, id string) (*CanvasRecord, error) {
	const query = `
		SELECT id, name, slug, ownerid, members, locked, lockedby, template, createdat, updatedat
		FROM canvas.board
		WHERE id = $1`

	record := &CanvasRecord{}
	err := store.pool.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.Name,
		&record.Slug,
		&record.OwnerID,
		&record.Members,
		&record.Locked,
		&record.LockedBy,
		&record.Template,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Canvas")
		}
		return nil, fmt.Errorf("postgres_canvas_store_find_failed: %w", err)
	}

	return record, nil
}

// Update persists changes to a canvas's mutable fields.
func (store *PostgresCanvasStore) Update(ctx context.Context, record *CanvasRecord) error {
	const query = `
		UPDATE canvas.board
		SET name = $2, slug = $3, members = $4, locked = $5, lockedby = $6, updatedat = $7
		WHERE id = $1`

	_, err := store.pool.Exec(ctx, query,
		record.ID,
		record.Name,
		record.Slug,
		record.Members,
		record.Locked,
		record.LockedBy,
		record.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_canvas_store_update_failed: %w", err)
	}

	return nil
}

// Delete permanently removes a canvas record.
func (store *PostgresCanvasStore) Delete(ctx context.Context, id string) error {
	const query = "DELETE FROM canvas.board WHERE id = $1"

	_, err := store.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("postgres_canvas_store_delete_failed: %w", err)
	}

	return nil
}

// ListByMember returns one page of the account's canvases, newest first.
func (store *PostgresCanvasStore) ListByMember(ctx context.Context, accountID string, limit, offset int) ([]CanvasRecord, int, error) {
	const countQuery = "SELECT COUNT(*) FROM canvas.board WHERE $1 = ANY(members)"

	var total int
	if err := store.pool.QueryRow(ctx, countQuery, accountID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_canvas_store_count_failed: %w", err)
	}

	const query = `
		SELECT id, name, slug, ownerid, members, locked, lockedby, template, createdat, updatedat
		FROM canvas.board
		WHERE $1 = ANY(members)
		ORDER BY updatedat DESC
		LIMIT $2 OFFSET $3`

	rows, err := store.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_canvas_store_list_failed: %w", err)
	}
	defer rows.Close()

	records := make([]CanvasRecord, 0, limit)
	for rows.Next() {
		record := CanvasRecord{}
		if err := rows.Scan(
			&record.ID,
			&record.Name,
			&record.Slug,
			&record.OwnerID,
			&record.Members,
			&record.Locked,
			&record.LockedBy,
			&record.Template,
			&record.CreatedAt,
			&record.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("postgres_canvas_store_scan_failed: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_canvas_store_rows_failed: %w", err)
	}

	return records, total, nil
}
