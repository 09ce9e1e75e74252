package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/jobscout/internal/results"
)

// -----------------------------------------------------------------------------
// Generation Cache Methods
// -----------------------------------------------------------------------------

const selectCacheRecord = `SELECT id, requester_id, kind, cache_key, listing_id, payload, created_at, updated_at
	FROM generation_cache`

// Latest returns the newest record matching q, or nil if none.
func (db *DB) Latest(ctx context.Context, q results.Query) (*results.Record, error) {
	var (
		sql  string
		args []any
	)
	if q.ListingID != "" {
		sql = selectCacheRecord + `
			WHERE requester_id = $1 AND kind = $2 AND listing_id = $3 AND updated_at >= $4
			ORDER BY updated_at DESC LIMIT 1`
		args = []any{q.RequesterID, string(q.Kind), q.ListingID, q.Since}
	} else {
		sql = selectCacheRecord + `
			WHERE requester_id = $1 AND kind = $2 AND cache_key = $3 AND updated_at >= $4
			ORDER BY updated_at DESC LIMIT 1`
		args = []any{q.RequesterID, string(q.Kind), q.CacheKey, q.Since}
	}

	var rec results.Record
	var kind string
	err := db.pool.QueryRow(ctx, sql, args...).Scan(
		&rec.ID, &rec.RequesterID, &kind, &rec.CacheKey, &rec.ListingID,
		&rec.Payload, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached result: %w", err)
	}
	rec.Kind = results.Kind(kind)
	return &rec, nil
}

// Insert appends a cache record.
func (db *DB) Insert(ctx context.Context, rec *results.Record) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO generation_cache (id, requester_id, kind, cache_key, listing_id, payload, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.RequesterID, string(rec.Kind), rec.CacheKey, rec.ListingID,
		[]byte(rec.Payload), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert cached result: %w", err)
	}
	return nil
}
