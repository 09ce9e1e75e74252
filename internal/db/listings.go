package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/jobscout/internal/types"
)

// -----------------------------------------------------------------------------
// Job Listing Methods
// -----------------------------------------------------------------------------

// GetListing retrieves a listing by id, or nil if it does not exist.
func (db *DB) GetListing(ctx context.Context, id string) (*types.Listing, error) {
	var l types.Listing
	var sourceURL *string

	err := db.pool.QueryRow(ctx,
		`SELECT id, title, employer, description, source_url
		 FROM job_listings WHERE id = $1`,
		id,
	).Scan(&l.ID, &l.Title, &l.Employer, &l.Description, &sourceURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	if sourceURL != nil {
		l.SourceURL = *sourceURL
	}
	return &l, nil
}

// UpsertListing creates or replaces a mirrored listing.
func (db *DB) UpsertListing(ctx context.Context, l *types.Listing) error {
	var sourceURL *string
	if l.SourceURL != "" {
		sourceURL = &l.SourceURL
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO job_listings (id, title, employer, description, source_url)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
		     title = $2, employer = $3, description = $4, source_url = $5, updated_at = NOW()`,
		l.ID, l.Title, l.Employer, l.Description, sourceURL,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert listing %s: %w", l.ID, err)
	}
	return nil
}
