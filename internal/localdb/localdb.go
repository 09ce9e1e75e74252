// Package localdb provides a single-file SQLite store for generation results,
// mirrored listings and candidate profiles.
package localdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jonathan/jobscout/internal/results"
	"github.com/jonathan/jobscout/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS generation_cache (
	id           TEXT PRIMARY KEY,
	requester_id TEXT NOT NULL,
	kind         TEXT NOT NULL,
	cache_key    TEXT NOT NULL,
	listing_id   TEXT,
	payload      TEXT NOT NULL,
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_generation_cache_key
	ON generation_cache (requester_id, kind, cache_key, updated_at);
CREATE INDEX IF NOT EXISTS idx_generation_cache_listing
	ON generation_cache (requester_id, kind, listing_id, updated_at);
CREATE TABLE IF NOT EXISTS job_listings (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	employer    TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	source_url  TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS candidate_profiles (
	user_id             TEXT PRIMARY KEY,
	skills              TEXT NOT NULL DEFAULT '[]',
	current_role        TEXT NOT NULL DEFAULT '',
	years_of_experience REAL
);`

// Store is a SQLite-backed document store. Timestamps are stored as Unix
// nanoseconds so range filters compare numerically.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at path and ensures the tables exist.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// A single connection serializes writers and keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Latest returns the newest record matching q, or nil if none.
func (s *Store) Latest(ctx context.Context, q results.Query) (*results.Record, error) {
	column, value := "cache_key", q.CacheKey
	if q.ListingID != "" {
		column, value = "listing_id", q.ListingID
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, requester_id, kind, cache_key, listing_id, payload, created_at, updated_at
		 FROM generation_cache
		 WHERE requester_id = ? AND kind = ? AND `+column+` = ? AND updated_at >= ?
		 ORDER BY updated_at DESC LIMIT 1`,
		q.RequesterID.String(), string(q.Kind), value, unixNano(q.Since),
	)

	var (
		rec                  results.Record
		id, requester, kind  string
		listingID            sql.NullString
		payload              string
		createdAt, updatedAt int64
	)
	err := row.Scan(&id, &requester, &kind, &rec.CacheKey, &listingID, &payload, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying cached result: %w", err)
	}

	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing record id %q: %w", id, err)
	}
	if rec.RequesterID, err = uuid.Parse(requester); err != nil {
		return nil, fmt.Errorf("parsing requester id %q: %w", requester, err)
	}
	rec.Kind = results.Kind(kind)
	if listingID.Valid {
		rec.ListingID = &listingID.String
	}
	rec.Payload = json.RawMessage(payload)
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	rec.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &rec, nil
}

// unixNano maps the zero time to the smallest stored value; time.Time.UnixNano
// is undefined for dates that far back.
func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return math.MinInt64
	}
	return t.UnixNano()
}

// Insert appends a cache record.
func (s *Store) Insert(ctx context.Context, rec *results.Record) error {
	var listingID sql.NullString
	if rec.ListingID != nil {
		listingID = sql.NullString{String: *rec.ListingID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generation_cache (id, requester_id, kind, cache_key, listing_id, payload, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.RequesterID.String(), string(rec.Kind), rec.CacheKey, listingID,
		string(rec.Payload), rec.CreatedAt.UnixNano(), rec.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("inserting cached result %s: %w", rec.ID, err)
	}
	return nil
}

// GetListing returns the listing with id, or nil if it does not exist.
func (s *Store) GetListing(ctx context.Context, id string) (*types.Listing, error) {
	var l types.Listing
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, employer, description, source_url FROM job_listings WHERE id = ?`, id,
	).Scan(&l.ID, &l.Title, &l.Employer, &l.Description, &l.SourceURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting listing %s: %w", id, err)
	}
	return &l, nil
}

// UpsertListing creates or replaces a listing.
func (s *Store) UpsertListing(ctx context.Context, l *types.Listing) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO job_listings (id, title, employer, description, source_url)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		     title = excluded.title, employer = excluded.employer,
		     description = excluded.description, source_url = excluded.source_url`,
		l.ID, l.Title, l.Employer, l.Description, l.SourceURL,
	)
	if err != nil {
		return fmt.Errorf("upserting listing %s: %w", l.ID, err)
	}
	return nil
}

// GetCandidateContext returns the requester's profile, or nil if none exists.
func (s *Store) GetCandidateContext(ctx context.Context, userID uuid.UUID) (*types.CandidateContext, error) {
	var (
		c      types.CandidateContext
		skills string
		years  sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT skills, current_role, years_of_experience FROM candidate_profiles WHERE user_id = ?`,
		userID.String(),
	).Scan(&skills, &c.CurrentRole, &years)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting candidate profile %s: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(skills), &c.Skills); err != nil {
		return nil, fmt.Errorf("decoding skills for %s: %w", userID, err)
	}
	if years.Valid {
		c.YearsOfExperience = &years.Float64
	}
	return &c, nil
}

// UpsertCandidateProfile creates or replaces a requester's profile.
func (s *Store) UpsertCandidateProfile(ctx context.Context, userID uuid.UUID, c *types.CandidateContext) error {
	skills := c.Skills
	if skills == nil {
		skills = []string{}
	}
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("encoding skills: %w", err)
	}
	var years sql.NullFloat64
	if c.YearsOfExperience != nil {
		years = sql.NullFloat64{Float64: *c.YearsOfExperience, Valid: true}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO candidate_profiles (user_id, skills, current_role, years_of_experience)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		     skills = excluded.skills, current_role = excluded.current_role,
		     years_of_experience = excluded.years_of_experience`,
		userID.String(), string(skillsJSON), c.CurrentRole, years,
	)
	if err != nil {
		return fmt.Errorf("upserting candidate profile %s: %w", userID, err)
	}
	return nil
}
