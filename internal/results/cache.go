package results

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Store is the document-store contract the cache is built on.
// Latest returns (nil, nil) when nothing matches.
type Store interface {
	Latest(ctx context.Context, q Query) (*Record, error)
	Insert(ctx context.Context, rec *Record) error
}

// Cache looks up and stores generation results with a read-time TTL filter.
type Cache struct {
	store  Store
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewCache creates a cache over store. A zero ttl uses DefaultTTL.
func NewCache(store Store, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{store: store, ttl: ttl, now: time.Now, logger: logger}
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Lookup returns the newest in-TTL record for (requester, kind, key), or nil on a miss.
// Expired records are left in place.
func (c *Cache) Lookup(ctx context.Context, requesterID uuid.UUID, kind Kind, key string) (*Record, error) {
	rec, err := c.store.Latest(ctx, Query{
		RequesterID: requesterID,
		Kind:        kind,
		CacheKey:    key,
		Since:       c.now().Add(-c.ttl),
	})
	if err != nil {
		return nil, fmt.Errorf("cache lookup: %w", err)
	}
	if rec == nil {
		c.logger.Debug("cache miss", "requester", requesterID, "kind", kind, "key", key)
		return nil, nil
	}
	c.logger.Debug("cache hit", "requester", requesterID, "kind", kind, "key", key, "record", rec.ID)
	return rec, nil
}

// LookupByListing returns the newest in-TTL summary generated from the given listing.
func (c *Cache) LookupByListing(ctx context.Context, requesterID uuid.UUID, listingID string) (*Record, error) {
	rec, err := c.store.Latest(ctx, Query{
		RequesterID: requesterID,
		Kind:        KindSummary,
		ListingID:   listingID,
		Since:       c.now().Add(-c.ttl),
	})
	if err != nil {
		return nil, fmt.Errorf("cache lookup by listing: %w", err)
	}
	return rec, nil
}

// Entry describes a freshly generated result to persist.
type Entry struct {
	ID          uuid.UUID // Pre-allocated record id; uuid.Nil allocates a new one
	RequesterID uuid.UUID
	Kind        Kind
	CacheKey    string
	ListingID   *string
	Payload     any
}

// Store appends a new record holding the complete payload.
func (c *Cache) Store(ctx context.Context, e Entry) (*Record, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal cache payload: %w", err)
	}

	id := e.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := c.now().UTC()
	rec := &Record{
		ID:          id,
		RequesterID: e.RequesterID,
		Kind:        e.Kind,
		CacheKey:    e.CacheKey,
		ListingID:   e.ListingID,
		Payload:     payload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.store.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("cache store: %w", err)
	}
	return rec, nil
}
