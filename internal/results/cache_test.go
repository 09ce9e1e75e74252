package results

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	TLDR string `json:"tldr"`
}

func newTestCache(t *testing.T, now *time.Time) (*Cache, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	c := NewCache(store, time.Hour, nil)
	c.now = func() time.Time { return *now }
	return c, store
}

func TestCache_StoreThenLookup(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c, _ := newTestCache(t, &now)
	ctx := context.Background()
	requester := uuid.New()
	key := Key("some text")

	rec, err := c.Store(ctx, Entry{RequesterID: requester, Kind: KindSummary, CacheKey: key, Payload: payload{TLDR: "a role"}})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, rec.ID)

	got, err := c.Lookup(ctx, requester, KindSummary, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.ID, got.ID)

	var p payload
	require.NoError(t, json.Unmarshal(got.Payload, &p))
	assert.Equal(t, "a role", p.TLDR)
}

func TestCache_UsesPreallocatedID(t *testing.T) {
	now := time.Now()
	c, _ := newTestCache(t, &now)
	id := uuid.New()

	rec, err := c.Store(context.Background(), Entry{ID: id, RequesterID: uuid.New(), Kind: KindSummary, CacheKey: "k", Payload: payload{}})
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
}

func TestCache_ExpiredRecordIsMissButKept(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c, store := newTestCache(t, &now)
	ctx := context.Background()
	requester := uuid.New()

	_, err := c.Store(ctx, Entry{RequesterID: requester, Kind: KindSummary, CacheKey: "k", Payload: payload{}})
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	got, err := c.Lookup(ctx, requester, KindSummary, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, store.Len())
}

func TestCache_NewestRecordWins(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c, _ := newTestCache(t, &now)
	ctx := context.Background()
	requester := uuid.New()

	_, err := c.Store(ctx, Entry{RequesterID: requester, Kind: KindSummary, CacheKey: "k", Payload: payload{TLDR: "old"}})
	require.NoError(t, err)
	now = now.Add(time.Minute)
	second, err := c.Store(ctx, Entry{RequesterID: requester, Kind: KindSummary, CacheKey: "k", Payload: payload{TLDR: "new"}})
	require.NoError(t, err)

	got, err := c.Lookup(ctx, requester, KindSummary, "k")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)
}

func TestCache_RequesterIsolation(t *testing.T) {
	now := time.Now()
	c, store := newTestCache(t, &now)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	key := Key("identical text")

	a, err := c.Store(ctx, Entry{RequesterID: alice, Kind: KindSummary, CacheKey: key, Payload: payload{TLDR: "alice"}})
	require.NoError(t, err)
	b, err := c.Store(ctx, Entry{RequesterID: bob, Kind: KindSummary, CacheKey: key, Payload: payload{TLDR: "bob"}})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	store.Delete(a.ID)

	gotA, err := c.Lookup(ctx, alice, KindSummary, key)
	require.NoError(t, err)
	assert.Nil(t, gotA)

	gotB, err := c.Lookup(ctx, bob, KindSummary, key)
	require.NoError(t, err)
	require.NotNil(t, gotB)
	assert.Equal(t, b.ID, gotB.ID)
}

func TestCache_KindsDoNotCollide(t *testing.T) {
	now := time.Now()
	c, _ := newTestCache(t, &now)
	ctx := context.Background()
	requester := uuid.New()

	_, err := c.Store(ctx, Entry{RequesterID: requester, Kind: KindComparison, CacheKey: "k", Payload: payload{}})
	require.NoError(t, err)

	got, err := c.Lookup(ctx, requester, KindSummary, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_LookupByListing(t *testing.T) {
	now := time.Now()
	c, _ := newTestCache(t, &now)
	ctx := context.Background()
	requester := uuid.New()
	listing := "abc"

	got, err := c.LookupByListing(ctx, requester, listing)
	require.NoError(t, err)
	assert.Nil(t, got)

	rec, err := c.Store(ctx, Entry{RequesterID: requester, Kind: KindSummary, CacheKey: "k", ListingID: &listing, Payload: payload{}})
	require.NoError(t, err)

	got, err = c.LookupByListing(ctx, requester, listing)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.ID, got.ID)
}
