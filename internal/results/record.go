package results

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a generated result stays reusable.
const DefaultTTL = 7 * 24 * time.Hour

// Kind distinguishes the two generation shapes stored in the cache.
type Kind string

// Kind constants
const (
	KindSummary    Kind = "summary"
	KindComparison Kind = "comparison"
)

// Record is one persisted generation. Records are never updated in place.
type Record struct {
	ID          uuid.UUID       `json:"id"`
	RequesterID uuid.UUID       `json:"requester_id"`
	Kind        Kind            `json:"kind"`
	CacheKey    string          `json:"cache_key"`
	ListingID   *string         `json:"listing_id,omitempty"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Query selects the newest record for a requester and kind. Exactly one of CacheKey or ListingID is set.
type Query struct {
	RequesterID uuid.UUID
	Kind        Kind
	CacheKey    string
	ListingID   string
	Since       time.Time // Records updated before Since are ignored
}
