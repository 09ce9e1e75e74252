package results

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a process-local Store. It has no cross-instance coordination,
// so it only suits single-instance deployments and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Latest returns the most recently updated record matching q. Ties go to the
// later insert.
func (s *MemoryStore) Latest(_ context.Context, q Query) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *Record
	for _, rec := range s.records {
		if !matches(rec, q) {
			continue
		}
		if best == nil || !rec.UpdatedAt.Before(best.UpdatedAt) {
			best = rec
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

// Insert appends rec. An existing record with the same id is replaced.
func (s *MemoryStore) Insert(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	for i, existing := range s.records {
		if existing.ID == rec.ID {
			s.records[i] = &cp
			return nil
		}
	}
	s.records = append(s.records, &cp)
	return nil
}

// Delete removes a record by id.
func (s *MemoryStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.records {
		if existing.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return
		}
	}
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func matches(rec *Record, q Query) bool {
	if rec.RequesterID != q.RequesterID || rec.Kind != q.Kind {
		return false
	}
	if q.CacheKey != "" && rec.CacheKey != q.CacheKey {
		return false
	}
	if q.ListingID != "" && (rec.ListingID == nil || *rec.ListingID != q.ListingID) {
		return false
	}
	return !rec.UpdatedAt.Before(q.Since)
}
