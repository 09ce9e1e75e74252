package insights

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/jobscout/internal/generation"
	"github.com/jonathan/jobscout/internal/ingestion"
	"github.com/jonathan/jobscout/internal/results"
	"github.com/jonathan/jobscout/internal/types"
)

// Summary is a generated summary together with its record id.
type Summary struct {
	ID uuid.UUID `json:"id"`
	generation.GeneratedSummary
}

// summaryJob is a resolved summary request that missed the cache.
type summaryJob struct {
	requesterID uuid.UUID
	input       types.ResolvedInput
	key         string
}

// prepareSummary resolves the request and consults the cache. Exactly one of
// the returned summary or job is non-nil on success.
func (s *Service) prepareSummary(ctx context.Context, requesterID uuid.UUID, req ingestion.GenerationRequest) (*Summary, *summaryJob, error) {
	src, err := req.Source()
	if err != nil {
		return nil, nil, err
	}
	in, err := s.resolver.Resolve(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	key := results.Key(in.Text)

	if !req.ForceRegenerate {
		rec, err := s.cache.Lookup(ctx, requesterID, results.KindSummary, key)
		if err != nil {
			return nil, nil, err
		}
		if rec != nil {
			sum := &Summary{ID: rec.ID}
			if err := decodeRecord(rec, &sum.GeneratedSummary); err != nil {
				return nil, nil, err
			}
			return sum, nil, nil
		}
	}

	if !s.engine.Configured() {
		return nil, nil, generation.ErrModelNotConfigured
	}
	return nil, &summaryJob{requesterID: requesterID, input: in, key: key}, nil
}

func (s *Service) storeSummary(ctx context.Context, job *summaryJob, id uuid.UUID, v generation.GeneratedSummary) error {
	_, err := s.cache.Store(ctx, results.Entry{
		ID:          id,
		RequesterID: job.requesterID,
		Kind:        results.KindSummary,
		CacheKey:    job.key,
		ListingID:   optional(job.input.ListingID),
		Payload:     v,
	})
	return err
}

// Summarize returns a summary for the request, generating and caching it on a
// miss or when the request forces regeneration.
func (s *Service) Summarize(ctx context.Context, requesterID uuid.UUID, req ingestion.GenerationRequest) (*Summary, error) {
	cached, job, err := s.prepareSummary(ctx, requesterID, req)
	if err != nil || cached != nil {
		return cached, err
	}

	id := uuid.New()
	v, err := generation.Generate(ctx, s.engine, generation.SummaryRequest(job.input, s.candidate(ctx, requesterID)))
	if err != nil {
		return nil, err
	}
	if err := s.storeSummary(ctx, job, id, v); err != nil {
		s.logger.Error("failed to persist summary", "record", id, "requester", requesterID, "error", err)
	}
	return &Summary{ID: id, GeneratedSummary: v}, nil
}

// StreamSummary returns either a cached summary or a pending streamed
// generation. The caller writes the stream and then calls Save on the final
// object.
func (s *Service) StreamSummary(ctx context.Context, requesterID uuid.UUID, req ingestion.GenerationRequest) (*Summary, *Pending[generation.GeneratedSummary], error) {
	cached, job, err := s.prepareSummary(ctx, requesterID, req)
	if err != nil || cached != nil {
		return cached, nil, err
	}

	st, err := generation.GenerateStream(ctx, s.engine, generation.SummaryRequest(job.input, s.candidate(ctx, requesterID)))
	if err != nil {
		return nil, nil, err
	}

	id := uuid.New()
	return nil, &Pending[generation.GeneratedSummary]{
		ID:     id,
		stream: st,
		save: func(ctx context.Context, v generation.GeneratedSummary) error {
			return s.storeSummary(ctx, job, id, v)
		},
		logger: s.logger,
	}, nil
}

// ExistingSummary returns the newest in-TTL summary generated from a listing,
// or nil when none exists.
func (s *Service) ExistingSummary(ctx context.Context, requesterID uuid.UUID, listingID string) (*Summary, error) {
	rec, err := s.cache.LookupByListing(ctx, requesterID, listingID)
	if err != nil {
		return nil, fmt.Errorf("existing summary: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	sum := &Summary{ID: rec.ID}
	if err := decodeRecord(rec, &sum.GeneratedSummary); err != nil {
		return nil, err
	}
	return sum, nil
}
