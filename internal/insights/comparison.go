package insights

import (
	"context"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/jobscout/internal/generation"
	"github.com/jonathan/jobscout/internal/ingestion"
	"github.com/jonathan/jobscout/internal/results"
)

// comparisonKeySeparator joins listing texts before hashing.
const comparisonKeySeparator = "\n\n---\n\n"

// CompareRequest is the body of a comparison request.
type CompareRequest struct {
	ListingIDs      []string `json:"listingIds" validate:"dive,max=128"`
	ForceRegenerate bool     `json:"forceRegenerate,omitempty"`
}

var validate = validator.New()

// Validate checks field limits. The listing count is checked by the service.
func (r *CompareRequest) Validate() error {
	return validate.Struct(r)
}

// Comparison is a generated comparison together with its record id.
type Comparison struct {
	ID uuid.UUID `json:"id"`
	generation.GeneratedComparison
}

type comparisonJob struct {
	requesterID uuid.UUID
	listings    []generation.ListingText
	key         string
}

// listingIDs trims ids and rejects blank, duplicate or out-of-range sets.
func listingIDs(raw []string) ([]string, error) {
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		id = strings.TrimSpace(id)
		if id == "" || slices.Contains(ids, id) {
			return nil, generation.ErrInvalidComparisonSize
		}
		ids = append(ids, id)
	}
	if len(ids) < generation.MinComparisonListings || len(ids) > generation.MaxComparisonListings {
		return nil, generation.ErrInvalidComparisonSize
	}
	return ids, nil
}

// comparisonKey hashes the listing texts in listing-id order so the same set
// of listings shares a record regardless of request order.
func comparisonKey(listings []generation.ListingText) string {
	sorted := slices.Clone(listings)
	slices.SortFunc(sorted, func(a, b generation.ListingText) int {
		return strings.Compare(a.ID, b.ID)
	})
	texts := make([]string, len(sorted))
	for i, l := range sorted {
		texts[i] = l.Text
	}
	return results.Key(strings.Join(texts, comparisonKeySeparator))
}

func (s *Service) prepareComparison(ctx context.Context, requesterID uuid.UUID, req CompareRequest) (*Comparison, *comparisonJob, error) {
	ids, err := listingIDs(req.ListingIDs)
	if err != nil {
		return nil, nil, err
	}

	listings := make([]generation.ListingText, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			in, err := s.resolver.Resolve(gctx, ingestion.ListingSource(id))
			if err != nil {
				return err
			}
			listings[i] = generation.ListingText{ID: id, Title: in.JobTitle, Employer: in.Employer, Text: in.Text}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	key := comparisonKey(listings)

	if !req.ForceRegenerate {
		rec, err := s.cache.Lookup(ctx, requesterID, results.KindComparison, key)
		if err != nil {
			return nil, nil, err
		}
		if rec != nil {
			cmp := &Comparison{ID: rec.ID}
			if err := decodeRecord(rec, &cmp.GeneratedComparison); err != nil {
				return nil, nil, err
			}
			return cmp, nil, nil
		}
	}

	if !s.engine.Configured() {
		return nil, nil, generation.ErrModelNotConfigured
	}
	return nil, &comparisonJob{requesterID: requesterID, listings: listings, key: key}, nil
}

func (s *Service) comparisonRequest(ctx context.Context, job *comparisonJob) (generation.Request[generation.GeneratedComparison], error) {
	return generation.ComparisonRequest(job.listings, s.candidate(ctx, job.requesterID), s.logger)
}

func (s *Service) storeComparison(ctx context.Context, job *comparisonJob, id uuid.UUID, v generation.GeneratedComparison) error {
	_, err := s.cache.Store(ctx, results.Entry{
		ID:          id,
		RequesterID: job.requesterID,
		Kind:        results.KindComparison,
		CacheKey:    job.key,
		Payload:     v,
	})
	return err
}

// Compare returns a comparison of 2 or 3 listings, generating and caching it
// on a miss or when the request forces regeneration.
func (s *Service) Compare(ctx context.Context, requesterID uuid.UUID, req CompareRequest) (*Comparison, error) {
	cached, job, err := s.prepareComparison(ctx, requesterID, req)
	if err != nil || cached != nil {
		return cached, err
	}

	genReq, err := s.comparisonRequest(ctx, job)
	if err != nil {
		return nil, err
	}
	id := uuid.New()
	v, err := generation.Generate(ctx, s.engine, genReq)
	if err != nil {
		return nil, err
	}
	if err := s.storeComparison(ctx, job, id, v); err != nil {
		s.logger.Error("failed to persist comparison", "record", id, "requester", requesterID, "error", err)
	}
	return &Comparison{ID: id, GeneratedComparison: v}, nil
}

// StreamCompare returns either a cached comparison or a pending streamed
// generation.
func (s *Service) StreamCompare(ctx context.Context, requesterID uuid.UUID, req CompareRequest) (*Comparison, *Pending[generation.GeneratedComparison], error) {
	cached, job, err := s.prepareComparison(ctx, requesterID, req)
	if err != nil || cached != nil {
		return cached, nil, err
	}

	genReq, err := s.comparisonRequest(ctx, job)
	if err != nil {
		return nil, nil, err
	}
	st, err := generation.GenerateStream(ctx, s.engine, genReq)
	if err != nil {
		return nil, nil, err
	}

	id := uuid.New()
	return nil, &Pending[generation.GeneratedComparison]{
		ID:     id,
		stream: st,
		save: func(ctx context.Context, v generation.GeneratedComparison) error {
			return s.storeComparison(ctx, job, id, v)
		},
		logger: s.logger,
	}, nil
}
