// Package insights orchestrates summary and comparison generation: it resolves
// input, consults the result cache, builds prompts, runs the engine and
// persists what the engine produced.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jonathan/jobscout/internal/generation"
	"github.com/jonathan/jobscout/internal/ingestion"
	"github.com/jonathan/jobscout/internal/results"
	"github.com/jonathan/jobscout/internal/types"
)

// InputResolver turns a request source into plain text.
type InputResolver interface {
	Resolve(ctx context.Context, src ingestion.Source) (types.ResolvedInput, error)
}

// ProfileLookup supplies the requester's candidate context. It returns
// (nil, nil) when the requester has no profile.
type ProfileLookup interface {
	GetCandidateContext(ctx context.Context, requesterID uuid.UUID) (*types.CandidateContext, error)
}

// Service runs the generation pipeline for one deployment.
type Service struct {
	resolver InputResolver
	cache    *results.Cache
	profiles ProfileLookup
	engine   *generation.Engine
	logger   *slog.Logger
}

// Deps are the collaborators of a Service. Profiles may be nil.
type Deps struct {
	Resolver InputResolver
	Cache    *results.Cache
	Profiles ProfileLookup
	Engine   *generation.Engine
	Logger   *slog.Logger
}

// NewService creates a Service.
func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		resolver: d.Resolver,
		cache:    d.Cache,
		profiles: d.Profiles,
		engine:   d.Engine,
		logger:   logger,
	}
}

// candidate loads the requester's profile. Lookup failures degrade to no
// candidate context rather than failing the generation.
func (s *Service) candidate(ctx context.Context, requesterID uuid.UUID) *types.CandidateContext {
	if s.profiles == nil {
		return nil
	}
	c, err := s.profiles.GetCandidateContext(ctx, requesterID)
	if err != nil {
		s.logger.Warn("candidate profile unavailable", "requester", requesterID, "error", err)
		return nil
	}
	return c
}

// Pending is a streamed generation that has not finished yet. Its record id
// is allocated up front so the final stream line and the stored record agree.
type Pending[T any] struct {
	ID     uuid.UUID
	stream *generation.Stream[T]
	save   func(ctx context.Context, v T) error
	logger *slog.Logger
}

// Partials returns cumulative snapshots; it is closed when generation ends.
func (p *Pending[T]) Partials() <-chan T {
	return p.stream.Partials()
}

// Wait returns the final object once Partials has been drained.
func (p *Pending[T]) Wait() (T, error) {
	return p.stream.Wait()
}

// Save persists the final object. It is meant to run after the response has
// been sent, so it ignores cancellation of ctx and only logs failures.
func (p *Pending[T]) Save(ctx context.Context, v T) {
	ctx = context.WithoutCancel(ctx)
	if err := p.save(ctx, v); err != nil {
		p.logger.Error("failed to persist streamed result", "record", p.ID, "error", err)
	}
}

// decodeRecord unmarshals a cached payload into dst.
func decodeRecord(rec *results.Record, dst any) error {
	if err := json.Unmarshal(rec.Payload, dst); err != nil {
		return fmt.Errorf("decode cached %s %s: %w", rec.Kind, rec.ID, err)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
