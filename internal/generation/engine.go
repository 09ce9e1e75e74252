package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/jobscout/internal/llm"
	"github.com/jonathan/jobscout/internal/retry"
	"github.com/jonathan/jobscout/internal/schemas"
)

// DefaultAttemptTimeout bounds a single model call.
const DefaultAttemptTimeout = 90 * time.Second

// Request describes one structured generation.
type Request[T any] struct {
	Prompt string
	Schema string // Embedded schema name, see the schemas package
	// Check runs after schema validation and may normalize the value.
	// An error counts as a failed attempt.
	Check func(*T) error
}

// Options configures an Engine.
type Options struct {
	Policy         retry.Policy
	AttemptTimeout time.Duration
	Logger         *slog.Logger
}

// Engine runs generation requests against a model client.
type Engine struct {
	client         llm.Client
	policy         retry.Policy
	attemptTimeout time.Duration
	logger         *slog.Logger
}

// NewEngine creates an engine. A nil client yields an engine whose every call
// fails with ErrModelNotConfigured.
func NewEngine(client llm.Client, opts Options) *Engine {
	if opts.Policy.MaxAttempts < 1 {
		opts.Policy = retry.DefaultPolicy()
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = DefaultAttemptTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{
		client:         client,
		policy:         opts.Policy,
		attemptTimeout: opts.AttemptTimeout,
		logger:         opts.Logger,
	}
}

// Configured reports whether a model client is available.
func (e *Engine) Configured() bool {
	return e != nil && e.client != nil
}

func (e *Engine) tier(a retry.Attempt) llm.ModelTier {
	if a.UseFallback {
		e.logger.Warn("using fallback model", "attempt", a.Number+1, "model", e.client.GetModel(llm.TierLite))
		return llm.TierLite
	}
	return llm.TierStandard
}

func (e *Engine) failed(err error) error {
	e.logger.Error("generation failed", "error", err)
	return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
}

// Generate runs req in buffered mode and returns the validated result.
func Generate[T any](ctx context.Context, e *Engine, req Request[T]) (T, error) {
	var zero T
	if !e.Configured() {
		return zero, ErrModelNotConfigured
	}

	v, err := retry.Do(ctx, e.policy, e.logger, func(ctx context.Context, a retry.Attempt) (T, error) {
		actx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
		defer cancel()

		tier := e.tier(a)
		text, err := e.client.GenerateJSON(actx, req.Prompt, tier)
		if err != nil {
			return zero, fmt.Errorf("model %s: %w", e.client.GetModel(tier), err)
		}
		return decode(req, text)
	})
	if err != nil {
		return zero, e.failed(err)
	}
	return v, nil
}

// decode validates text against the request schema and unmarshals it.
func decode[T any](req Request[T], text string) (T, error) {
	var v T
	if req.Schema != "" {
		if err := schemas.Validate(req.Schema, text); err != nil {
			return v, err
		}
	}
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return v, fmt.Errorf("decode model output: %w", err)
	}
	if req.Check != nil {
		if err := req.Check(&v); err != nil {
			return v, err
		}
	}
	return v, nil
}

// Stream is an in-progress incremental generation. Partials delivers
// cumulative snapshots and is closed when generation ends; Wait then
// returns the final object. Callers must drain Partials before Wait returns.
type Stream[T any] struct {
	partials chan T
	done     chan struct{}
	result   T
	err      error
}

// Partials returns the channel of cumulative snapshots.
func (s *Stream[T]) Partials() <-chan T {
	return s.partials
}

// Wait blocks until generation ends and returns the final object.
func (s *Stream[T]) Wait() (T, error) {
	<-s.done
	return s.result, s.err
}

// GenerateStream runs req in incremental mode. Each snapshot holds everything
// known so far. A failed attempt is followed by snapshots from the retry,
// which start over.
func GenerateStream[T any](ctx context.Context, e *Engine, req Request[T]) (*Stream[T], error) {
	if !e.Configured() {
		return nil, ErrModelNotConfigured
	}

	s := &Stream[T]{
		partials: make(chan T, 8),
		done:     make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		defer close(s.partials)

		v, err := retry.Do(ctx, e.policy, e.logger, func(ctx context.Context, a retry.Attempt) (T, error) {
			var zero T
			actx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
			defer cancel()

			var last []byte
			onText := func(text string) error {
				completed, ok := llm.CompletePartialJSON(text)
				if !ok {
					return nil
				}
				var snap T
				if err := json.Unmarshal([]byte(completed), &snap); err != nil {
					return nil
				}
				encoded, err := json.Marshal(snap)
				if err != nil || bytes.Equal(encoded, last) {
					return nil
				}
				last = encoded
				select {
				case s.partials <- snap:
					return nil
				case <-actx.Done():
					return actx.Err()
				}
			}

			tier := e.tier(a)
			text, err := e.client.StreamJSON(actx, req.Prompt, tier, onText)
			if err != nil {
				return zero, fmt.Errorf("model %s: %w", e.client.GetModel(tier), err)
			}
			return decode(req, text)
		})
		if err != nil {
			s.err = e.failed(err)
			return
		}
		s.result = v
	}()

	return s, nil
}
