// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/jonathan/jobscout/internal/llm"
)

// Response is one scripted model reply.
type Response struct {
	Text   string   // Full response text
	Chunks []string // Streamed pieces; defaults to a single chunk holding Text
	Err    error    // Returned after any chunks are delivered
	Block  bool     // Wait for the context to end instead of replying
}

// Call records one invocation.
type Call struct {
	Prompt string
	Tier   llm.ModelTier
	Stream bool
}

// Fake replays scripted responses in order. The last response repeats once the
// script runs out.
type Fake struct {
	mu        sync.Mutex
	responses []Response
	calls     []Call
}

var _ llm.Client = (*Fake)(nil)

// New creates a Fake with the given script.
func New(responses ...Response) *Fake {
	return &Fake{responses: responses}
}

// JSON is a convenience for a script of successful text replies.
func JSON(texts ...string) *Fake {
	rs := make([]Response, len(texts))
	for i, t := range texts {
		rs[i] = Response{Text: t}
	}
	return New(rs...)
}

func (f *Fake) next(c Call) Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := len(f.calls)
	f.calls = append(f.calls, c)
	if len(f.responses) == 0 {
		return Response{Err: errors.New("llmtest: no scripted response")}
	}
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return f.responses[idx]
}

// GenerateJSON returns the next scripted reply.
func (f *Fake) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	r := f.next(Call{Prompt: prompt, Tier: tier})
	if r.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if r.Err != nil {
		return "", r.Err
	}
	return llm.CleanJSONBlock(r.Text), nil
}

// StreamJSON delivers the next scripted reply chunk by chunk.
func (f *Fake) StreamJSON(ctx context.Context, prompt string, tier llm.ModelTier, onText func(string) error) (string, error) {
	r := f.next(Call{Prompt: prompt, Tier: tier, Stream: true})
	if r.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}

	chunks := r.Chunks
	if chunks == nil && r.Text != "" {
		chunks = []string{r.Text}
	}
	acc := ""
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		acc += c
		if onText != nil {
			if err := onText(acc); err != nil {
				return "", err
			}
		}
	}
	if r.Err != nil {
		return "", r.Err
	}
	return llm.CleanJSONBlock(acc), nil
}

// GetModel names the fake model for a tier.
func (f *Fake) GetModel(tier llm.ModelTier) string {
	return "fake-" + string(tier)
}

// Close is a no-op.
func (f *Fake) Close() error { return nil }

// Calls returns a copy of the recorded invocations.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many times the model was invoked.
func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
