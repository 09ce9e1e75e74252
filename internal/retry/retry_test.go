package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastPolicy(attempts int, fallback bool) Policy {
	return Policy{MaxAttempts: attempts, BaseDelay: time.Millisecond, Fallback: fallback}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastPolicy(3, true), discardLogger(), func(_ context.Context, a Attempt) (string, error) {
		calls++
		assert.False(t, a.UseFallback)
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastPolicy(3, false), discardLogger(), func(_ context.Context, a Attempt) (int, error) {
		calls++
		if a.Number < 1 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 2, calls)
}

func TestDo_FallbackOnlyOnFinalAttempt(t *testing.T) {
	var seen []bool
	_, err := Do(context.Background(), fastPolicy(3, true), discardLogger(), func(_ context.Context, a Attempt) (int, error) {
		seen = append(seen, a.UseFallback)
		return 0, errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, []bool{false, false, true}, seen)
}

func TestDo_SingleAttemptNeverFallsBack(t *testing.T) {
	_, err := Do(context.Background(), fastPolicy(1, true), discardLogger(), func(_ context.Context, a Attempt) (int, error) {
		assert.False(t, a.UseFallback)
		return 0, errors.New("boom")
	})
	require.Error(t, err)
}

func TestDo_ReturnsLastError(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastPolicy(3, false), discardLogger(), func(_ context.Context, _ Attempt) (int, error) {
		calls++
		return 0, errors.New("attempt error")
	})
	require.Error(t, err)
	assert.Equal(t, "attempt error", err.Error())
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	sentinel := errors.New("not configured")
	calls := 0
	_, err := Do(context.Background(), fastPolicy(3, false), discardLogger(), func(_ context.Context, _ Attempt) (int, error) {
		calls++
		return 0, Permanent(sentinel)
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelledNotRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, fastPolicy(3, false), discardLogger(), func(_ context.Context, _ Attempt) (int, error) {
		calls++
		cancel()
		return 0, errors.New("interrupted")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_CancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	p := Policy{MaxAttempts: 3, BaseDelay: time.Hour}
	_, err := Do(ctx, p, discardLogger(), func(_ context.Context, _ Attempt) (int, error) {
		return 0, errors.New("transient")
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPolicy_Delay(t *testing.T) {
	p := Policy{BaseDelay: time.Second}
	assert.Equal(t, time.Second, p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
}

func TestPermanent_Nil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}
