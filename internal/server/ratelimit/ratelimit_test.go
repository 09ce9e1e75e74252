package ratelimit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(cfg *Config) (*Limiter, *clock) {
	cfg.CleanupInterval = 0
	l := NewLimiter(cfg)
	c := &clock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	l.now = c.now
	return l, c
}

func TestLimiter_DefaultLimit(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("127.0.0.1", "/test", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
	}
	allowed, info := l.Allow("127.0.0.1", "/test", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Positive(t, info.RetryAfter)
}

func TestLimiter_Refill(t *testing.T) {
	l, c := newTestLimiter(&Config{
		Enabled: true,
		Rules:   []Rule{{Path: "/api/summaries", Method: "POST", Limit: 10, Window: time.Hour, Burst: 3}},
	})
	defer l.Stop()

	for i := 0; i < 3; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/api/summaries", "POST")
		require.True(t, allowed)
	}
	allowed, info := l.Allow("1.2.3.4", "/api/summaries", "POST")
	require.False(t, allowed)
	assert.Equal(t, 6*time.Minute, info.RetryAfter.Round(time.Second))

	c.advance(6*time.Minute + time.Second)
	allowed, _ = l.Allow("1.2.3.4", "/api/summaries", "POST")
	assert.True(t, allowed)
	allowed, _ = l.Allow("1.2.3.4", "/api/summaries", "POST")
	assert.False(t, allowed)
}

func TestLimiter_ClientsAndRulesIndependent(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Rules:         DefaultRules(),
	})
	defer l.Stop()

	for i := 0; i < 3; i++ {
		allowed, _ := l.Allow("a", "/api/summaries", "POST")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("a", "/api/summaries", "POST")
	assert.False(t, allowed)

	allowed, _ = l.Allow("b", "/api/summaries", "POST")
	assert.True(t, allowed, "other client has its own bucket")
	allowed, _ = l.Allow("a", "/api/comparisons", "POST")
	assert.True(t, allowed, "other endpoint has its own bucket")

	allowed, info := l.Allow("a", "/api/summaries/abc", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit, "reads use the default limit")
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, Rules: DefaultRules()})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, info := l.Allow("a", "/health", "GET")
		require.True(t, allowed)
		assert.Equal(t, 0, info.Limit)
	}
}

func TestLimiter_Lists(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.2": true},
	})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/test", "GET")
		assert.True(t, allowed)
	}
	allowed, _ := l.Allow("10.0.0.2", "/test", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 100; i++ {
		allowed, _ := l.Allow("127.0.0.1", "/api/summaries", "POST")
		require.True(t, allowed)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})
	defer l.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("127.0.0.1", "/test", "GET"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, allowed)
}

func TestLimiter_Cleanup(t *testing.T) {
	l, c := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute, IdleTTL: time.Hour})
	defer l.Stop()

	for i := 0; i < 5; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i), "/test", "GET")
	}
	c.advance(30 * time.Minute)
	l.Allow("10.0.0.0", "/test", "GET")
	c.advance(45 * time.Minute)

	l.cleanup()
	assert.Len(t, l.buckets, 1)
}

func TestLimiter_NilConfig(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()
	l.Stop()

	allowed, info := l.Allow("127.0.0.1", "/test", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestMatch(t *testing.T) {
	rules := []Rule{
		{Path: "/api/", Method: "GET", Limit: 5},
		{Path: "/api/summaries", Method: "POST", Limit: 1},
	}
	assert.Equal(t, 1, Match("/api/summaries", "POST", rules).Limit)
	assert.Equal(t, 5, Match("/api/summaries/abc", "GET", rules).Limit)
	assert.Nil(t, Match("/api/summaries", "DELETE", rules))
	assert.Nil(t, Match("/health", "GET", rules))
}

func TestMiddleware(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		Enabled: true,
		Rules:   []Rule{{Path: "/api/summaries", Method: "POST", Limit: 1, Window: time.Hour}},
	})
	defer l.Stop()

	h := l.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/summaries", nil)
	req.RemoteAddr = "192.0.2.1:1234"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"success":false,"message":"Rate limit exceeded. Please try again later."}`, rec.Body.String())
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_GENERATION_LIMIT", "25")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.Whitelist["10.0.0.2"])
	assert.Equal(t, 25, Match("/api/comparisons/stream", "POST", cfg.Rules).Limit)
	assert.Equal(t, 30, Match("/auth/refresh", "POST", cfg.Rules).Limit)
}
