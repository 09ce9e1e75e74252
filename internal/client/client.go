// Package client calls the jobscout HTTP API. It tells cached JSON replies
// from NDJSON streams by content type, and recovers from an expired access
// token with a single shared refresh.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonathan/jobscout/internal/ingestion"
	"github.com/jonathan/jobscout/internal/insights"
	"github.com/jonathan/jobscout/internal/stream"
)

// ErrSessionExpired is returned when the access token was rejected and could
// not be refreshed.
var ErrSessionExpired = errors.New("Session expired. Please sign in again.")

// APIError is a non-success reply from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

const refreshTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	BaseURL      string
	AccessToken  string
	RefreshToken string
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// Client is safe for concurrent use.
type Client struct {
	baseURL      string
	http         *http.Client
	logger       *slog.Logger
	refreshToken string

	mu    sync.RWMutex
	token string

	refreshes singleflight.Group
}

// New creates a Client.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		http:         hc,
		logger:       logger,
		refreshToken: opts.RefreshToken,
		token:        opts.AccessToken,
	}
}

// Token returns the current access token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// StreamSummary requests a summary from the streaming endpoint. onPartial,
// if set, sees each snapshot of a generation in progress; a cached summary
// arrives without partials.
func (c *Client) StreamSummary(ctx context.Context, req ingestion.GenerationRequest, onPartial func(insights.Summary)) (*insights.Summary, error) {
	return call(ctx, c, http.MethodPost, "/api/summaries/stream", req, onPartial)
}

// StreamCompare requests a comparison from the streaming endpoint.
func (c *Client) StreamCompare(ctx context.Context, req insights.CompareRequest, onPartial func(insights.Comparison)) (*insights.Comparison, error) {
	return call(ctx, c, http.MethodPost, "/api/comparisons/stream", req, onPartial)
}

// ExistingSummary returns the cached summary for a listing, or nil.
func (c *Client) ExistingSummary(ctx context.Context, listingID string) (*insights.Summary, error) {
	return call[insights.Summary](ctx, c, http.MethodGet, "/api/summaries/"+url.PathEscape(listingID), nil, nil)
}

// call sends the request and decodes either reply shape. A JSON reply with
// "data": null yields (nil, nil).
func call[T any](ctx context.Context, c *Client, method, path string, body any, onPartial func(T)) (*T, error) {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch mediaType {
	case stream.ContentType:
		if resp.StatusCode != http.StatusOK {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		v, err := stream.Decode(resp.Body, onPartial)
		if err != nil {
			return nil, err
		}
		return &v, nil
	case "application/json":
		return decodeEnvelope[T](resp)
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("unexpected content type %q: %s", mediaType, bytes.TrimSpace(snippet))}
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeEnvelope[T any](resp *http.Response) (*T, error) {
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return nil, fmt.Errorf("decode response data: %w", err)
	}
	return &v, nil
}

// send performs the request, refreshing the access token and retrying once
// when the first attempt is rejected with 401.
func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	used := c.Token()
	resp, err := c.do(ctx, method, path, payload, used)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	drain(resp)

	token, err := c.refresh(ctx, used)
	if err != nil {
		return nil, err
	}
	resp, err = c.do(ctx, method, path, payload, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		return nil, ErrSessionExpired
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, "+stream.ContentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// refresh returns a fresh access token. Callers rejected with the same stale
// token share one in-flight refresh; a caller whose token was already
// replaced gets the replacement without another call.
func (c *Client) refresh(ctx context.Context, stale string) (string, error) {
	if current := c.Token(); current != stale {
		return current, nil
	}
	if c.refreshToken == "" {
		return "", ErrSessionExpired
	}

	ch := c.refreshes.DoChan(stale, func() (any, error) {
		if current := c.Token(); current != stale {
			return current, nil
		}
		// Detached so one caller's cancellation does not fail the others.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return c.exchange(rctx)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

type tokenData struct {
	Token string `json:"token"`
}

func (c *Client) exchange(ctx context.Context) (string, error) {
	payload, err := json.Marshal(map[string]string{"refreshToken": c.refreshToken})
	if err != nil {
		return "", err
	}
	resp, err := c.do(ctx, http.MethodPost, "/auth/refresh", payload, "")
	if err != nil {
		c.logger.Warn("token refresh failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	defer resp.Body.Close()

	data, err := decodeEnvelope[tokenData](resp)
	if err != nil || data == nil || data.Token == "" {
		c.logger.Warn("token refresh rejected", "status", resp.StatusCode, "error", err)
		return "", ErrSessionExpired
	}

	c.mu.Lock()
	c.token = data.Token
	c.mu.Unlock()
	c.logger.Debug("access token refreshed")
	return data.Token, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
