// Package gh wraps the GitHub REST API behind a rate-budgeted, cached,
// credential-rotating client. It is the only component that talks to the
// network; everything above it sees typed resources and typed errors.
package gh

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com"

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	defaultCacheSize  = 2048
	initialBackoff    = time.Second
	maxBackoff        = 15 * time.Second
	// Requests are paced well below the hourly budget so a scan cannot
	// burst through its headroom before header feedback arrives.
	requestsPerSecond = 8
)

// Config holds client construction options. Zero values take defaults.
type Config struct {
	BaseURL    string
	Tokens     []string
	Timeout    time.Duration
	MaxRetries int
	CacheSize  int
}

// Client is a rate-budgeted GitHub REST client. Identical GETs within the
// client's lifetime are served from an LRU cache and cost zero budget, so
// retries of the same logical read never double-spend.
type Client struct {
	base       string
	httpClient *http.Client
	pool       *Pool
	limiter    *rate.Limiter
	cache      *lru.Cache[string, []byte]
	maxRetries int
}

// NewClient builds a client from config.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, []byte](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating response cache: %w", err)
	}
	return &Client{
		base:       cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		pool:       NewPool(cfg.Tokens),
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		cache:      cache,
		maxRetries: cfg.MaxRetries,
	}, nil
}

// Pool exposes the shared credential pool for budget introspection.
func (c *Client) Pool() *Pool { return c.pool }

// Get performs a budgeted GET and returns the response body.
//
// Error taxonomy: ErrNotFound for 404, *RateLimitError when the deadline
// cannot absorb the server's reset wait, ErrBudgetExhausted when the pool is
// spent, *TransientError when bounded retries ran out.
func (c *Client) Get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.base + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	if body, ok := c.cache.Get(u); ok {
		return body, nil
	}

	var lastErr error
	credentialFallbacks := c.pool.Size()
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		tok, err := c.pool.Acquire(time.Now())
		if err != nil {
			return nil, err
		}

		body, retry, err := c.do(ctx, u, tok)
		if err == nil {
			c.cache.Add(u, body)
			return body, nil
		}
		if !retry {
			return nil, err
		}
		// Credential failures rotate to the next token without consuming
		// a transient-retry attempt.
		if errInvalidCredential(err) && credentialFallbacks > 0 {
			credentialFallbacks--
			attempt--
			lastErr = err
			continue
		}
		lastErr = err
		if attempt < c.maxRetries {
			if err := sleepCtx(ctx, backoff(attempt)); err != nil {
				return nil, err
			}
		}
	}
	return nil, &TransientError{Err: lastErr}
}

// GetJSON performs a budgeted GET and decodes the response into v.
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values, v interface{}) error {
	body, err := c.Get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// errInvalidCredential distinguishes credential rotation from backoff retry.
type invalidCredentialError struct{ status int }

func (e *invalidCredentialError) Error() string {
	return fmt.Sprintf("credential rejected with status %d", e.status)
}

func errInvalidCredential(err error) bool {
	_, ok := err.(*invalidCredentialError)
	return ok
}

// do issues one HTTP round trip. The second return value says whether the
// failure is retryable (credential rotation or transient backoff).
func (c *Client) do(ctx context.Context, u string, tok *Token) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		c.pool.Refund(tok)
		return nil, false, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if tok.Value() != "" {
		req.Header.Set("Authorization", "Bearer "+tok.Value())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, err
	}
	defer resp.Body.Close()

	remaining, resetAt := parseRateHeaders(resp.Header)
	if remaining >= 0 {
		c.pool.Update(tok, remaining, resetAt)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return nil, true, err
		}
		return body, false, nil

	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("%s: %w", u, ErrNotFound)

	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		// 403 with zero remaining budget means rate limiting; wait for the
		// reset if the deadline allows, otherwise fail so the scan degrades.
		if remaining == 0 && !resetAt.IsZero() {
			wait := time.Until(resetAt)
			if deadline, ok := ctx.Deadline(); ok && deadline.Before(resetAt) {
				return nil, false, &RateLimitError{ResetAt: resetAt}
			}
			if wait > 0 {
				if err := sleepCtx(ctx, wait); err != nil {
					return nil, false, &RateLimitError{ResetAt: resetAt}
				}
			}
			return nil, true, fmt.Errorf("rate limited until %s", resetAt)
		}
		// Credential problem, not rate limiting: rotate.
		c.pool.Invalidate(tok)
		return nil, true, &invalidCredentialError{status: resp.StatusCode}

	case resp.StatusCode == http.StatusUnauthorized:
		c.pool.Invalidate(tok)
		return nil, true, &invalidCredentialError{status: resp.StatusCode}

	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error %d from %s", resp.StatusCode, u)

	default:
		return nil, false, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, u)
	}
}

func parseRateHeaders(h http.Header) (remaining int, resetAt time.Time) {
	remaining = -1
	if v := h.Get("X-RateLimit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			remaining = n
		}
	}
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			resetAt = time.Unix(epoch, 0)
		}
	}
	return remaining, resetAt
}

func backoff(attempt int) time.Duration {
	d := initialBackoff << uint(attempt)
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
