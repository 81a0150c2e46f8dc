package request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"wikigame/pkg/cache"
	"wikigame/pkg/logging"
	"wikigame/pkg/tracker"
	"wikigame/pkg/version"
)

var defaultUserAgent = fmt.Sprintf("wikigame/%s (https://github.com/wikigame/wikigame)", version.Version)

// ClientConfig tunes retries and pacing.
type ClientConfig struct {
	Retries   int
	Timeout   time.Duration
	BaseDelay time.Duration
	MaxDelay  time.Duration
	UserAgent string
	// Gap is the pause between two requests to the same provider.
	Gap time.Duration
}

// Client handles HTTP requests with queuing, caching, and tracking.
type Client struct {
	httpClient *http.Client
	cache      cache.Cacher
	tracker    *tracker.Tracker
	backoff    *ProviderBackoff
	cfg        ClientConfig

	// Queues per provider (domain)
	queues map[string]chan job
	closed bool
	wg     sync.WaitGroup
	mu     sync.Mutex // Protects queues map
}

// job represents a queued request.
type job struct {
	req      *http.Request
	headers  map[string]string
	cacheKey string
	check    func([]byte) error
	respChan chan jobResult
}

type jobResult struct {
	body []byte
	err  error
}

// New creates a new Client. Zero config fields fall back to defaults.
func New(c cache.Cacher, t *tracker.Tracker, cfg ClientConfig) *Client {
	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if c == nil {
		c = cache.Nop{}
	}
	if t == nil {
		t = tracker.New()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      c,
		tracker:    t,
		backoff:    NewProviderBackoff(cfg.BaseDelay, cfg.MaxDelay),
		cfg:        cfg,
		queues:     make(map[string]chan job),
	}
}

// Tracker exposes the usage statistics collected by this client.
func (c *Client) Tracker() *tracker.Tracker {
	return c.tracker
}

// Get performs a GET request with queuing and caching if key is provided.
func (c *Client) Get(ctx context.Context, u, cacheKey string) ([]byte, error) {
	return c.GetWithHeaders(ctx, u, nil, cacheKey)
}

// GetChecked is Get with a body check. A body failing check is returned with the
// check's error and is never cached.
func (c *Client) GetChecked(ctx context.Context, u, cacheKey string, check func([]byte) error) ([]byte, error) {
	return c.get(ctx, u, nil, cacheKey, check)
}

// GetWithHeaders performs a GET request with custom headers and optional caching.
func (c *Client) GetWithHeaders(ctx context.Context, u string, headers map[string]string, cacheKey string) ([]byte, error) {
	return c.get(ctx, u, headers, cacheKey, nil)
}

func (c *Client) get(ctx context.Context, u string, headers map[string]string, cacheKey string, check func([]byte) error) ([]byte, error) {
	parsedURL, err := url.Parse(u)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	provider := normalizeProvider(parsedURL.Host)

	// 1. Check Cache (Only if key is provided)
	if cacheKey != "" {
		if val, hit := c.cache.GetCache(ctx, cacheKey); hit {
			c.tracker.TrackCacheHit(provider)
			slog.Debug("Cache Hit", "provider", provider, "key", cacheKey)
			return val, nil
		}
		c.tracker.TrackCacheMiss(provider)
		slog.Debug("Cache Miss", "provider", provider, "key", cacheKey)
	}

	// 2. Enqueue Request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	respChan := make(chan jobResult, 1)
	j := job{req: req, headers: headers, cacheKey: cacheKey, check: check, respChan: respChan}

	if err := c.dispatch(provider, j); err != nil {
		return nil, err
	}

	// 3. Wait for Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-respChan:
		return res.body, res.err
	}
}

// Close stops all provider workers after their queued jobs drain.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for _, q := range c.queues {
		close(q)
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func normalizeProvider(host string) string {
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	// Group all language editions into one provider for serialization
	if strings.HasSuffix(host, ".wikipedia.org") || host == "wikipedia.org" {
		return "wikipedia"
	}
	if strings.HasSuffix(host, ".wikimedia.org") || host == "wikimedia.org" {
		return "wikimedia"
	}
	return host
}

// dispatch sends the job to the provider's queue, creating the queue/worker if needed.
func (c *Client) dispatch(provider string, j job) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	q, ok := c.queues[provider]
	if !ok {
		q = make(chan job, 100)
		c.queues[provider] = q
		c.wg.Add(1)
		go c.worker(provider, q)
	}

	// We block here if the queue is full, effectively throttling the caller
	select {
	case q <- j:
	case <-j.req.Context().Done():
		j.respChan <- jobResult{err: j.req.Context().Err()}
	}
	return nil
}

// worker processes requests for a specific provider sequentially.
func (c *Client) worker(provider string, q <-chan job) {
	defer c.wg.Done()
	for j := range q {
		ctx := j.req.Context()
		if ctx.Err() != nil {
			slog.Debug("Job dropped from queue (context expired)", "provider", provider, "error", ctx.Err())
			j.respChan <- jobResult{err: ctx.Err()}
			continue
		}

		if err := c.backoff.Wait(ctx, provider); err != nil {
			j.respChan <- jobResult{err: err}
			continue
		}

		uaMatch := false
		for k, v := range j.headers {
			j.req.Header.Set(k, v)
			if http.CanonicalHeaderKey(k) == "User-Agent" {
				uaMatch = true
			}
		}
		if !uaMatch {
			j.req.Header.Set("User-Agent", c.cfg.UserAgent)
		}

		start := time.Now()
		body, err := c.executeWithBackoff(j.req)

		switch {
		case err == nil:
			c.tracker.TrackAPISuccess(provider, time.Since(start))
			c.backoff.RecordSuccess(provider)
			if j.check != nil {
				if err = j.check(body); err != nil {
					break
				}
			}
			if j.cacheKey != "" {
				if err := c.cache.SetCache(context.Background(), j.cacheKey, body); err != nil {
					slog.Error("Failed to cache response", "url", j.req.URL, "error", err)
				}
			}
		case ctx.Err() != nil:
			// Caller gave up; not the provider's fault.
		default:
			c.tracker.TrackAPIFailure(provider)
			var se *StatusError
			if !errors.As(err, &se) || se.Retryable() {
				c.backoff.RecordFailure(provider)
			}
		}

		j.respChan <- jobResult{body: body, err: err}

		if c.cfg.Gap > 0 {
			time.Sleep(c.cfg.Gap)
		}
	}
}

// executeWithBackoff attempts the request with exponential backoff on retryable errors.
func (c *Client) executeWithBackoff(req *http.Request) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < c.cfg.Retries; attempt++ {
		if req.Context().Err() != nil {
			return nil, req.Context().Err()
		}
		if attempt > 0 {
			sleepDur := time.Duration(math.Pow(2, float64(attempt-1))) * c.cfg.BaseDelay
			select {
			case <-time.After(sleepDur):
			case <-req.Context().Done():
				return nil, req.Context().Err()
			}
		}

		logging.RequestLogger.Debug("Network Request", "host", req.URL.Host, "path", req.URL.Path, "query", req.URL.RawQuery, "attempt", attempt+1)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if req.Context().Err() != nil {
				return nil, req.Context().Err()
			}
			slog.Warn("Request failed, retrying", "url", req.URL, "attempt", attempt+1, "error", err)
			lastErr = err
			continue
		}

		if resp.StatusCode >= 400 {
			resp.Body.Close()
			se := &StatusError{Code: resp.StatusCode, URL: req.URL.String()}
			logging.RequestLogger.Info("API Error", "status", resp.StatusCode, "url", req.URL, "attempt", attempt+1)
			if !se.Retryable() {
				return nil, se
			}
			slog.Warn("API Backoff", "status", resp.StatusCode, "url", req.URL, "attempt", attempt+1)
			lastErr = se
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read error: %w", err)
		}
		logging.RequestLogger.Info("API OK", "status", resp.StatusCode, "url", req.URL, "bytes", len(body))
		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
