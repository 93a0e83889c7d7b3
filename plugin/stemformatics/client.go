// Package stemformatics provides the HTTP client for the Stemformatics
// data API (datasets, samples, gene expression, atlases). Read-only
// requests are served through the response cache; everything else goes
// straight upstream.
package stemformatics

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/SampleBias/mcp-stem-informatics/store/cache"
)

// Config holds the upstream API configuration.
type Config struct {
	// BaseURL is the root of the Stemformatics API
	BaseURL string
	// Timeout is the HTTP timeout for upstream requests
	Timeout time.Duration
	// UseAuth enables the Authorization header
	UseAuth bool
	// APIKey is sent as a bearer token when UseAuth is set
	APIKey string
	// RequestsPerSecond throttles upstream calls (0 disables the throttle)
	RequestsPerSecond float64
}

// DefaultConfig returns the default upstream configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:           "https://api.stemformatics.org",
		Timeout:           30 * time.Second,
		RequestsPerSecond: 10,
	}
}

// Client issues requests against the Stemformatics API, consulting the
// cache for idempotent reads and storing successful results back.
type Client struct {
	config     *Config
	httpClient *http.Client
	cache      cache.Store
	limiter    *rate.Limiter
}

// NewClient creates a new API client. store must not be nil; pass
// cache.NopStore{} to run without caching.
func NewClient(config *Config, store cache.Store) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	limit := rate.Inf
	burst := 1
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
		burst = int(config.RequestsPerSecond) * 2
		if burst < 1 {
			burst = 1
		}
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		cache:   store,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Get issues a cacheable read against the given endpoint.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (any, error) {
	return c.Request(ctx, http.MethodGet, endpoint, params, nil)
}

// Request issues a call against the given endpoint. GET requests are
// served from the cache when a live entry exists and their successful
// responses are stored back; any other method bypasses the cache
// entirely. The cache lock is never held across the network call.
func (c *Client) Request(ctx context.Context, method, endpoint string, params url.Values, body any) (any, error) {
	requestURL := c.config.BaseURL + "/" + strings.TrimLeft(endpoint, "/")
	cacheable := method == http.MethodGet
	key := cacheKey(requestURL, params)

	if cacheable {
		if value, ok := c.cache.Get(key); ok {
			slog.Debug("cache hit", "endpoint", endpoint)
			return value, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, Canceled(err)
	}

	result, err := c.do(ctx, method, requestURL, params, body)
	if err != nil {
		slog.Error("api request failed", "method", method, "endpoint", endpoint, "error", err)
		return nil, err
	}

	if cacheable {
		c.cache.Set(key, result)
	}

	return result, nil
}

// do performs the HTTP exchange and normalizes the response body.
func (c *Client) do(ctx context.Context, method, requestURL string, params url.Values, body any) (any, error) {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, InvalidResponse(err)
		}
		reqBody = strings.NewReader(string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reqBody)
	if err != nil {
		return nil, UpstreamUnreachable(err)
	}
	if len(params) > 0 {
		req.URL.RawQuery = params.Encode()
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.UseAuth && c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, Canceled(ctx.Err())
		}
		return nil, UpstreamUnreachable(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, UpstreamUnreachable(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, UpstreamStatus(resp.StatusCode, truncate(string(raw), 256))
	}

	return normalize(resp.Header.Get("Content-Type"), raw)
}

// normalize decodes JSON bodies into structured payloads and wraps
// anything else (TSV exports, raw files) as a file payload.
func normalize(contentType string, raw []byte) (any, error) {
	if strings.HasPrefix(contentType, "application/json") {
		var result any
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, InvalidResponse(err)
		}
		return result, nil
	}

	return map[string]any{
		"content": string(raw),
		"is_file": true,
	}, nil
}

// cacheKey builds a deterministic key from the endpoint URL and its
// parameters. url.Values.Encode emits keys in sorted order, so the key
// is stable for identical logical requests and distinct for any
// difference in endpoint or parameter value.
func cacheKey(requestURL string, params url.Values) string {
	if len(params) == 0 {
		return requestURL
	}
	return requestURL + "?" + params.Encode()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
