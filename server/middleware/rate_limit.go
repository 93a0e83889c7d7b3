package middleware

import (
	"context"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	apierrors "github.com/SampleBias/mcp-stem-informatics/server/internal/errors"
)

// RateLimiter tracks a token bucket per client key.
type RateLimiter struct {
	mu     sync.RWMutex
	limits map[string]*rate.Limiter
	limit  rate.Limit
	burst  int
}

// NewRateLimiter creates a rate limiter allowing rps requests per
// second per key with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = int(rps) * 2
	}
	return &RateLimiter{
		limits: make(map[string]*rate.Limiter),
		limit:  rate.Limit(rps),
		burst:  burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.limits[key]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.limits[key] = limiter
	return limiter
}

// Allow checks if a request is allowed for the given key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Wait waits for a request to be allowed.
// Returns error if the context is cancelled or rate limit exceeded.
func (rl *RateLimiter) Wait(ctx context.Context, key string) error {
	return rl.getLimiter(key).Wait(ctx)
}

// Middleware rejects requests over the per-IP limit with 429.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(c.RealIP()) {
				reqErr := apierrors.RateLimited()
				return c.JSON(reqErr.HTTPStatus(), map[string]any{
					"error": reqErr.Message,
					"code":  string(reqErr.Code),
				})
			}
			return next(c)
		}
	}
}
