package audio

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RateLimiter allows a burst of n requests per client IP, refilled evenly over the window.
type RateLimiter struct {
	store *middleware.RateLimiterMemoryStore
}

func NewRateLimiter(n int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(n) / window.Seconds()),
			Burst:     n,
			ExpiresIn: 2 * window,
		}),
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	ok, _ := rl.store.Allow(ip)
	return ok
}

// Middleware rejects requests over the limit with 429. Echo resolves the client
// IP from X-Forwarded-For and X-Real-IP.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: rl.store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		},
	})
}
