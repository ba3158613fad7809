package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/banseok/hajaro"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// Per-IP token bucket settings. The strict profile guards the login
// endpoint against credential stuffing.
const (
	globalRate  = 100.0 // requests per second
	globalBurst = 200

	strictRate  = 5.0 / 60.0 // 5 per minute
	strictBurst = 10

	limiterTTL      = time.Hour
	cleanupInterval = time.Hour
)

// RateLimiter throttles requests per client IP using token buckets.
// Limiters are held in memory and dropped after an hour of inactivity.
//
// The client IP comes from c.RealIP(), so behind a proxy the Echo
// IPExtractor must be configured or X-Forwarded-For spoofing bypasses
// the limits.
type RateLimiter struct {
	limiters sync.Map // IP -> *limiterEntry
	logger   *slog.Logger
	rate     float64
	burst    int

	retryAfter string
	message    string

	cancel context.CancelFunc
}

// lastAccess is a Unix timestamp so cleanup can read it without locking.
type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess atomic.Int64
}

// NewRateLimiter returns a limiter suitable for the whole API surface.
// Call Shutdown during graceful shutdown to stop the cleanup goroutine.
func NewRateLimiter(logger *slog.Logger) *RateLimiter {
	return newRateLimiter(logger, globalRate, globalBurst, "1", "rate limit exceeded")
}

// NewAuthRateLimiter returns a much stricter limiter for authentication
// endpoints.
func NewAuthRateLimiter(logger *slog.Logger) *RateLimiter {
	return newRateLimiter(logger, strictRate, strictBurst, "60", "too many authentication attempts, please try again later")
}

func newRateLimiter(logger *slog.Logger, r float64, burst int, retryAfter, message string) *RateLimiter {
	ctx, cancel := context.WithCancel(context.Background())

	rl := &RateLimiter{
		logger:     logger,
		rate:       r,
		burst:      burst,
		retryAfter: retryAfter,
		message:    message,
		cancel:     cancel,
	}

	go rl.cleanupOldLimiters(ctx)

	return rl
}

// Middleware rejects requests over the limit with a rate_limit error.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			if !rl.getLimiter(ip).Allow() {
				rl.logger.Warn("rate limit exceeded",
					slog.String("ip", ip),
					slog.String("path", c.Path()),
					slog.String("method", c.Request().Method))

				c.Response().Header().Set("Retry-After", rl.retryAfter)
				c.Response().Header().Set("X-RateLimit-Limit", fmt.Sprintf("%.0f", rl.rate))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")

				return hajaro.Errorf(hajaro.ERATELIMIT, "%s", rl.message)
			}

			c.Response().Header().Set("X-RateLimit-Limit", fmt.Sprintf("%.0f", rl.rate))
			return next(c)
		}
	}
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	if entry, exists := rl.limiters.Load(ip); exists {
		limEntry := entry.(*limiterEntry)
		limEntry.lastAccess.Store(time.Now().Unix())
		return limEntry.limiter
	}

	entry := &limiterEntry{
		limiter: rate.NewLimiter(rate.Limit(rl.rate), rl.burst),
	}
	entry.lastAccess.Store(time.Now().Unix())
	actual, _ := rl.limiters.LoadOrStore(ip, entry)
	return actual.(*limiterEntry).limiter
}

// cleanupOldLimiters drops limiters for IPs that have gone quiet so the
// map does not grow without bound.
func (rl *RateLimiter) cleanupOldLimiters(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			var removed int
			now := time.Now().Unix()

			rl.limiters.Range(func(key, value any) bool {
				entry := value.(*limiterEntry)
				if now-entry.lastAccess.Load() > int64(limiterTTL.Seconds()) {
					rl.limiters.Delete(key)
					removed++
				}
				return true
			})

			if removed > 0 {
				rl.logger.Info("cleaned up idle rate limiters", slog.Int("removed", removed))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Shutdown stops the cleanup goroutine.
func (rl *RateLimiter) Shutdown() {
	rl.cancel()
}
