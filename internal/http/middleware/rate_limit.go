package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/naturalmart/shop-api/internal/http/response"
	"github.com/naturalmart/shop-api/pkg/logger"
)

// RateLimitConfig defines rate limiting parameters
type RateLimitConfig struct {
	Requests int                            // Max requests per window
	Window   time.Duration                  // Time window duration
	KeyFunc  func(r *http.Request) []string // Function to generate rate limit keys
	SkipFunc func(r *http.Request) bool     // Function to skip rate limiting
}

// RateLimiter enforces a fixed window per key, counted in redis.
type RateLimiter struct {
	client *redis.Client
	config RateLimitConfig
}

func NewRateLimiter(client *redis.Client, config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = KeyByIP
	}
	return &RateLimiter{
		client: client,
		config: config,
	}
}

// KeyByIP keys the limit on the remote address.
func KeyByIP(r *http.Request) []string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return []string{"ip:" + host}
}

// Middleware returns the rate limiting middleware
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.config.SkipFunc != nil && rl.config.SkipFunc(r) {
				next.ServeHTTP(w, r)
				return
			}

			for _, key := range rl.config.KeyFunc(r) {
				allowed, err := rl.allow(r.Context(), key)
				if err != nil {
					// A broken limiter must not take the API down.
					logger.WarnContext(r.Context(), "Rate limit check failed", "error", err)
					continue
				}
				if !allowed {
					response.Message(w, http.StatusTooManyRequests, "Too many requests. Try again later.")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	// Hash the key for privacy
	hashed := fmt.Sprintf("rate_limit:%x", sha256.Sum256([]byte(key)))

	count, err := rl.client.Incr(ctx, hashed).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, hashed, rl.config.Window).Err(); err != nil {
			return false, err
		}
	}

	return count <= int64(rl.config.Requests), nil
}
