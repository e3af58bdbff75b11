package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/hiddenmood-backend/internal/logger"
	"github.com/AnshRaj112/hiddenmood-backend/pkg/clientip"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyPrefix is the Redis key prefix for rate limiting
const RateLimitKeyPrefix = "ratelimit:"

// RedisRateLimit allows at most limit requests per window per IP for the
// routes it wraps, counting in Redis so every instance shares the budget.
// Redis failures (or a nil client) let the request through.
func RedisRateLimit(client *redis.Client, name string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			key := RateLimitKeyPrefix + name + ":" + clientip.RealClientIP(r)
			count, ttl, err := hitWindow(ctx, client, key, window)
			if err != nil {
				logger.Warn("rate limit check failed, allowing request", "limiter", name, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			remaining := limit - int(count)
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

			if int(count) > limit {
				w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))
				writeTooManyRequests(w, "Too many requests, please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// hitWindow increments the counter for key and returns the new count with
// the time left in the current window. The first hit starts the window.
// The expiry is set with a plain EXPIRE when the key has none, so servers
// older than Redis 7 (no EXPIRE NX) work too.
func hitWindow(ctx context.Context, client *redis.Client, key string, window time.Duration) (int64, time.Duration, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	left, needsExpire := windowLeft(ttl.Val(), window)
	if needsExpire {
		if err := client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
	}
	return incr.Val(), left, nil
}

// windowLeft maps a TTL reply to the time left in the window. TTL replies
// -1 for a key without expiry, which happens right after the first INCR.
func windowLeft(ttl, window time.Duration) (time.Duration, bool) {
	if ttl < 0 {
		return window, true
	}
	if ttl == 0 {
		return window, false
	}
	return ttl, false
}
