package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	h "venuebooking/internal/delivery/http/helpers"
)

// RateLimiter caps requests per caller in a fixed window using a Redis counter. INCR and EXPIRE NX
// go out in one MULTI/EXEC, so every counter carries a TTL even if the client dies mid-request.
// Authenticated callers are keyed by user ID, anonymous ones by client IP.
type RateLimiter struct {
	client redis.Cmdable
	limit  int64
	window time.Duration
	logger *slog.Logger
}

func NewRateLimiter(client redis.Cmdable, limit int, window time.Duration, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{client: client, limit: int64(limit), window: window, logger: logger}
}

// Limit wraps next. When Redis is unavailable the request is let through and the failure logged.
func (l *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := l.key(r)
		count, err := l.hit(ctx, key)
		if err != nil {
			l.logger.WarnContext(ctx, "rate limiter unavailable", "key", key, "err", err)
			next(w, r)
			return
		}
		if count > l.limit {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeTooManyRequests, "rate limit exceeded, try again later")
			return
		}
		next(w, r)
	}
}

func (l *RateLimiter) hit(ctx context.Context, key string) (int64, error) {
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (l *RateLimiter) key(r *http.Request) string {
	if userID, ok := UserIDFromContext(r.Context()); ok {
		return fmt.Sprintf("ratelimit:user:%s", userID)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return fmt.Sprintf("ratelimit:ip:%s", ip)
}
