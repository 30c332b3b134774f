package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/farellandr/rifas/internal/helpers"
	"github.com/farellandr/rifas/internal/logger"
)

// RateLimitMiddleware allows limit requests per client IP within window for
// the given scope. A nil client or a non-positive limit disables it, and
// Redis errors let the request through.
func RateLimitMiddleware(rdb *redis.Client, scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", scope, c.ClientIP())
		if !allow(c.Request.Context(), rdb, key, limit, window) {
			logger.Warn("rate limit exceeded",
				zap.String("scope", scope),
				zap.String("client_ip", c.ClientIP()))
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			helpers.RespondWithError(c, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// allow implements a sliding window over a sorted set of request timestamps.
func allow(ctx context.Context, rdb *redis.Client, key string, limit int, window time.Duration) bool {
	now := time.Now()
	windowStart := now.Add(-window).UnixNano()

	pipe := rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	pipe.Expire(ctx, key, window+10*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("rate limit check failed", zap.Error(err))
		return true
	}

	count, err := countCmd.Result()
	if err != nil {
		return true
	}
	return count < int64(limit)
}
