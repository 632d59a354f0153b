package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RateLimit returns a fixed-window rate limiter backed by Redis.  Each
// client IP gets max requests per window on the routes it wraps; the 429
// response carries a Retry-After header.  When rdb is nil the middleware
// passes everything through.  Redis errors fail open: limiting is
// protection, not a dependency.
func RateLimit(rdb *redis.Client, max int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rdb == nil {
				return next(c)
			}
			key := "rl:" + c.RealIP() + ":" + strconv.FormatInt(time.Now().Unix()/int64(window.Seconds()), 10)
			ctx, cancel := context.WithTimeout(c.Request().Context(), 150*time.Millisecond)
			defer cancel()

			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c)
			}
			if count == 1 {
				_ = rdb.Expire(ctx, key, window).Err()
			}
			if count > int64(max) {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
