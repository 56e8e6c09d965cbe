package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/petstore/pkg/logging"
)

type Limiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// PerIP limits requests per client IP within a fixed window. The limiter
// failing lets the request through.
func PerIP(l Limiter, name string, limit int64, window time.Duration, detail string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if l == nil || limit <= 0 {
			return next
		}
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			allowed, count, err := l.FixedWindowAllow(ctx, name+":"+c.RealIP(), limit, window)
			if err != nil {
				logging.FromContext(ctx).Warn().Err(err).Str("limiter", name).Msg("rate_limit_unavailable")
				return next(c)
			}
			if !allowed {
				logging.FromContext(ctx).Warn().
					Str("limiter", name).
					Int64("count", count).
					Str("remote_ip", c.RealIP()).
					Msg("rate_limited")
				c.Response().Header().Set(echo.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
				return echo.NewHTTPError(http.StatusTooManyRequests, detail)
			}
			return next(c)
		}
	}
}

func Login(l Limiter, limit int64, window time.Duration) echo.MiddlewareFunc {
	return PerIP(l, "login", limit, window, "Too many login attempts")
}
