package loggingmw

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Skotchmaster/petstore/pkg/logging"
)

// RequestLogger attaches a request-scoped logger to the context and writes one
// line per request once the error handler has produced the final status.
func RequestLogger(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			lc := base.With().
				Str("method", req.Method).
				Str("path", c.Path()).
				Str("url", req.URL.Path).
				Str("remote_ip", c.RealIP()).
				Str("user_agent", req.UserAgent())
			if rid != "" {
				lc = lc.Str("request_id", rid)
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}
			l := lc.Logger()

			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			dur := time.Since(start)

			if err != nil {
				c.Error(err)
			}
			status := c.Response().Status

			// Handlers may have enriched the context logger (user_id).
			l = *logging.FromContext(c.Request().Context())

			switch {
			case status >= 500:
				l.Error().Err(err).Int("status", status).Int64("duration_ms", dur.Milliseconds()).Msg("request_completed")
			case status >= 400:
				l.Warn().Int("status", status).Int64("duration_ms", dur.Milliseconds()).Msg("request_completed")
			default:
				l.Info().Int("status", status).Int64("duration_ms", dur.Milliseconds()).Int64("bytes", c.Response().Size).Msg("request_completed")
			}
			return nil
		}
	}
}
