package httpserver

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
)

// ReadyCheck reports whether one dependency can serve requests.
type ReadyCheck func(ctx context.Context) error

type HealthHTTP struct {
	Checks  map[string]ReadyCheck
	Timeout time.Duration
}

func (h *HealthHTTP) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHTTP) Ready(c echo.Context) error {
	l := handlerLogger(c, "health.ready")
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
	defer cancel()

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(names))
	healthy := true
	for _, name := range names {
		if err := h.Checks[name](ctx); err != nil {
			l.Warn().Err(err).Str("check", name).Msg("readiness_check_failed")
			results[name] = err.Error()
			healthy = false
			continue
		}
		results[name] = "ok"
	}

	if !healthy {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "checks": results})
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "ok", "checks": results})
}
