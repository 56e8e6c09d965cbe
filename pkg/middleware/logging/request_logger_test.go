package loggingmw

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/petstore/pkg/logging"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &m))
	return m
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	e := echo.New()
	e.Use(RequestLogger(base))
	e.GET("/ok/:id", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info().Msg("inside")
		return c.String(http.StatusOK, "hi")
	})
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	t.Run("success carries request id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/ok/7", nil)
		req.Header.Set(echo.HeaderXRequestID, "rid-1")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, "rid-1", rec.Header().Get(echo.HeaderXRequestID))
		assert.Contains(t, buf.String(), `"message":"inside"`)
		line := lastLine(t, &buf)
		assert.Equal(t, "info", line["level"])
		assert.Equal(t, "/ok/:id", line["path"])
		assert.Equal(t, "rid-1", line["request_id"])
		assert.EqualValues(t, 200, line["status"])
	})

	t.Run("error status is logged after handler", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		line := lastLine(t, &buf)
		assert.Equal(t, "warn", line["level"])
		assert.EqualValues(t, 404, line["status"])
	})
}
