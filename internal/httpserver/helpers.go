package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Skotchmaster/petstore/pkg/logging"
	"github.com/Skotchmaster/petstore/pkg/middleware/auth"
)

func handlerLogger(c echo.Context, name string) zerolog.Logger {
	return logging.FromContext(c.Request().Context()).With().Str("handler", name).Logger()
}

func paramID(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || v == 0 {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, name+" must be a positive integer")
	}
	return uint(v), nil
}

// principal returns the user attached by the auth guard.
func principal(c echo.Context) (auth.Principal, error) {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		return auth.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return p, nil
}

func deleted(c echo.Context, detail string) error {
	return c.JSON(http.StatusOK, map[string]string{"detail": detail})
}

const HeaderTotalCount = "X-Total-Count"

func itoa64(n int64) string {
	return strconv.FormatInt(n, 10)
}
