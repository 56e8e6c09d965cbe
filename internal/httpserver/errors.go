package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Skotchmaster/petstore/internal/service"
	"github.com/Skotchmaster/petstore/internal/transport"
	"github.com/Skotchmaster/petstore/pkg/logging"
)

const internalDetail = "Internal server error"

// ErrorHandler renders every error as {"detail": ...}. Errors that are not
// *echo.HTTPError become a 500 with the cause logged.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	detail := internalDetail

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		detail = messageOf(he)
		if he.Internal != nil && status >= http.StatusInternalServerError {
			logging.FromContext(c.Request().Context()).Error().Err(he.Internal).Int("status", status).Msg("internal_error")
		}
	} else {
		logging.FromContext(c.Request().Context()).Error().Err(err).Msg("unhandled_error")
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, transport.DetailResponse{Detail: detail})
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error().Err(werr).Msg("write_error_response_failed")
	}
}

func messageOf(he *echo.HTTPError) string {
	switch m := he.Message.(type) {
	case string:
		return m
	case error:
		return m.Error()
	case nil:
		return http.StatusText(he.Code)
	default:
		return fmt.Sprint(m)
	}
}

// statusOf maps a service error kind to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrUnavailable):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// fail logs "<op>_failed" and converts err into the HTTP error to return.
func fail(l zerolog.Logger, op string, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		l.Warn().Int("status", he.Code).Str("reason", messageOf(he)).Msg(op + "_failed")
		return he
	}

	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		l.Error().Int("status", status).Err(err).Msg(op + "_failed")
		return echo.NewHTTPError(status, internalDetail).SetInternal(err)
	}

	detail := service.Detail(err, http.StatusText(status))
	l.Warn().Int("status", status).Str("reason", detail).Err(err).Msg(op + "_failed")
	return echo.NewHTTPError(status, detail)
}
