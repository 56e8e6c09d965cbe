package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/petstore/internal/service"
	"github.com/Skotchmaster/petstore/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func tokenResponse(res *service.LoginResult) transport.TokenResponse {
	return transport.TokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   "bearer",
		ExpiresAt:   res.ExpiresAt,
		User:        res.User,
	}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := handlerLogger(c, "auth.register")

	var req transport.RegisterRequest
	if err := bind(c, l, "register", &req); err != nil {
		return err
	}

	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register", err)
	}

	l.Info().Uint("user_id", res.User.ID).Msg("register_success")
	return c.JSON(http.StatusCreated, tokenResponse(res))
}

// Login accepts the OAuth2 password form (username carries the email) or the
// same fields as JSON.
func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := handlerLogger(c, "auth.login")

	var req transport.LoginRequest
	if err := bind(c, l, "login", &req); err != nil {
		return err
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return fail(l, "login", err)
	}

	l.Info().Uint("user_id", res.User.ID).Msg("login_success")
	return c.JSON(http.StatusOK, tokenResponse(res))
}
