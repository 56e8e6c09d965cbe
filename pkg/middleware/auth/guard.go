package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/petstore/pkg/logging"
	"github.com/Skotchmaster/petstore/pkg/tokens"
)

const principalKey = "principal"

// ErrUserNotFound is returned by a UserResolver when the token subject no longer exists.
var ErrUserNotFound = errors.New("user not found")

// Principal is the authenticated caller attached to the request.
type Principal struct {
	UserID   uint
	Email    string
	IsAdmin  bool
	IsActive bool
}

type UserResolver interface {
	ResolveUser(ctx context.Context, id uint) (Principal, error)
}

type Verifier interface {
	Verify(token string) (*tokens.AccessClaims, error)
}

// Guard turns a bearer token into a Principal. The user row is reloaded on every
// request so deactivation and admin changes take effect without reissuing tokens.
type Guard struct {
	Tokens Verifier
	Users  UserResolver
}

func NewGuard(v Verifier, users UserResolver) *Guard {
	return &Guard{Tokens: v, Users: users}
}

func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := bearerToken(c)
		if !ok {
			return unauthorized(c, "Not authenticated")
		}
		if err := g.authenticate(c, raw); err != nil {
			return err
		}
		return next(c)
	}
}

// RequireAdmin is RequireAuth followed by AdminOnly.
func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.RequireAuth(AdminOnly(next))
}

// Optional attaches a principal when a usable bearer token is present and
// otherwise lets the request through anonymously.
func (g *Guard) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := bearerToken(c)
		if !ok {
			return next(c)
		}
		ctx := c.Request().Context()
		claims, err := g.Tokens.Verify(raw)
		if err != nil {
			return next(c)
		}
		id, err := claims.UserID()
		if err != nil {
			return next(c)
		}
		p, err := g.Users.ResolveUser(ctx, id)
		if err != nil || !p.IsActive {
			return next(c)
		}
		attach(c, p)
		return next(c)
	}
}

func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return unauthorized(c, "Not authenticated")
		}
		if !p.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Not enough permissions")
		}
		return next(c)
	}
}

func PrincipalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}

func (g *Guard) authenticate(c echo.Context, raw string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With().Str("middleware", "auth").Logger()

	claims, err := g.Tokens.Verify(raw)
	if err != nil {
		l.Debug().Err(err).Msg("token_rejected")
		return unauthorized(c, "Invalid or expired token")
	}
	id, err := claims.UserID()
	if err != nil {
		return unauthorized(c, "Invalid or expired token")
	}

	p, err := g.Users.ResolveUser(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return unauthorized(c, "User not found")
		}
		l.Error().Err(err).Uint("user_id", id).Msg("resolve_user_failed")
		return err
	}
	if !p.IsActive {
		return echo.NewHTTPError(http.StatusBadRequest, "Inactive user")
	}

	attach(c, p)
	return nil
}

func attach(c echo.Context, p Principal) {
	c.Set(principalKey, p)
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With().Uint("user_id", p.UserID).Logger()
	c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))
}

func bearerToken(c echo.Context) (string, bool) {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(h[len(prefix):])
	return tok, tok != ""
}

func unauthorized(c echo.Context, msg string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}
