package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/petstore/pkg/tokens"
)

type stubUsers map[uint]Principal

func (s stubUsers) ResolveUser(_ context.Context, id uint) (Principal, error) {
	p, ok := s[id]
	if !ok {
		return Principal{}, ErrUserNotFound
	}
	return p, nil
}

type failingUsers struct{}

func (failingUsers) ResolveUser(context.Context, uint) (Principal, error) {
	return Principal{}, errors.New("db down")
}

var testSecret = []byte("guard-secret")

func setup(t *testing.T, users UserResolver) (*echo.Echo, *tokens.Issuer) {
	t.Helper()
	iss := tokens.NewIssuer(testSecret, time.Hour)
	g := NewGuard(iss, users)

	e := echo.New()
	whoami := func(c echo.Context) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return c.JSON(http.StatusOK, map[string]any{"anonymous": true})
		}
		return c.JSON(http.StatusOK, map[string]any{"id": p.UserID, "admin": p.IsAdmin})
	}
	e.GET("/me", whoami, g.RequireAuth)
	e.GET("/admin", whoami, g.RequireAdmin)
	e.GET("/maybe", whoami, g.Optional)
	e.GET("/bare-admin", whoami, AdminOnly)
	return e, iss
}

func do(e *echo.Echo, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func mustIssue(t *testing.T, iss *tokens.Issuer, id uint) string {
	t.Helper()
	tok, _, err := iss.Issue(id, "u@example.com")
	require.NoError(t, err)
	return tok
}

func TestRequireAuth(t *testing.T) {
	users := stubUsers{
		1: {UserID: 1, Email: "u@example.com", IsActive: true},
		2: {UserID: 2, Email: "off@example.com", IsActive: false},
	}
	e, iss := setup(t, users)

	t.Run("missing header", func(t *testing.T) {
		rec := do(e, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
		assert.Contains(t, rec.Body.String(), "Not authenticated")
	})

	t.Run("wrong scheme", func(t *testing.T) {
		rec := do(e, "/me", "Basic abc")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Not authenticated")
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := do(e, "/me", "Bearer nope")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid or expired token")
	})

	t.Run("foreign secret", func(t *testing.T) {
		other := tokens.NewIssuer([]byte("other"), time.Hour)
		rec := do(e, "/me", "Bearer "+mustIssue(t, other, 1))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := do(e, "/me", "Bearer "+mustIssue(t, iss, 99))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "User not found")
	})

	t.Run("inactive user", func(t *testing.T) {
		rec := do(e, "/me", "Bearer "+mustIssue(t, iss, 2))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Inactive user")
	})

	t.Run("ok", func(t *testing.T) {
		rec := do(e, "/me", "Bearer "+mustIssue(t, iss, 1))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":1,"admin":false}`, rec.Body.String())
	})
}

func TestRequireAdmin(t *testing.T) {
	users := stubUsers{
		1: {UserID: 1, IsActive: true},
		3: {UserID: 3, IsActive: true, IsAdmin: true},
	}
	e, iss := setup(t, users)

	rec := do(e, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, "/admin", "Bearer "+mustIssue(t, iss, 1))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not enough permissions")

	rec = do(e, "/admin", "Bearer "+mustIssue(t, iss, 3))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":3,"admin":true}`, rec.Body.String())
}

func TestAdminOnly_WithoutPrincipal(t *testing.T) {
	e, _ := setup(t, stubUsers{})
	rec := do(e, "/bare-admin", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptional(t *testing.T) {
	e, iss := setup(t, stubUsers{1: {UserID: 1, IsActive: true}})

	rec := do(e, "/maybe", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"anonymous":true}`, rec.Body.String())

	rec = do(e, "/maybe", "Bearer "+mustIssue(t, iss, 1))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"admin":false}`, rec.Body.String())

	rec = do(e, "/maybe", "Bearer broken")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"anonymous":true}`, rec.Body.String())
}

func TestResolverFailureSurfaces(t *testing.T) {
	e, iss := setup(t, failingUsers{})
	rec := do(e, "/me", "Bearer "+mustIssue(t, iss, 1))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
