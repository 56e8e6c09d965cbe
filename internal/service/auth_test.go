package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/petstore/internal/models"
	"github.com/Skotchmaster/petstore/internal/transport"
	"github.com/Skotchmaster/petstore/pkg/middleware/auth"
	"github.com/Skotchmaster/petstore/pkg/tokens"
)

func newAuth(e *env, pub EventPublisher) *AuthService {
	return &AuthService{Repo: e.repo, Tokens: tokens.NewIssuer([]byte("test"), time.Hour), Events: pub}
}

func TestRegister(t *testing.T) {
	e := newEnv(t)
	pub := &fakePublisher{}
	svc := newAuth(e, pub)
	ctx := context.Background()

	res, err := svc.Register(ctx, transport.RegisterRequest{Email: " New@Example.com ", Password: "pw", FullName: "New User"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", res.User.Email)
	assert.True(t, res.User.IsActive)
	assert.False(t, res.User.IsAdmin)
	assert.NotEmpty(t, res.AccessToken)

	claims, err := svc.Tokens.Verify(res.AccessToken)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id)
	assert.Equal(t, []string{"user_registered"}, pub.types())

	_, err = svc.Register(ctx, transport.RegisterRequest{Email: "new@example.com", Password: "other"})
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "Email already registered", Detail(err, ""))

	var n int64
	require.NoError(t, e.repo.DB.Model(&models.User{}).Where("email = ?", "new@example.com").Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	svc := newAuth(e, nil)
	ctx := context.Background()
	e.user("shopper@example.com", false)

	res, err := svc.Login(ctx, "Shopper@example.com", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)

	_, err = svc.Login(ctx, "shopper@example.com", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Incorrect email or password", Detail(err, ""))

	_, err = svc.Login(ctx, "nobody@example.com", "secret")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogin_InactiveUser(t *testing.T) {
	e := newEnv(t)
	svc := newAuth(e, nil)
	ctx := context.Background()
	p := e.user("off@example.com", false)
	_, err := e.repo.UpdateUser(ctx, p.UserID, map[string]any{"is_active": false})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "off@example.com", "secret")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Inactive user", Detail(err, ""))
}

func TestResolveUser(t *testing.T) {
	e := newEnv(t)
	svc := newAuth(e, nil)
	ctx := context.Background()
	admin := e.user("root@example.com", true)

	p, err := svc.ResolveUser(ctx, admin.UserID)
	require.NoError(t, err)
	assert.True(t, p.IsAdmin)
	assert.True(t, p.IsActive)

	_, err = svc.ResolveUser(ctx, 424242)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestRegister_PublishFailureDoesNotFail(t *testing.T) {
	e := newEnv(t)
	svc := newAuth(e, &fakePublisher{err: errBoom})

	_, err := svc.Register(context.Background(), transport.RegisterRequest{Email: "x@example.com", Password: "pw"})
	assert.NoError(t, err)
}
