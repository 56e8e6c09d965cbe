package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/petstore/internal/models"
	"github.com/Skotchmaster/petstore/internal/repo"
	"github.com/Skotchmaster/petstore/internal/transport"
	"github.com/Skotchmaster/petstore/pkg/db"
	"github.com/Skotchmaster/petstore/pkg/events"
	pkg_hash "github.com/Skotchmaster/petstore/pkg/hash"
	"github.com/Skotchmaster/petstore/pkg/logging"
	"github.com/Skotchmaster/petstore/pkg/middleware/auth"
	"github.com/Skotchmaster/petstore/pkg/tokens"
)

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.Issuer
	Events EventPublisher
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *models.User
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*LoginResult, error) {
	l := logging.FromContext(ctx).With().Str("svc", "auth.register").Logger()

	email := normalizeEmail(req.Email)
	if _, err := s.Repo.GetUserByEmail(ctx, email); err == nil {
		return nil, newError(ErrConflict, "Email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pwHash, err := pkg_hash.HashPassword(req.Password)
	if err != nil {
		l.Error().Err(err).Msg("hash_password_failed")
		return nil, err
	}

	user := &models.User{
		Email:          email,
		HashedPassword: pwHash,
		FullName:       strings.TrimSpace(req.FullName),
		Phone:          strings.TrimSpace(req.Phone),
		IsActive:       true,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, newError(ErrConflict, "Email already registered")
		}
		return nil, err
	}

	l.Info().Uint("user_id", user.ID).Msg("user_registered")
	publish(ctx, s.Events, events.TopicUsers, strconv.FormatUint(uint64(user.ID), 10), "user_registered", map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With().Str("svc", "auth.login").Logger()

	user, err := s.Repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrUnauthorized, "Incorrect email or password")
		}
		return nil, err
	}
	if !pkg_hash.CheckPassword(user.HashedPassword, password) {
		l.Warn().Uint("user_id", user.ID).Str("reason", "bad password").Msg("login_failed")
		return nil, newError(ErrUnauthorized, "Incorrect email or password")
	}
	if !user.IsActive {
		return nil, newError(ErrValidation, "Inactive user")
	}

	return s.issue(user)
}

// ResolveUser loads the principal behind a verified token subject.
func (s *AuthService) ResolveUser(ctx context.Context, id uint) (auth.Principal, error) {
	user, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.Principal{}, auth.ErrUserNotFound
		}
		return auth.Principal{}, err
	}
	return auth.Principal{
		UserID:   user.ID,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
		IsActive: user.IsActive,
	}, nil
}

func (s *AuthService) issue(user *models.User) (*LoginResult, error) {
	tok, exp, err := s.Tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: tok, ExpiresAt: exp, User: user}, nil
}
