package client

import (
	"sync"
	"time"
)

// Session caches the access token and the signed-in user.
type Session struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	user      *User
	now       func() time.Time
}

func (s *Session) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *Session) Set(t *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = t.AccessToken
	s.expiresAt = t.ExpiresAt
	s.user = t.User
}

// Token returns the access token, or "" when none is held or it has expired.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return ""
	}
	if !s.expiresAt.IsZero() && !s.clock().Before(s.expiresAt) {
		return ""
	}
	return s.token
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// User returns a copy of the cached user.
func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Session) setUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

func (s *Session) IsAdmin() bool {
	u, ok := s.User()
	return ok && u.IsAdmin
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
	s.user = nil
}
