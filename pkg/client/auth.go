package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Register creates the account and signs in with the returned token.
func (c *Client) Register(ctx context.Context, r Registration) (*Token, error) {
	var tok Token
	if err := c.do(ctx, http.MethodPost, "/auth/register", r, &tok); err != nil {
		return nil, err
	}
	c.session.Set(&tok)
	return &tok, nil
}

// Login posts the OAuth2 password form and keeps the token in the session.
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	form := url.Values{"username": {email}, "password": {password}}
	r := request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   strings.NewReader(form.Encode()),
		ctype:  "application/x-www-form-urlencoded",
	}
	var tok Token
	if _, err := c.send(ctx, r, &tok); err != nil {
		return nil, err
	}
	c.session.Set(&tok)
	return &tok, nil
}

func (c *Client) Logout() {
	c.session.Clear()
}

// Me returns the signed-in user, from the session cache unless refresh is set.
func (c *Client) Me(ctx context.Context, refresh bool) (*User, error) {
	if !refresh {
		if u, ok := c.session.User(); ok && c.session.Authenticated() {
			return &u, nil
		}
	}
	var u User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &u); err != nil {
		return nil, err
	}
	c.session.setUser(&u)
	return &u, nil
}

func (c *Client) UpdateMe(ctx context.Context, p Profile) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPut, "/users/me", p, &u); err != nil {
		return nil, err
	}
	c.session.setUser(&u)
	return &u, nil
}

type UserUpdate struct {
	FullName *string `json:"full_name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	IsAdmin  *bool   `json:"is_admin,omitempty"`
}

func (c *Client) ListUsers(ctx context.Context, skip, limit int) ([]User, error) {
	r := request{method: http.MethodGet, path: "/users", query: window(skip, limit)}
	var out []User
	_, err := c.send(ctx, r, &out)
	return out, err
}

func (c *Client) GetUser(ctx context.Context, id uint) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, idPath("/users", id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUser(ctx context.Context, id uint, upd UserUpdate) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPut, idPath("/users", id), upd, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
