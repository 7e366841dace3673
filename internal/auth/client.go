// Package auth handles account authentication against the tracking
// service and the interactive login flow.
package auth

import (
	"context"
	"log/slog"

	"github.com/dropbinge/dropbinge/internal/api"
)

// User is the authenticated account identity.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Session is the result of a successful login or registration.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Client performs authentication calls.
type Client struct {
	api    *api.Client
	logger *slog.Logger
}

// NewClient creates an auth client.
func NewClient(apiClient *api.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{api: apiClient, logger: logger}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token. Invalid credentials
// surface as domain.ErrAuthFailed.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := c.api.Post(ctx, "/api/auth/login", credentials{Email: email, Password: password}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Register creates an account and returns its first session.
func (c *Client) Register(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := c.api.Post(ctx, "/api/auth/register", credentials{Email: email, Password: password}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Me validates the current token and returns the account behind it.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.api.Get(ctx, "/api/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}
