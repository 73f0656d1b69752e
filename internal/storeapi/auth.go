package storeapi

import (
	"context"
	"fmt"
	"net/http"

	"storefront/internal/model"
)

// Login exchanges credentials for a session. A response without a token or
// user is treated as a failed login.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	p, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   loginRequest{Email: creds.Email, Password: creds.Password},
	})
	if err != nil {
		return nil, err
	}

	var w wireLogin
	if err := decodeObject(p.data, &w, ""); err != nil {
		return nil, model.NewUpstreamError(serviceName, fmt.Errorf("parsing login response: %w", err))
	}
	if w.Token == "" || w.User == nil {
		msg := p.message
		if msg == "" {
			msg = "login failed"
		}
		return nil, model.NewUnauthorizedError(msg)
	}

	return &model.Session{Token: w.Token, User: toUser(*w.User)}, nil
}

// Register creates a USER account. It does not sign in.
func (c *Client) Register(ctx context.Context, reg model.Registration) error {
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/create/user",
		body: registerRequest{
			Username: reg.Username,
			Email:    reg.Email,
			Password: reg.Password,
			Role:     model.RoleUser,
		},
	})
	return err
}

// ForgotPassword asks the backend to email a reset link.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/forgot-password",
		body:   emailRequest{Email: email},
	})
	return err
}

// ResetPassword sets a new password using the token from the reset email.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	_, err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/auth/reset-password" + pathID(token),
		body:     passwordRequest{Password: password},
		resource: "reset token",
	})
	return err
}

// ValidateSession checks token with the cheapest authenticated call the
// backend offers, the caller's order list.
func (c *Client) ValidateSession(ctx context.Context, token string) error {
	if token == "" {
		return model.NewUnauthorizedError("no session token")
	}
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/orders/my", token: token})
	return err
}
