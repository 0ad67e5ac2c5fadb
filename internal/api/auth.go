// internal/api/auth.go
package api

import (
	"context"
	"net/http"

	"github.com/your-org/storefront/internal/domain/user"
)

// Login exchanges credentials for tokens
func (c *Client) Login(ctx context.Context, req user.LoginRequest) (*user.AuthTokens, error) {
	var tokens user.AuthTokens
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/login", Body: req}, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Register creates an account and signs it in. The role defaults to USER.
func (c *Client) Register(ctx context.Context, req user.RegisterRequest) (*user.AuthTokens, error) {
	if req.Role == "" {
		req.Role = user.RoleUser
	}
	var tokens user.AuthTokens
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/register", Body: req}, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// ChangePassword updates the signed-in user's password and returns the backend's message
func (c *Client) ChangePassword(ctx context.Context, req user.ChangePasswordRequest) (string, error) {
	var resp user.MessageResponse
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/change-password", Body: req}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
