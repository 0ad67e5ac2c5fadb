// internal/api/users.go
package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/your-org/storefront/internal/domain/user"
)

// GetUser fetches a user record
func (c *Client) GetUser(ctx context.Context, id string) (*user.User, error) {
	var u user.User
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/users/" + url.PathEscape(id)}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser patches a user record
func (c *Client) UpdateUser(ctx context.Context, id string, req user.UpdateRequest) (*user.User, error) {
	var u user.User
	if err := c.Do(ctx, Request{Method: http.MethodPatch, Path: "/users/" + url.PathEscape(id), Body: req}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser removes a user
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: "/users/" + url.PathEscape(id)}, nil)
}
