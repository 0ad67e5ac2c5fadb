// internal/api/returns.go
package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/your-org/storefront/internal/domain/returns"
)

// ListReturns returns the caller's return requests. Transient failures are retried.
func (c *Client) ListReturns(ctx context.Context, f returns.Filter) (*Page[returns.Return], error) {
	q := url.Values{}
	setString(q, "orderId", f.OrderID)
	setString(q, "status", string(f.Status))
	req := Request{Method: http.MethodGet, Path: "/returns", Query: q}
	return list[returns.Return](ctx, c, req, pageParams{f.Skip, f.Take}, c.backend.listRetries)
}

// GetReturn fetches one return request
func (c *Client) GetReturn(ctx context.Context, id string) (*returns.Return, error) {
	var r returns.Return
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/returns/" + url.PathEscape(id)}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReturn files a return request
func (c *Client) CreateReturn(ctx context.Context, req returns.CreateRequest) (*returns.Return, error) {
	var r returns.Return
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/returns", Body: req}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateReturnStatus moves a return to status
func (c *Client) UpdateReturnStatus(ctx context.Context, id string, status returns.Status) (*returns.Return, error) {
	var r returns.Return
	req := Request{
		Method: http.MethodPatch,
		Path:   "/returns/" + url.PathEscape(id) + "/status",
		Body:   returns.StatusUpdate{Status: status},
	}
	if err := c.Do(ctx, req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
