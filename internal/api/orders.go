// internal/api/orders.go
package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/your-org/storefront/internal/domain/order"
)

// ListMyOrders returns the signed-in user's orders. Transient failures are retried.
func (c *Client) ListMyOrders(ctx context.Context, f order.Filter) (*Page[order.Order], error) {
	q := url.Values{}
	setString(q, "status", string(f.Status))
	req := Request{Method: http.MethodGet, Path: "/orders/my-orders", Query: q}
	return list[order.Order](ctx, c, req, pageParams{f.Skip, f.Take}, c.backend.listRetries)
}

// GetOrder fetches one order
func (c *Client) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/orders/" + url.PathEscape(id)}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder places an order
func (c *Client) CreateOrder(ctx context.Context, req order.CreateRequest) (*order.Order, error) {
	var o order.Order
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/orders", Body: req}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateOrderStatus moves an order to status
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status order.Status) (*order.Order, error) {
	var o order.Order
	req := Request{
		Method: http.MethodPatch,
		Path:   "/orders/" + url.PathEscape(id) + "/status",
		Body:   order.StatusUpdate{Status: status},
	}
	if err := c.Do(ctx, req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}
