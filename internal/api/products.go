// internal/api/products.go
package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/your-org/storefront/internal/domain/product"
)

// ListProducts returns a page of the catalog
func (c *Client) ListProducts(ctx context.Context, f product.Filter) (*Page[product.Product], error) {
	q := url.Values{}
	setString(q, "search", f.Search)
	setString(q, "category", f.Category)
	setString(q, "brand", f.Brand)
	return list[product.Product](ctx, c, Request{Method: http.MethodGet, Path: "/products", Query: q}, pageParams{f.Skip, f.Take}, 0)
}

// GetProduct fetches one product
func (c *Client) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	var p product.Product
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/products/" + url.PathEscape(id)}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct adds a product to the catalog
func (c *Client) CreateProduct(ctx context.Context, req product.CreateRequest) (*product.Product, error) {
	var p product.Product
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/products", Body: req}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct patches a product
func (c *Client) UpdateProduct(ctx context.Context, id string, req product.UpdateRequest) (*product.Product, error) {
	var p product.Product
	if err := c.Do(ctx, Request{Method: http.MethodPatch, Path: "/products/" + url.PathEscape(id), Body: req}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProduct removes a product
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: "/products/" + url.PathEscape(id)}, nil)
}
