// internal/api/inventory.go
package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/your-org/storefront/internal/domain/product"
)

// ListInventory returns a page of stock records
func (c *Client) ListInventory(ctx context.Context, f product.InventoryFilter) (*Page[product.Inventory], error) {
	q := url.Values{}
	setBool(q, "lowStock", f.LowStock)
	return list[product.Inventory](ctx, c, Request{Method: http.MethodGet, Path: "/inventory", Query: q}, pageParams{f.Skip, f.Take}, 0)
}

// GetProductInventory fetches stock for one product
func (c *Client) GetProductInventory(ctx context.Context, productID string) (*product.Inventory, error) {
	var inv product.Inventory
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/inventory/" + url.PathEscape(productID)}, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// UpdateInventory patches stock for one product
func (c *Client) UpdateInventory(ctx context.Context, productID string, req product.InventoryUpdate) (*product.Inventory, error) {
	var inv product.Inventory
	call := Request{Method: http.MethodPatch, Path: "/inventory/" + url.PathEscape(productID), Body: req}
	if err := c.Do(ctx, call, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}
