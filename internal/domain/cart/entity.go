// internal/domain/cart/entity.go
package cart

import (
	"github.com/your-org/storefront/internal/domain/product"
)

// Line is one product in the cart. UnitPrice is captured when the line is
// first added and is not refreshed afterwards.
type Line struct {
	ProductID string          `json:"productId"`
	Product   product.Product `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice int64           `json:"unitPrice"`
}

// Subtotal returns quantity times captured unit price
func (l Line) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Totals are derived from the lines and never set directly
type Totals struct {
	TotalItems  int   `json:"totalItems"`
	TotalAmount int64 `json:"totalAmount"`
}

// Snapshot is the persisted and reported shape of a cart
type Snapshot struct {
	Items       []Line `json:"items"`
	TotalItems  int    `json:"totalItems"`
	TotalAmount int64  `json:"totalAmount"`
}

// persisted wraps the snapshot with a format version
type persisted struct {
	State   Snapshot `json:"state"`
	Version int      `json:"version"`
}

// IssueKind classifies a difference between a cart line and the live catalog
type IssueKind string

const (
	IssuePriceChanged IssueKind = "price_changed"
	IssueUnavailable  IssueKind = "unavailable"
	IssueMissing      IssueKind = "missing"
)

// Issue reports one line whose captured data no longer matches the catalog
type Issue struct {
	ProductID     string    `json:"productId"`
	Kind          IssueKind `json:"kind"`
	CapturedPrice int64     `json:"capturedPrice"`
	LivePrice     int64     `json:"livePrice,omitempty"`
	Message       string    `json:"message"`
}

func calculateTotals(lines []Line) Totals {
	var totals Totals
	for _, l := range lines {
		totals.TotalItems += l.Quantity
		totals.TotalAmount += l.Subtotal()
	}
	return totals
}
