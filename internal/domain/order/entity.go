// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/your-org/storefront/internal/domain/product"
)

// Status represents the order status
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

var statusLabels = map[Status]string{
	StatusPending:   "Awaiting confirmation",
	StatusConfirmed: "Confirmed",
	StatusShipped:   "Shipped",
	StatusDelivered: "Delivered",
	StatusCancelled: "Cancelled",
}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the human readable status
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsReturnable reports whether a return may be requested for an order in this status
func (s Status) IsReturnable() bool {
	return s == StatusDelivered
}

// ShippingAddress is where an order is delivered
type ShippingAddress struct {
	Province   string `json:"province" validate:"required"`
	City       string `json:"city" validate:"required"`
	Street     string `json:"street" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
}

// Order is a server-owned order snapshot
type Order struct {
	ID              string          `json:"id" validate:"required"`
	UserID          string          `json:"userId"`
	Status          Status          `json:"status" validate:"required,oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"`
	TotalAmount     int64           `json:"totalAmount"`
	ShippingAddress ShippingAddress `json:"shippingAddress" validate:"-"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	Items           []OrderItem     `json:"items,omitempty" validate:"dive"`
}

// OrderItem represents one line of an order
type OrderItem struct {
	ID         string           `json:"id"`
	OrderID    string           `json:"orderId"`
	ProductID  string           `json:"productId" validate:"required"`
	Quantity   int              `json:"quantity" validate:"gte=1"`
	UnitPrice  int64            `json:"unitPrice"`
	TotalPrice *int64           `json:"totalPrice,omitempty"`
	Product    *product.Product `json:"product,omitempty"`
}

// LineTotal returns the item total, computing it when the backend omitted it
func (i *OrderItem) LineTotal() int64 {
	if i.TotalPrice != nil {
		return *i.TotalPrice
	}
	return i.UnitPrice * int64(i.Quantity)
}

// ItemCount returns the sum of item quantities
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// ShortID returns the last eight characters of the id for display
func (o *Order) ShortID() string {
	if len(o.ID) <= 8 {
		return o.ID
	}
	return o.ID[len(o.ID)-8:]
}

// LineRequest is one line of a create-order request
type LineRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
	UnitPrice int64  `json:"unitPrice" validate:"gte=0"`
}

// CreateRequest is the body for placing an order
type CreateRequest struct {
	Items           []LineRequest   `json:"items" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	TotalAmount     int64           `json:"totalAmount" validate:"gte=0"`
}

// StatusUpdate is the body for changing an order status
type StatusUpdate struct {
	Status Status `json:"status" validate:"required,oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"`
}

// Filter narrows an order listing
type Filter struct {
	Status Status
	Skip   int
	Take   int
}
