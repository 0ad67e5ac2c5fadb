// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/storefront"
)

// CheckoutHandler turns the visitor's cart into an order
type CheckoutHandler struct {
	base
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(reg *storefront.Registry) *CheckoutHandler {
	return &CheckoutHandler{base: base{registry: reg}}
}

// CheckoutRequest is the body of POST /checkout
type CheckoutRequest struct {
	ShippingAddress order.ShippingAddress `json:"shippingAddress"`
}

// PlaceOrder handles POST /checkout. The cart is emptied only when the
// backend accepted the order.
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var created *order.Order
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		created, err = sf.PlaceOrder(c.Request.Context(), req.ShippingAddress)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": message(c, "Order created successfully"),
		"data":    created,
	})
}
