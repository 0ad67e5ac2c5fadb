// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/pkg/money"
	"github.com/your-org/storefront/internal/storefront"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	base
	format  money.Formatter
	maxLine int
}

// NewCartHandler creates a new cart handler
func NewCartHandler(reg *storefront.Registry, cfg *config.Config) *CartHandler {
	return &CartHandler{
		base:    base{registry: reg},
		format:  money.NewFormatter(cfg.Display.Locale, cfg.Display.Currency),
		maxLine: cfg.Cart.MaxLineQuantity,
	}
}

// AddToCartRequest is the body of POST /cart/items
type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItemRequest is the body of PUT /cart/items/:productId
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartLineView is a cart line with display strings
type CartLineView struct {
	cart.Line
	DisplayQuantity string `json:"displayQuantity"`
	DisplayPrice    string `json:"displayPrice"`
	DisplaySubtotal string `json:"displaySubtotal"`
}

// CartView is the cart as returned to the browser
type CartView struct {
	Items        []CartLineView `json:"items"`
	TotalItems   int            `json:"totalItems"`
	TotalAmount  int64          `json:"totalAmount"`
	DisplayTotal string         `json:"displayTotal"`
	IsOpen       bool           `json:"isOpen"`
}

func (h *CartHandler) view(snapshot cart.Snapshot, open bool) CartView {
	v := CartView{
		Items:        make([]CartLineView, 0, len(snapshot.Items)),
		TotalItems:   snapshot.TotalItems,
		TotalAmount:  snapshot.TotalAmount,
		DisplayTotal: h.format.Price(snapshot.TotalAmount),
		IsOpen:       open,
	}
	for _, l := range snapshot.Items {
		v.Items = append(v.Items, CartLineView{
			Line:            l,
			DisplayQuantity: h.format.Quantity(l.Quantity),
			DisplayPrice:    h.format.Price(l.UnitPrice),
			DisplaySubtotal: h.format.Price(l.Subtotal()),
		})
	}
	return v
}

// cartAction runs op and responds with the resulting cart
func (h *CartHandler) cartAction(c *gin.Context, msg string, op func(*storefront.Storefront) (cart.Snapshot, error)) {
	var v CartView
	err := h.with(c, func(sf *storefront.Storefront) error {
		snapshot, err := op(sf)
		v = h.view(snapshot, sf.Cart.IsOpen())
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message(c, msg),
		"data":    v,
	})
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	h.cartAction(c, "Cart retrieved successfully", func(sf *storefront.Storefront) (cart.Snapshot, error) {
		return sf.Cart.Snapshot(), nil
	})
}

// AddToCart handles POST /cart/items. The quantity is kept inside the stepper range.
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	quantity := money.ClampQuantity(req.Quantity, money.MinQuantity, h.maxLine)

	h.cartAction(c, "Item added to cart successfully", func(sf *storefront.Storefront) (cart.Snapshot, error) {
		return sf.AddToCart(c.Request.Context(), req.ProductID, quantity)
	})
}

// UpdateCartItem handles PUT /cart/items/:productId. Zero or less removes the line.
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	quantity := req.Quantity
	if quantity > 0 {
		quantity = money.ClampQuantity(quantity, money.MinQuantity, h.maxLine)
	}

	h.cartAction(c, "Cart item updated successfully", func(sf *storefront.Storefront) (cart.Snapshot, error) {
		return sf.SetQuantity(c.Request.Context(), c.Param("productId"), quantity)
	})
}

// RemoveFromCart handles DELETE /cart/items/:productId
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	h.cartAction(c, "Item removed from cart successfully", func(sf *storefront.Storefront) (cart.Snapshot, error) {
		return sf.RemoveFromCart(c.Request.Context(), c.Param("productId"))
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	h.cartAction(c, "Cart cleared successfully", func(sf *storefront.Storefront) (cart.Snapshot, error) {
		return sf.ClearCart(c.Request.Context())
	})
}

// OpenCart handles POST /cart/open
func (h *CartHandler) OpenCart(c *gin.Context) {
	h.cartAction(c, "Cart opened", func(sf *storefront.Storefront) (cart.Snapshot, error) {
		sf.Cart.Open()
		return sf.Cart.Snapshot(), nil
	})
}

// CloseCart handles POST /cart/close
func (h *CartHandler) CloseCart(c *gin.Context) {
	h.cartAction(c, "Cart closed", func(sf *storefront.Storefront) (cart.Snapshot, error) {
		sf.Cart.Close()
		return sf.Cart.Snapshot(), nil
	})
}

// ValidateCart handles GET /cart/check and reports lines whose price or
// availability changed since they were added
func (h *CartHandler) ValidateCart(c *gin.Context) {
	var issues []cart.Issue
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		issues, err = sf.CheckCart(c.Request.Context())
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if issues == nil {
		issues = []cart.Issue{}
	}

	msg := "Cart validation successful"
	if len(issues) > 0 {
		msg = "Some items in your cart have changed"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": msg,
		"data": gin.H{
			"valid":    len(issues) == 0,
			"issues":   issues,
			"warnings": warnings(c),
		},
	})
}
