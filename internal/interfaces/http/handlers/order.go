// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/api"
	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/storefront"
)

// OrderHandler handles the visitor's orders and admin status changes
type OrderHandler struct {
	base
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(reg *storefront.Registry) *OrderHandler {
	return &OrderHandler{base: base{registry: reg}}
}

// OrderView adds display fields to an order
type OrderView struct {
	*order.Order
	ShortID     string `json:"shortId"`
	StatusLabel string `json:"statusLabel"`
	ItemCount   int    `json:"itemCount"`
	Returnable  bool   `json:"returnable"`
}

func orderView(o *order.Order) OrderView {
	return OrderView{
		Order:       o,
		ShortID:     o.ShortID(),
		StatusLabel: o.Status.Label(),
		ItemCount:   o.ItemCount(),
		Returnable:  o.Status.IsReturnable(),
	}
}

// GetOrders handles GET /orders
func (h *OrderHandler) GetOrders(c *gin.Context) {
	filter := order.Filter{
		Status: order.Status(strings.ToUpper(c.Query("status"))),
		Skip:   queryInt(c, "skip"),
		Take:   queryInt(c, "take"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}

	var page *api.Page[order.Order]
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		page, err = sf.MyOrders(c.Request.Context(), filter)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]OrderView, 0, len(page.Data))
	for i := range page.Data {
		views = append(views, orderView(&page.Data[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    views,
		"meta": gin.H{
			"total": page.Total,
			"skip":  page.Skip,
			"take":  page.Take,
		},
	})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	var o *order.Order
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		o, err = sf.Order(c.Request.Context(), c.Param("id"))
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    orderView(o),
	})
}

// AdminUpdateOrderStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) AdminUpdateOrderStatus(c *gin.Context) {
	var req order.StatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.Status = order.Status(strings.ToUpper(string(req.Status)))

	var o *order.Order
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		o, err = sf.API.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"data":    orderView(o),
	})
}
