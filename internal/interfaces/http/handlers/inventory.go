// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/api"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/storefront"
)

// InventoryHandler handles admin stock endpoints
type InventoryHandler struct {
	base
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(reg *storefront.Registry) *InventoryHandler {
	return &InventoryHandler{base: base{registry: reg}}
}

// InventoryView flags low stock
type InventoryView struct {
	product.Inventory
	LowStock bool `json:"lowStock"`
}

// GetInventory handles GET /admin/inventory
func (h *InventoryHandler) GetInventory(c *gin.Context) {
	filter := product.InventoryFilter{
		LowStock: c.Query("lowStock") == "true",
		Skip:     queryInt(c, "skip"),
		Take:     queryInt(c, "take"),
	}

	var page *api.Page[product.Inventory]
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		page, err = sf.API.ListInventory(c.Request.Context(), filter)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]InventoryView, 0, len(page.Data))
	for _, inv := range page.Data {
		views = append(views, InventoryView{Inventory: inv, LowStock: inv.IsLowStock()})
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory retrieved successfully",
		"data":    views,
		"meta": gin.H{
			"total": page.Total,
			"skip":  page.Skip,
			"take":  page.Take,
		},
	})
}

// GetStockLevel handles GET /admin/inventory/:productId
func (h *InventoryHandler) GetStockLevel(c *gin.Context) {
	var inv *product.Inventory
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		inv, err = sf.API.GetProductInventory(c.Request.Context(), c.Param("productId"))
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock level retrieved successfully",
		"data":    InventoryView{Inventory: *inv, LowStock: inv.IsLowStock()},
	})
}

// UpdateStockLevel handles PUT /admin/inventory/:productId
func (h *InventoryHandler) UpdateStockLevel(c *gin.Context) {
	var req product.InventoryUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var inv *product.Inventory
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		inv, err = sf.API.UpdateInventory(c.Request.Context(), c.Param("productId"), req)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock level updated successfully",
		"data":    InventoryView{Inventory: *inv, LowStock: inv.IsLowStock()},
	})
}
