// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/api"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/pkg/money"
	"github.com/your-org/storefront/internal/storefront"
)

// ProductHandler handles catalog endpoints and admin product management
type ProductHandler struct {
	base
	format money.Formatter
}

// NewProductHandler creates a new product handler
func NewProductHandler(reg *storefront.Registry, cfg *config.Config) *ProductHandler {
	return &ProductHandler{
		base:   base{registry: reg},
		format: money.NewFormatter(cfg.Display.Locale, cfg.Display.Currency),
	}
}

// ProductView adds display fields to a product
type ProductView struct {
	product.Product
	DisplayPrice string `json:"displayPrice"`
	Image        string `json:"image"`
}

func (h *ProductHandler) view(p product.Product) ProductView {
	return ProductView{Product: p, DisplayPrice: h.format.Price(p.Price), Image: p.PrimaryImage()}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	filter := product.Filter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Brand:    c.Query("brand"),
		Skip:     queryInt(c, "skip"),
		Take:     queryInt(c, "take"),
	}

	var page *api.Page[product.Product]
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		page, err = sf.Products(c.Request.Context(), filter)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]ProductView, 0, len(page.Data))
	for _, p := range page.Data {
		views = append(views, h.view(p))
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    views,
		"meta": gin.H{
			"total": page.Total,
			"skip":  page.Skip,
			"take":  page.Take,
		},
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	var p *product.Product
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		p, err = sf.Product(c.Request.Context(), c.Param("id"))
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    h.view(*p),
	})
}

// AdminCreateProduct handles POST /admin/products
func (h *ProductHandler) AdminCreateProduct(c *gin.Context) {
	var req product.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var p *product.Product
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		p, err = sf.API.CreateProduct(c.Request.Context(), req)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"data":    h.view(*p),
	})
}

// AdminUpdateProduct handles PUT /admin/products/:id
func (h *ProductHandler) AdminUpdateProduct(c *gin.Context) {
	var req product.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var p *product.Product
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		p, err = sf.API.UpdateProduct(c.Request.Context(), c.Param("id"), req)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"data":    h.view(*p),
	})
}

// AdminDeleteProduct handles DELETE /admin/products/:id
func (h *ProductHandler) AdminDeleteProduct(c *gin.Context) {
	err := h.with(c, func(sf *storefront.Storefront) error {
		return sf.API.DeleteProduct(c.Request.Context(), c.Param("id"))
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}
