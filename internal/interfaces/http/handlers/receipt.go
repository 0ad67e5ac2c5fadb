// internal/interfaces/http/handlers/receipt.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/pkg/pdf"
	"github.com/your-org/storefront/internal/storefront"
)

// ReceiptHandler renders order receipts
type ReceiptHandler struct {
	base
	pdfService *pdf.Service
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(reg *storefront.Registry, pdfService *pdf.Service) *ReceiptHandler {
	return &ReceiptHandler{base: base{registry: reg}, pdfService: pdfService}
}

// GetReceipt handles GET /orders/:id/receipt. ?format=html returns the page
// the PDF is printed from.
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
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

	if c.Query("format") == "html" {
		page, err := h.pdfService.RenderReceiptHTML(o)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render receipt"})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
		return
	}

	pdfBuffer, err := h.pdfService.GenerateReceipt(o)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate receipt"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", o.ShortID()))
	c.Header("Content-Length", strconv.Itoa(pdfBuffer.Len()))
	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}
