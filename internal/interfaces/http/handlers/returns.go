// internal/interfaces/http/handlers/returns.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/api"
	"github.com/your-org/storefront/internal/domain/returns"
	"github.com/your-org/storefront/internal/storefront"
)

// ReturnHandler handles return requests
type ReturnHandler struct {
	base
}

// NewReturnHandler creates a new return handler
func NewReturnHandler(reg *storefront.Registry) *ReturnHandler {
	return &ReturnHandler{base: base{registry: reg}}
}

// ReturnView adds display fields to a return request
type ReturnView struct {
	*returns.Return
	StatusLabel string `json:"statusLabel"`
}

func returnView(r *returns.Return) ReturnView {
	return ReturnView{Return: r, StatusLabel: r.Status.Label()}
}

// GetReturns handles GET /returns
func (h *ReturnHandler) GetReturns(c *gin.Context) {
	filter := returns.Filter{
		OrderID: c.Query("orderId"),
		Status:  returns.Status(strings.ToUpper(c.Query("status"))),
		Skip:    queryInt(c, "skip"),
		Take:    queryInt(c, "take"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}

	var page *api.Page[returns.Return]
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		page, err = sf.MyReturns(c.Request.Context(), filter)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]ReturnView, 0, len(page.Data))
	for i := range page.Data {
		views = append(views, returnView(&page.Data[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Return requests retrieved successfully",
		"data":    views,
		"meta": gin.H{
			"total": page.Total,
			"skip":  page.Skip,
			"take":  page.Take,
		},
	})
}

// GetReturn handles GET /returns/:id
func (h *ReturnHandler) GetReturn(c *gin.Context) {
	var r *returns.Return
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		r, err = sf.Return(c.Request.Context(), c.Param("id"))
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Return request retrieved successfully",
		"data":    returnView(r),
	})
}

// CreateReturn handles POST /returns
func (h *ReturnHandler) CreateReturn(c *gin.Context) {
	var req returns.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var r *returns.Return
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		r, err = sf.RequestReturn(c.Request.Context(), req)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": message(c, "Return request submitted successfully"),
		"data":    returnView(r),
	})
}

// AdminUpdateReturnStatus handles PUT /admin/returns/:id/status
func (h *ReturnHandler) AdminUpdateReturnStatus(c *gin.Context) {
	var req returns.StatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.Status = returns.Status(strings.ToUpper(string(req.Status)))

	var r *returns.Return
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		r, err = sf.API.UpdateReturnStatus(c.Request.Context(), c.Param("id"), req.Status)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Return status updated successfully",
		"data":    returnView(r),
	})
}
