// internal/interfaces/http/handlers/user_admin.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/storefront"
)

// UserAdminHandler handles admin user endpoints
type UserAdminHandler struct {
	base
}

// NewUserAdminHandler creates a new user admin handler
func NewUserAdminHandler(reg *storefront.Registry) *UserAdminHandler {
	return &UserAdminHandler{base: base{registry: reg}}
}

// GetUser handles GET /admin/users/:id
func (h *UserAdminHandler) GetUser(c *gin.Context) {
	var u *user.User
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		u, err = sf.API.GetUser(c.Request.Context(), c.Param("id"))
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User retrieved successfully",
		"data":    profileOf(u),
	})
}

// UpdateUserStatus handles PUT /admin/users/:id/status
func (h *UserAdminHandler) UpdateUserStatus(c *gin.Context) {
	var req struct {
		IsActive *bool `json:"isActive" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var u *user.User
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		u, err = sf.API.UpdateUser(c.Request.Context(), c.Param("id"), user.UpdateRequest{IsActive: req.IsActive})
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User status updated successfully",
		"data":    profileOf(u),
	})
}

// DeleteUser handles DELETE /admin/users/:id
func (h *UserAdminHandler) DeleteUser(c *gin.Context) {
	err := h.with(c, func(sf *storefront.Storefront) error {
		return sf.API.DeleteUser(c.Request.Context(), c.Param("id"))
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}
