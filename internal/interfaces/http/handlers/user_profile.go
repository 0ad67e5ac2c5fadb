// internal/interfaces/http/handlers/user_profile.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/storefront"
)

// UserProfileHandler handles the signed-in user's profile
type UserProfileHandler struct {
	base
}

// NewUserProfileHandler creates a new profile handler
func NewUserProfileHandler(reg *storefront.Registry) *UserProfileHandler {
	return &UserProfileHandler{base: base{registry: reg}}
}

// ProfileResponse adds display fields to the user record
type ProfileResponse struct {
	*user.User
	FullName    string `json:"fullName"`
	DisplayName string `json:"displayName"`
}

func profileOf(u *user.User) ProfileResponse {
	return ProfileResponse{User: u, FullName: u.GetFullName(), DisplayName: u.GetDisplayName()}
}

// GetProfile handles GET /profile
func (h *UserProfileHandler) GetProfile(c *gin.Context) {
	var u *user.User
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		u, err = sf.Profile(c.Request.Context())
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile retrieved successfully",
		"data":    profileOf(u),
	})
}

// UpdateProfile handles PUT /profile
func (h *UserProfileHandler) UpdateProfile(c *gin.Context) {
	var req user.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	// Only admins may change activation
	req.IsActive = nil

	var u *user.User
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		u, err = sf.UpdateProfile(c.Request.Context(), req)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message(c, "Profile updated successfully"),
		"data":    profileOf(u),
	})
}
