// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/storefront"
)

// AuthHandler handles authentication endpoints. Tokens stay on the gateway;
// the browser only ever sees the user record.
type AuthHandler struct {
	base
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(reg *storefront.Registry) *AuthHandler {
	return &AuthHandler{base: base{registry: reg}}
}

// SessionResponse describes the visitor's session
type SessionResponse struct {
	State         string     `json:"state"`
	Authenticated bool       `json:"authenticated"`
	User          *user.User `json:"user"`
}

func sessionOf(sf *storefront.Storefront) SessionResponse {
	return SessionResponse{
		State:         sf.Session.State().String(),
		Authenticated: sf.Session.IsAuthenticated(),
		User:          sf.Session.User(),
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var resp SessionResponse
	err := h.with(c, func(sf *storefront.Storefront) error {
		if _, err := sf.Register(c.Request.Context(), req); err != nil {
			return err
		}
		resp = sessionOf(sf)
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": message(c, "User registered successfully"),
		"data":    resp,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var resp SessionResponse
	err := h.with(c, func(sf *storefront.Storefront) error {
		if _, err := sf.Login(c.Request.Context(), req); err != nil {
			return err
		}
		resp = sessionOf(sf)
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message(c, "Login successful"),
		"data":    resp,
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.with(c, func(sf *storefront.Storefront) error {
		return sf.Logout(c.Request.Context())
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message(c, "Logged out successfully"),
	})
}

// ChangePassword handles POST /auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req user.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var msg string
	err := h.with(c, func(sf *storefront.Storefront) error {
		var err error
		msg, err = sf.ChangePassword(c.Request.Context(), req)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": msg,
	})
}

// GetSession handles GET /auth/session
func (h *AuthHandler) GetSession(c *gin.Context) {
	var resp SessionResponse
	err := h.with(c, func(sf *storefront.Storefront) error {
		resp = sessionOf(sf)
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Session retrieved successfully",
		"data":    resp,
	})
}
