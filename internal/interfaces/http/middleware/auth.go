// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/storefront"
)

// AdminMiddleware ensures the visitor's session belongs to an admin
func AdminMiddleware(reg *storefront.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := reg.With(c.Request.Context(), c.GetString(VisitorKey), func(sf *storefront.Storefront) error {
			_, err := sf.RequireAdmin()
			return err
		})

		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, storefront.ErrNotAuthenticated):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		case errors.Is(err, storefront.ErrForbidden):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		default:
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
		}
	}
}
