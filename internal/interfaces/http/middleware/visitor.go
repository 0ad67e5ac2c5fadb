// internal/interfaces/http/middleware/visitor.go
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/storefront/internal/api"
	"github.com/your-org/storefront/internal/storefront"
)

// Context keys set by the middleware
const (
	RequestIDKey = "request_id"
	VisitorKey   = "visitor_id"

	VisitorCookie   = "visitor_id"
	RequestIDHeader = "X-Request-ID"
)

// RequestID reuses the caller's X-Request-ID or generates one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(api.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// Visitor identifies the browser by the visitor_id cookie, issuing a new one
// when it is missing or malformed
func Visitor(ttl time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(VisitorCookie)
		if _, parseErr := uuid.Parse(id); err != nil || parseErr != nil {
			id = uuid.New().String()
		}
		// Expiry slides with every request
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(VisitorCookie, id, int(ttl.Seconds()), "/", "", secure, true)
		c.Set(VisitorKey, id)
		c.Next()
	}
}

// Notifications attaches a collector for the visitor notifications raised by this request
func Notifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _ := storefront.WithCollector(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
