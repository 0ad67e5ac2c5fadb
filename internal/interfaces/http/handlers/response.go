// internal/interfaces/http/handlers/response.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/api"
	"github.com/your-org/storefront/internal/domain/session"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
	"github.com/your-org/storefront/internal/storefront"
)

// base is shared by all handlers that act on the visitor's storefront
type base struct {
	registry *storefront.Registry
}

// with runs fn against the calling visitor's storefront
func (b base) with(c *gin.Context, fn func(*storefront.Storefront) error) error {
	return b.registry.With(c.Request.Context(), c.GetString(middleware.VisitorKey), fn)
}

// respondError maps err to a status code and writes the error body
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	status, message := classify(err)

	// Prefer the notification already phrased for the visitor
	if col, ok := storefront.CollectorFrom(c.Request.Context()); ok {
		if last, ok := col.Last(); ok && last.Level == storefront.LevelError && status < 500 {
			message = last.Message
		}
	}

	c.JSON(status, gin.H{"error": message})
}

func classify(err error) (int, string) {
	var apiErr *api.Error
	switch {
	case errors.As(err, &apiErr):
		switch apiErr.Kind {
		case api.KindValidation:
			return http.StatusBadRequest, apiErr.Message
		case api.KindNetwork:
			return http.StatusBadGateway, apiErr.Message
		}
		if apiErr.Status >= 400 {
			return apiErr.Status, apiErr.Message
		}
		return http.StatusBadGateway, apiErr.Message
	case errors.Is(err, storefront.ErrNotAuthenticated):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, storefront.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, storefront.ErrEmptyCart):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, storefront.ErrUnavailable):
		return http.StatusConflict, err.Error()
	case errors.Is(err, session.ErrMissingIdentity):
		return http.StatusBadGateway, "The server response did not identify the user"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// message returns the last success notification of the request, or fallback
func message(c *gin.Context, fallback string) string {
	col, ok := storefront.CollectorFrom(c.Request.Context())
	if !ok {
		return fallback
	}
	for _, n := range col.All() {
		if n.Level == storefront.LevelSuccess {
			fallback = n.Message
		}
	}
	return fallback
}

// warnings returns the warning notifications raised by the request
func warnings(c *gin.Context) []string {
	col, ok := storefront.CollectorFrom(c.Request.Context())
	if !ok {
		return nil
	}
	var out []string
	for _, n := range col.All() {
		if n.Level == storefront.LevelWarning {
			out = append(out, n.Message)
		}
	}
	return out
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}

// queryInt parses a non-negative integer query parameter; missing or invalid
// values read as zero
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
