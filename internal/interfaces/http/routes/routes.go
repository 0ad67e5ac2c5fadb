// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/interfaces/http/handlers"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
	"github.com/your-org/storefront/internal/pkg/pdf"
	"github.com/your-org/storefront/internal/storefront"
)

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, reg *storefront.Registry) {
	authHandler := handlers.NewAuthHandler(reg)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.POST("/change-password", authHandler.ChangePassword)
		auth.GET("/session", authHandler.GetSession)
	}

	profileHandler := handlers.NewUserProfileHandler(reg)

	profile := rg.Group("/profile")
	{
		profile.GET("", profileHandler.GetProfile)
		profile.PUT("", profileHandler.UpdateProfile)
	}
}

// SetupProductRoutes sets up catalog routes
func SetupProductRoutes(rg *gin.RouterGroup, reg *storefront.Registry, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(reg, cfg)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
	}
}

// SetupCartRoutes sets up cart and checkout routes
func SetupCartRoutes(rg *gin.RouterGroup, reg *storefront.Registry, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(reg, cfg)

	cart := rg.Group("/cart")
	{
		cart.GET("", cartHandler.GetCart)
		cart.DELETE("", cartHandler.ClearCart)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:productId", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:productId", cartHandler.RemoveFromCart)
		cart.POST("/open", cartHandler.OpenCart)
		cart.POST("/close", cartHandler.CloseCart)
		cart.GET("/check", cartHandler.ValidateCart)
	}

	checkoutHandler := handlers.NewCheckoutHandler(reg)
	rg.POST("/checkout", checkoutHandler.PlaceOrder)
}

// SetupOrderRoutes sets up order and return routes
func SetupOrderRoutes(rg *gin.RouterGroup, reg *storefront.Registry, pdfService *pdf.Service) {
	orderHandler := handlers.NewOrderHandler(reg)
	receiptHandler := handlers.NewReceiptHandler(reg, pdfService)

	orders := rg.Group("/orders")
	{
		orders.GET("", orderHandler.GetOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/receipt", receiptHandler.GetReceipt)
	}

	returnHandler := handlers.NewReturnHandler(reg)

	returns := rg.Group("/returns")
	{
		returns.GET("", returnHandler.GetReturns)
		returns.GET("/:id", returnHandler.GetReturn)
		returns.POST("", returnHandler.CreateReturn)
	}
}

// SetupAdminRoutes sets up admin related routes
func SetupAdminRoutes(rg *gin.RouterGroup, reg *storefront.Registry, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(reg, cfg)
	orderHandler := handlers.NewOrderHandler(reg)
	returnHandler := handlers.NewReturnHandler(reg)
	inventoryHandler := handlers.NewInventoryHandler(reg)
	userAdminHandler := handlers.NewUserAdminHandler(reg)

	admin := rg.Group("/admin")
	admin.Use(middleware.AdminMiddleware(reg)) // Require admin privileges
	{
		products := admin.Group("/products")
		{
			products.POST("", productHandler.AdminCreateProduct)
			products.PUT("/:id", productHandler.AdminUpdateProduct)
			products.DELETE("/:id", productHandler.AdminDeleteProduct)
		}

		admin.PUT("/orders/:id/status", orderHandler.AdminUpdateOrderStatus)
		admin.PUT("/returns/:id/status", returnHandler.AdminUpdateReturnStatus)

		inventory := admin.Group("/inventory")
		{
			inventory.GET("", inventoryHandler.GetInventory)
			inventory.GET("/:productId", inventoryHandler.GetStockLevel)
			inventory.PUT("/:productId", inventoryHandler.UpdateStockLevel)
		}

		users := admin.Group("/users")
		{
			users.GET("/:id", userAdminHandler.GetUser)
			users.PUT("/:id/status", userAdminHandler.UpdateUserStatus)
			users.DELETE("/:id", userAdminHandler.DeleteUser)
		}
	}
}

// SetupRoutes registers every /api/v1 route
func SetupRoutes(rg *gin.RouterGroup, reg *storefront.Registry, pdfService *pdf.Service, cfg *config.Config) {
	SetupAuthRoutes(rg, reg)
	SetupProductRoutes(rg, reg, cfg)
	SetupCartRoutes(rg, reg, cfg)
	SetupOrderRoutes(rg, reg, pdfService)
	SetupAdminRoutes(rg, reg, cfg)
}
