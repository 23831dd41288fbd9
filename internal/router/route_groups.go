package router

import (
	"buensabor_backend/internal/handlers"
	"buensabor_backend/internal/middleware"
	"buensabor_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the authentication routes.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh-token", authHandler.Refresh)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(middleware.AuthMiddleware())
		{
			authRequiredRoutes.GET("/me", authHandler.Profile)
			authRequiredRoutes.POST("/staff",
				middleware.RoleAuthMiddleware(services.RoleAdmin),
				authHandler.CreateStaffUser)
		}
	}
}

// SetupPublicCatalogRoutes sets up the routes anyone can browse without a token.
func SetupPublicCatalogRoutes(apiGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler, customerHandler *handlers.CustomerHandler) {
	apiGroup.GET("/articles", catalogHandler.GetArticles)
	apiGroup.GET("/articles/:id", catalogHandler.GetArticleByID)
	apiGroup.GET("/localities", customerHandler.GetLocalities)
}

// SetupCatalogAdminRoutes sets up the catalog management routes.
func SetupCatalogAdminRoutes(authenticatedGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	catalogRoutes := authenticatedGroup.Group("/articles")
	catalogRoutes.Use(middleware.RoleAuthMiddleware(services.RoleAdmin, services.RoleCook))
	{
		catalogRoutes.POST("/ingredients", catalogHandler.CreateIngredient)
		catalogRoutes.POST("/manufactured", catalogHandler.CreateManufactured)
		catalogRoutes.PUT("/ingredients/:id", catalogHandler.UpdateIngredient)
		catalogRoutes.PUT("/manufactured/:id", catalogHandler.UpdateManufactured)
		catalogRoutes.PATCH("/:id/active", catalogHandler.SetArticleActive)
		catalogRoutes.DELETE("/:id", catalogHandler.DeleteArticle)
	}
}

// SetupCartRoutes sets up the cart routes.
func SetupCartRoutes(authenticatedGroup *gin.RouterGroup, cartHandler *handlers.CartHandler) {
	cartRoutes := authenticatedGroup.Group("/customers/:customerId/cart")
	{
		cartRoutes.GET("", cartHandler.GetCart)
		cartRoutes.POST("/lines", cartHandler.AddArticle)
		cartRoutes.PATCH("/lines/:lineId", cartHandler.UpdateLine)
		cartRoutes.DELETE("/lines/:lineId", cartHandler.RemoveLine)
		cartRoutes.DELETE("", cartHandler.ClearCart)
	}
}

// SetupOrderRoutes sets up the order routes.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := authenticatedGroup.Group("/orders")
	{
		orderRoutes.POST("", orderHandler.CreateOrder)
		orderRoutes.GET("", orderHandler.GetOrders)
		orderRoutes.GET("/:id", orderHandler.GetOrderByID)
		orderRoutes.POST("/:id/cancel", orderHandler.CancelOrder)
		orderRoutes.PATCH("/:id/status",
			middleware.RoleAuthMiddleware(services.RoleAdmin, services.RoleCashier, services.RoleCook, services.RoleDelivery),
			orderHandler.UpdateOrderStatus)
	}
}

// SetupCustomerRoutes sets up the customer routes.
func SetupCustomerRoutes(authenticatedGroup *gin.RouterGroup, customerHandler *handlers.CustomerHandler) {
	customerRoutes := authenticatedGroup.Group("/customers")
	{
		customerRoutes.GET("/:customerId/addresses", customerHandler.GetCustomerAddresses)

		staffOnly := customerRoutes.Group("")
		staffOnly.Use(middleware.RoleAuthMiddleware(services.RoleAdmin, services.RoleCashier))
		{
			staffOnly.POST("", customerHandler.CreateCustomer)
			staffOnly.GET("", customerHandler.GetCustomers)
			staffOnly.GET("/:customerId", customerHandler.GetCustomerByID)
			staffOnly.PUT("/:customerId", customerHandler.UpdateCustomer)
			staffOnly.DELETE("/:customerId", customerHandler.DeleteCustomer)
		}
	}
}

// SetupStockRoutes sets up the stock ledger routes.
func SetupStockRoutes(authenticatedGroup *gin.RouterGroup, stockHandler *handlers.StockHandler) {
	stockRoutes := authenticatedGroup.Group("/stock")
	stockRoutes.Use(middleware.RoleAuthMiddleware(services.RoleAdmin, services.RoleCook))
	{
		stockRoutes.GET("/ingredients/:id", stockHandler.GetIngredientStock)
		stockRoutes.POST("/replenishments", stockHandler.ReplenishStock)
		stockRoutes.GET("/movements", stockHandler.GetStockMovements)
	}
}
