package router

import (
	"database/sql"

	"buensabor_backend/internal/handlers"
	"buensabor_backend/internal/middleware"
	"buensabor_backend/internal/repositories"
	"buensabor_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	transactor := repositories.NewTransactor(db)
	authRepo := repositories.NewAuthRepository(db)
	articleRepo := repositories.NewArticleRepository(db)
	movementRepo := repositories.NewStockMovementRepository(db)
	cartRepo := repositories.NewCartRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	addressRepo := repositories.NewAddressRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)

	// Initialize Services
	stockService := services.NewStockService(articleRepo, movementRepo, db, transactor)
	catalogService := services.NewCatalogService(articleRepo, db, transactor)
	cartService := services.NewCartService(cartRepo, articleRepo, customerRepo, db)
	orderService := services.NewOrderService(orderRepo, articleRepo, cartRepo, addressRepo, stockService, transactor)
	customerService := services.NewCustomerService(customerRepo, addressRepo, db)
	authService := services.NewAuthService(authRepo, customerRepo, transactor)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	stockHandler := handlers.NewStockHandler(stockService)

	apiV1 := engine.Group("/api/v1")

	SetupAuthRoutes(apiV1, authHandler)
	SetupPublicCatalogRoutes(apiV1, catalogHandler, customerHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupCatalogAdminRoutes(authenticated, catalogHandler)
		SetupCartRoutes(authenticated, cartHandler)
		SetupOrderRoutes(authenticated, orderHandler)
		SetupCustomerRoutes(authenticated, customerHandler)
		SetupStockRoutes(authenticated, stockHandler)
	}
}
