package main

import (
	"log"
	"time"

	"athani_mart/internal/cart"
	"athani_mart/internal/config"
	"athani_mart/internal/database"
	"athani_mart/internal/handlers"
	"athani_mart/internal/ordersync"
	"athani_mart/internal/redis"
	"athani_mart/internal/repository"
	"athani_mart/internal/services"
	"athani_mart/pkg/orderapi"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis: ", err)
	}
	defer redisClient.Close()

	// Initialize order API gateway
	gateway := orderapi.NewClient(cfg.OrderAPIURL, cfg.OrderAPIToken)

	// Initialize repositories
	agentRepo := repository.NewAgentRepository(db)
	storeRepo := repository.NewStoreRepository(db)

	// Cart persistence binding
	var cartStore cart.Store = redisClient
	if cfg.CartStore == "postgres" {
		cartStore = repository.NewCartRepository(db)
	}
	cartManager := cart.NewManager(cartStore)

	// Initialize services
	agentService := services.NewAgentService(agentRepo)
	storeService := services.NewStoreService(storeRepo)
	notificationService := services.NewNotificationService(50)

	// Order sync controllers, one per viewer
	registry := ordersync.NewRegistry(gateway, redisClient, redisClient, notificationService)
	defer registry.Close()

	// Initialize handlers
	snapshotTTL := time.Duration(cfg.OrderCacheTTL) * time.Second
	cartHandler := handlers.NewCartHandler(cartManager, cfg.CartSessionKey)
	orderHandler := handlers.NewOrderHandler(registry, gateway, redisClient, agentService, snapshotTTL)
	apiHandler := handlers.NewAPIHandler(agentService, storeService, notificationService)

	// Setup routes
	router := gin.Default()

	api := router.Group("/api")
	{
		// Cart
		api.POST("/cart/session", cartHandler.StartSession)
		api.DELETE("/cart/session", cartHandler.EndSession)
		api.GET("/cart", cartHandler.GetCart)
		api.POST("/cart/items", cartHandler.AddItem)
		api.PUT("/cart/items/:id", cartHandler.UpdateQuantity)
		api.DELETE("/cart/items/:id", cartHandler.RemoveItem)
		api.DELETE("/cart", cartHandler.ClearCart)

		// Orders
		api.GET("/orders", orderHandler.ListOrders)
		api.GET("/orders/:id", orderHandler.GetOrder)
		api.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)

		// Delivery agents
		api.POST("/agents", apiHandler.RegisterAgent)
		api.GET("/agents", apiHandler.GetAgents)
		api.PUT("/agents/:id/availability", apiHandler.SetAgentAvailability)
		api.POST("/agents/:id/verify", apiHandler.VerifyAgent)

		// Store profiles
		api.POST("/stores", apiHandler.CreateStore)
		api.GET("/stores", apiHandler.GetStores)
		api.GET("/stores/:seller_id", apiHandler.GetStore)
		api.PUT("/stores/:seller_id/open", apiHandler.SetStoreOpen)

		// Notifications
		api.GET("/notifications", apiHandler.GetNotifications)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
