package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"storefront-service/internal/gate"
	"storefront-service/internal/handler"
	"storefront-service/internal/middleware"
	"storefront-service/internal/session"
	"storefront-service/internal/storage"
	"storefront-service/pkg/config"
	"storefront-service/pkg/database"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting storefront service...", cfg.LogConfig()...)

	// Initialize database; the handle is constructed here and passed down,
	// teardown belongs to this function.
	db, err := database.Init(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()
	log.Info("Database connection established")

	// Initialize Prometheus metrics
	prometheus.InitMetrics()
	log.Info("Prometheus metrics initialized")

	// Core components
	sessions := session.NewManager(cfg)
	accessGate := gate.New(sessions, gate.NewDBResolver(db))
	media := storage.New(cfg)

	// Handlers
	authHandler := handler.NewAuthHandler(db, sessions)
	storeHandler := handler.NewStoreHandler(db, sessions, accessGate)
	memberHandler := handler.NewMemberHandler(db, accessGate)
	productHandler := handler.NewProductHandler(db, accessGate)
	storefrontHandler := handler.NewStorefrontHandler(db)
	messageHandler := handler.NewMessageHandler(db, accessGate)
	activityHandler := handler.NewActivityHandler(db, accessGate)
	mediaHandler := handler.NewMediaHandler(db, accessGate, media)

	// Initialize Echo framework
	e := echo.New()
	e.Validator = handler.NewValidator()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes. Clients fetch the anti-forgery token first;
	// every auth mutation then passes the double-submit check.
	auth := e.Group("/auth")
	auth.GET("/csrf", authHandler.CSRF)
	auth.POST("/register", authHandler.Register, middleware.CSRFMiddleware)
	auth.POST("/login", authHandler.Login, middleware.CSRFMiddleware)
	auth.POST("/logout", authHandler.Logout, middleware.CSRFMiddleware)

	// Public storefront routes
	store := e.Group("/store")
	store.GET("/:slug", storefrontHandler.GetStorefront)
	store.GET("/:slug/products/:id", storefrontHandler.GetProduct)
	store.GET("/:slug/media/*", mediaHandler.Serve)
	store.POST("/:slug/track", storefrontHandler.TrackVisit)
	store.POST("/:slug/messages", storefrontHandler.SendMessage)

	// Dashboard API - session-scoped; mutations additionally pass the CSRF
	// double-submit check before any session semantics apply.
	api := e.Group("/api", middleware.CSRFMiddleware)
	api.GET("/me", authHandler.Me)

	api.POST("/stores", storeHandler.CreateStore)
	api.GET("/stores", storeHandler.ListMyStores)
	api.GET("/stores/:slug", storeHandler.GetStore)
	api.PUT("/stores/:slug/settings", storeHandler.UpdateSettings)

	api.GET("/stores/:slug/members", memberHandler.ListMembers)
	api.PUT("/stores/:slug/members", memberHandler.UpsertMember)

	api.POST("/stores/:slug/products", productHandler.Create)
	api.GET("/stores/:slug/products", productHandler.List)
	api.GET("/stores/:slug/products/:id", productHandler.Get)
	api.PUT("/stores/:slug/products/:id", productHandler.Update)
	api.DELETE("/stores/:slug/products/:id", productHandler.Delete)

	api.GET("/stores/:slug/messages", messageHandler.List)
	api.GET("/stores/:slug/activity", activityHandler.List)

	api.POST("/stores/:slug/media", mediaHandler.Upload)
	api.GET("/stores/:slug/media", mediaHandler.List)

	// Start server
	log.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
