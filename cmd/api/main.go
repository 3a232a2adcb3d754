package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"nuvolari/internal/config"
	"nuvolari/internal/database"
	"nuvolari/internal/engine"
	"nuvolari/internal/handlers"
	"nuvolari/internal/jobs"
	"nuvolari/internal/logger"
	"nuvolari/internal/middleware"
	"nuvolari/internal/provider"
	"nuvolari/internal/services"
	"nuvolari/internal/validator"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize providers and the recommendation engine
	httpClient := &http.Client{Timeout: 30 * time.Second}
	balanceClient := provider.NewEnsoClient(appConfig.BalanceAPIURL, appConfig.BalanceAPIKey, httpClient)
	marketClient := provider.NewCoinGeckoClient(appConfig.MarketAPIURL, appConfig.MarketAPIKey, httpClient)
	recommendationEngine := engine.NewAnthropicEngine(appConfig.EngineAPIKey, appConfig.EngineModel)

	// Initialize services
	db := dbManager.DB()
	riskService := services.NewRiskService(db)
	portfolioService := services.NewPortfolioService(db, balanceClient, appConfig.ChainID)
	insightService := services.NewInsightService(db, portfolioService, riskService,
		recommendationEngine, appConfig.ChainID, appConfig.EngineTimeout)

	// Initialize handlers
	poolHandler := handlers.NewPoolHandler(riskService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
	insightHandler := handlers.NewInsightHandler(insightService)
	pipelineHandler := handlers.NewPipelineHandler(
		jobs.NewRiskRefresher(db, marketClient), insightService, appConfig.StaleSweepInterval)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Pool routes
	pools := v1.Group("/pools")
	pools.GET("/risk", poolHandler.ListPoolsByRisk)
	pools.GET("/:id/risk", poolHandler.GetPoolRisk)

	// Portfolio routes
	v1.GET("/portfolio/:address", portfolioHandler.GetPortfolio)

	// Insight routes
	insights := v1.Group("/insights")
	insights.POST("/generate", insightHandler.GenerateInsights)
	insights.GET("/pending", insightHandler.GetPendingInsights)
	insights.POST("/:id/execute", insightHandler.ExecuteInsight)

	// Pipeline routes
	pipeline := router.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(appConfig.PipelineAPIKey))
	pipeline.POST("/jobs/risk-refresh", pipelineHandler.RunRiskRefresh)
	pipeline.POST("/jobs/stale-sweep", pipelineHandler.RunStaleSweep)

	log.Infof("Starting Nuvolari backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
