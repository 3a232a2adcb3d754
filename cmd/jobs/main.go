package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nuvolari/internal/config"
	"nuvolari/internal/database"
	"nuvolari/internal/engine"
	"nuvolari/internal/jobs"
	"nuvolari/internal/logger"
	"nuvolari/internal/provider"
	"nuvolari/internal/services"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	db := dbManager.DB()
	httpClient := &http.Client{Timeout: 30 * time.Second}
	marketClient := provider.NewCoinGeckoClient(appConfig.MarketAPIURL, appConfig.MarketAPIKey, httpClient)
	balanceClient := provider.NewEnsoClient(appConfig.BalanceAPIURL, appConfig.BalanceAPIKey, httpClient)
	recommendationEngine := engine.NewAnthropicEngine(appConfig.EngineAPIKey, appConfig.EngineModel)

	riskService := services.NewRiskService(db)
	portfolioService := services.NewPortfolioService(db, balanceClient, appConfig.ChainID)
	insightService := services.NewInsightService(db, portfolioService, riskService,
		recommendationEngine, appConfig.ChainID, appConfig.EngineTimeout)

	refresher := jobs.NewRiskRefresher(db, marketClient)
	sweeper := jobs.NewStaleSweeper(insightService, appConfig.StaleSweepInterval)

	scheduler := jobs.NewScheduler(
		refresher.Job(appConfig.RiskRefreshInterval),
		sweeper.Job(appConfig.StaleSweepInterval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting Nuvolari job runner")
	scheduler.Start(ctx)
	log.Info("Job runner stopped")
	return nil
}
