package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Chain scope for balance and pool lookups
	ChainID int

	// Balance provider (Enso-compatible API)
	BalanceAPIURL string
	BalanceAPIKey string

	// Market data provider (CoinGecko-compatible API)
	MarketAPIURL string
	MarketAPIKey string

	// Recommendation engine
	EngineAPIKey  string
	EngineModel   string
	EngineTimeout time.Duration

	// Pipeline endpoints
	PipelineAPIKey string

	// Periodic jobs
	RiskRefreshInterval time.Duration
	StaleSweepInterval  time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "nuvolari"),
		DBPassword: getEnv("DB_PASSWORD", "nuvolari"),
		DBName:     getEnv("DB_NAME", "nuvolari"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		BalanceAPIURL: getEnv("BALANCE_API_URL", "https://api.enso.finance/api/v1"),
		BalanceAPIKey: getEnv("BALANCE_API_KEY", ""),

		MarketAPIURL: getEnv("MARKET_API_URL", "https://api.coingecko.com/api/v3"),
		MarketAPIKey: getEnv("MARKET_API_KEY", ""),

		EngineAPIKey: getEnv("ENGINE_API_KEY", ""),
		EngineModel:  getEnv("ENGINE_MODEL", "claude-sonnet-4-20250514"),

		PipelineAPIKey: getEnv("PIPELINE_API_KEY", ""),
	}

	config.ChainID = getEnvInt("CHAIN_ID", 146)
	config.EngineTimeout = getEnvDuration("ENGINE_TIMEOUT", 90*time.Second)
	config.RiskRefreshInterval = getEnvDuration("RISK_REFRESH_INTERVAL", 10*time.Minute)
	config.StaleSweepInterval = getEnvDuration("STALE_SWEEP_INTERVAL", 15*time.Minute)

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// getEnvDuration retrieves a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, value, defaultValue)
		return defaultValue
	}
	return d
}
