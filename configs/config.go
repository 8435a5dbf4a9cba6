package configs

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server   Server
	Database Database
	Risk     Risk
	Market   Market
	Fill     Fill
	Log      Log
}

// Server holds server configuration
type Server struct {
	Port string
	Env  string
}

// Database holds database configuration
type Database struct {
	URL string
}

// Risk holds the risk evaluator thresholds
type Risk struct {
	// MaxPositionPct caps a single order at this fraction of the balance
	MaxPositionPct float64
	// MaxDailyLossPct stops buying at this realized daily loss fraction
	MaxDailyLossPct float64
	// Volatility is the assumed stop-loss distance for advisory metadata
	Volatility float64
	// RiskPerTrade is the equity fraction the sizing helper risks
	RiskPerTrade float64
	// DailyLossAnalytics enables the ledger-backed daily loss provider;
	// off, the risk gate sees a zero figure
	DailyLossAnalytics bool
}

// Market holds market data configuration
type Market struct {
	BaseURL  string
	CacheTTL time.Duration
}

// Fill holds limit-order fill poller configuration
type Fill struct {
	// Cron is a five-field cron spec; empty disables the poller
	Cron string
}

// Log holds logging configuration
type Log struct {
	Level      string
	OutputFile string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: Server{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("GO_ENV", "development"),
		},
		Database: Database{
			URL: getEnv("DATABASE_URL", ""),
		},
		Risk: Risk{
			MaxPositionPct:     getEnvFloat("RISK_MAX_POSITION_PCT", 0.20),
			MaxDailyLossPct:    getEnvFloat("RISK_MAX_DAILY_LOSS_PCT", 0.05),
			Volatility:         getEnvFloat("RISK_VOLATILITY", 0.02),
			RiskPerTrade:       getEnvFloat("RISK_PER_TRADE", 0.01),
			DailyLossAnalytics: getEnvBool("DAILY_LOSS_ANALYTICS", false),
		},
		Market: Market{
			BaseURL:  getEnv("MARKET_BASE_URL", "https://api.binance.com"),
			CacheTTL: getEnvDuration("MARKET_CACHE_TTL", 10*time.Second),
		},
		Fill: Fill{
			Cron: getEnv("FILL_POLL_CRON", ""),
		},
		Log: Log{
			Level:      getEnv("LOG_LEVEL", "info"),
			OutputFile: getEnv("LOG_FILE", ""),
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
