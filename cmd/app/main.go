package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"papertrade/configs"
	"papertrade/internal/database"
	delivery "papertrade/internal/delivery/http"
	"papertrade/internal/infra"
	"papertrade/internal/repository"
	"papertrade/internal/risk"
	"papertrade/internal/service"
	"papertrade/internal/usecase"
	"papertrade/pkg/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: .env file not found, using environment variables")
	}

	cfg := configs.Load()

	logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.OutputFile,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
	})

	ctx := context.Background()

	// Database
	db, err := infra.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		logger.Errorf("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		logger.Errorf("Failed to run migrations: %v", err)
		os.Exit(1)
	}

	// Repositories
	accountRepo := repository.NewAccountRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	txManager := repository.NewTxManager(db)

	// Daily-loss collaborator for the risk gate. Off by default: the gate
	// then sees a zero figure and only the position-size rule bites.
	var dailyLoss usecase.DailyLossProvider = usecase.ZeroDailyLoss{}
	if cfg.Risk.DailyLossAnalytics {
		dailyLoss = service.NewAnalyticsService(tradeRepo)
		logger.Infof("[OK] Daily-loss analytics enabled")
	}

	// Order processor
	orderService := usecase.NewOrderService(
		txManager,
		accountRepo,
		tradeRepo,
		dailyLoss,
		risk.Limits{
			MaxPositionPct:  cfg.Risk.MaxPositionPct,
			MaxDailyLossPct: cfg.Risk.MaxDailyLossPct,
		},
		cfg.Risk.Volatility,
	)

	// Collaborator services
	priceService := service.NewMarketPriceService(cfg.Market.BaseURL, cfg.Market.CacheTTL)
	leaderboardService := service.NewLeaderboardService(accountRepo)
	fillService := service.NewFillService(tradeRepo, priceService, orderService)

	// Limit-order fill poller
	scheduler := infra.NewScheduler(fillService, cfg.Fill.Cron)
	if err := scheduler.Start(); err != nil {
		logger.Errorf("Failed to start fill poller: %v", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	// HTTP delivery
	e := echo.New()
	e.HideBanner = true
	delivery.SetupRoutes(e, &delivery.RouterConfig{
		AuthHandler:        delivery.NewAuthHandler(accountRepo),
		TradeHandler:       delivery.NewTradeHandler(orderService),
		MarketHandler:      delivery.NewMarketHandler(priceService),
		LeaderboardHandler: delivery.NewLeaderboardHandler(leaderboardService),
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Infof("Papertrade starting on %s (env: %s)", addr, cfg.Server.Env)

	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Failed to start server: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	logger.Infof("[OK] Server exited gracefully")
}
