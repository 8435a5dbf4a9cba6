package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	custommiddleware "papertrade/internal/middleware"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	AuthHandler        *AuthHandler
	TradeHandler       *TradeHandler
	MarketHandler      *MarketHandler
	LeaderboardHandler *LeaderboardHandler
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// High-frequency polling endpoints just add noise.
			path := c.Request().URL.Path
			return path == "/health" || path == "/api/market/prices"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return SuccessResponse(c, map[string]interface{}{
			"status":    "healthy",
			"service":   "papertrade-api",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	api := e.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	{
		auth.POST("/login", config.AuthHandler.Login)
		auth.POST("/logout", config.AuthHandler.Logout)
		auth.POST("/register", config.AuthHandler.Register)
		auth.DELETE("/me", config.AuthHandler.DeleteAccount, custommiddleware.AuthMiddleware)
	}

	// Trading routes (protected)
	trades := api.Group("/trades", custommiddleware.AuthMiddleware)
	{
		trades.POST("/paper", config.TradeHandler.SubmitOrder)
		trades.GET("/history", config.TradeHandler.History)
		trades.GET("/positions", config.TradeHandler.Positions)
		trades.POST("/deposit", config.TradeHandler.Deposit)
		trades.POST("/reset", config.TradeHandler.Reset)
		trades.POST("/:id/cancel", config.TradeHandler.Cancel)
	}

	// Market data (public)
	api.GET("/market/prices", config.MarketHandler.Prices)

	// Leaderboard (public)
	api.GET("/leaderboard", config.LeaderboardHandler.TopTraders)
}
