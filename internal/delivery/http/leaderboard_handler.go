package http

import (
	"github.com/labstack/echo/v4"

	"papertrade/internal/service"
)

// LeaderboardHandler serves the top-traders ranking
type LeaderboardHandler struct {
	leaderboard *service.LeaderboardService
}

// NewLeaderboardHandler creates a new LeaderboardHandler
func NewLeaderboardHandler(leaderboard *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// TopTraders returns up to ten accounts ranked by profit
// GET /api/leaderboard
func (h *LeaderboardHandler) TopTraders(c echo.Context) error {
	entries, err := h.leaderboard.TopTraders(c.Request().Context())
	if err != nil {
		return InternalServerErrorResponse(c, "Server error fetching leaderboard", err)
	}
	if entries == nil {
		entries = []service.LeaderboardEntry{}
	}
	return SuccessResponse(c, entries)
}
