package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"contesthub/internal/service"
)

// LeaderboardHandler serves the winner ranking.
type LeaderboardHandler struct {
	svc service.LeaderboardService
	log *logrus.Entry
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(svc service.LeaderboardService, log *logrus.Entry) *LeaderboardHandler {
	return &LeaderboardHandler{svc: svc, log: log}
}

// Leaderboard godoc
// @Summary Users ranked by contests won
// @Tags leaderboard
// @Produce json
// @Success 200 {array} model.LeaderboardEntry
// @Router /leaderboard [get]
func (h *LeaderboardHandler) Leaderboard(c echo.Context) error {
	board, err := h.svc.Leaderboard(c.Request().Context())
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, board)
}
