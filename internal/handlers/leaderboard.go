package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rickgao0917/quantrooms/internal/services"
)

type LeaderboardHandler struct {
	matchService *services.MatchService
}

func NewLeaderboardHandler(matchService *services.MatchService) *LeaderboardHandler {
	return &LeaderboardHandler{matchService: matchService}
}

// Leaderboard godoc
// @Summary      Global rating leaderboard
// @Tags         leaderboard
// @Produce      json
// @Param        limit query int false "Max entries (default 20)"
// @Success      200 {array} models.User
// @Router       /api/v1/leaderboard [get]
func (h *LeaderboardHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	users, err := h.matchService.Leaderboard(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

// MyHistory godoc
// @Summary      Finished matches of the current user
// @Tags         leaderboard
// @Security     BearerAuth
// @Produce      json
// @Param        limit query int false "Max entries (default 20)"
// @Success      200 {array} models.Match
// @Router       /api/v1/matches/history [get]
func (h *LeaderboardHandler) MyHistory(c *gin.Context) {
	userID := c.GetUint("user_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	matches, err := h.matchService.HistoryForUser(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, matches)
}
