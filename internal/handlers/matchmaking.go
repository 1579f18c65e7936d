package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rickgao0917/quantrooms/internal/matchmaking"
	"github.com/rickgao0917/quantrooms/internal/services"
)

type MatchmakingHandler struct {
	queue       *matchmaking.Queue
	authService *services.AuthService
	roomService *services.RoomService
}

func NewMatchmakingHandler(queue *matchmaking.Queue, authService *services.AuthService, roomService *services.RoomService) *MatchmakingHandler {
	return &MatchmakingHandler{queue: queue, authService: authService, roomService: roomService}
}

// Enqueue godoc
// @Summary      Join the matchmaking queue at your current rating
// @Tags         matchmaking
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Router       /api/v1/matchmaking/queue [post]
func (h *MatchmakingHandler) Enqueue(c *gin.Context) {
	userID := c.GetUint("user_id")
	user, err := h.authService.GetUser(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	matched := h.queue.Enqueue(user.ID, user.Username, user.Rating)
	c.JSON(http.StatusOK, gin.H{
		"matched": matched,
		"bracket": matchmaking.BracketFor(user.Rating),
	})
}

// Dequeue godoc
// @Summary      Leave the matchmaking queue
// @Tags         matchmaking
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} MessageResponse
// @Router       /api/v1/matchmaking/queue [delete]
func (h *MatchmakingHandler) Dequeue(c *gin.Context) {
	userID := c.GetUint("user_id")
	h.queue.Dequeue(userID)
	c.JSON(http.StatusOK, MessageResponse{Message: "dequeued"})
}

// Status godoc
// @Summary      Matchmaking status; returns the formed room once matched
// @Tags         matchmaking
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Router       /api/v1/matchmaking/status [get]
func (h *MatchmakingHandler) Status(c *gin.Context) {
	userID := c.GetUint("user_id")
	if h.queue.Waiting(userID) {
		c.JSON(http.StatusOK, gin.H{"state": "waiting"})
		return
	}

	room, _ := h.roomService.ActiveRoomForUser(userID)
	if room == nil {
		c.JSON(http.StatusOK, gin.H{"state": "idle"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": "matched", "room": room})
}
