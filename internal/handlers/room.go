package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rickgao0917/quantrooms/internal/arena"
	"github.com/rickgao0917/quantrooms/internal/services"
	"github.com/rickgao0917/quantrooms/internal/ws"
)

type RoomHandler struct {
	roomService *services.RoomService
	authService *services.AuthService
	registry    *arena.Registry
	hub         *ws.Hub
}

func NewRoomHandler(roomService *services.RoomService, authService *services.AuthService, registry *arena.Registry, hub *ws.Hub) *RoomHandler {
	return &RoomHandler{roomService: roomService, authService: authService, registry: registry, hub: hub}
}

type CreateRoomRequest struct {
	Name       string `json:"name" binding:"max=100"`
	Difficulty string `json:"difficulty" example:"medium"`
}

type JoinRoomRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

// CreateRoom godoc
// @Summary      Create a room
// @Tags         rooms
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body CreateRoomRequest true "Room settings"
// @Success      201 {object} models.Room
// @Router       /api/v1/rooms [post]
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userID := c.GetUint("user_id")
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	room, err := h.roomService.CreateRoom(userID, req.Name, req.Difficulty)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	// The creator joins their own room.
	user, err := h.authService.GetUser(userID)
	if err == nil {
		room, _ = h.roomService.JoinRoom(room.Code, user)
	}
	c.JSON(http.StatusCreated, room)
}

// ListRooms godoc
// @Summary      List open rooms
// @Tags         rooms
// @Produce      json
// @Success      200 {array} models.Room
// @Router       /api/v1/rooms [get]
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.roomService.ListOpenRooms()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// GetRoom godoc
// @Summary      Get a room with its live session state
// @Tags         rooms
// @Produce      json
// @Param        id path int true "Room ID"
// @Success      200 {object} map[string]interface{}
// @Router       /api/v1/rooms/{id} [get]
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid room id"})
		return
	}
	room, err := h.roomService.GetRoom(uint(roomID))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	var sessionView *arena.SessionView
	if s, err := h.registry.Session(room.ID); err == nil {
		view := s.Snapshot()
		sessionView = &view
	}

	c.JSON(http.StatusOK, gin.H{
		"room":            room,
		"current_session": sessionView,
	})
}

// JoinRoom godoc
// @Summary      Join a room by code
// @Tags         rooms
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body JoinRoomRequest true "Room code"
// @Success      200 {object} models.Room
// @Router       /api/v1/rooms/join [post]
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	userID := c.GetUint("user_id")
	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	room, err := h.roomService.JoinRoom(req.Code, user)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.hub.BroadcastToRoom(room.ID, "member_joined", gin.H{
		"user_id":  user.ID,
		"username": user.Username,
		"rating":   user.Rating,
	})
	c.JSON(http.StatusOK, room)
}

// LeaveRoom godoc
// @Summary      Leave a room
// @Tags         rooms
// @Security     BearerAuth
// @Param        id path int true "Room ID"
// @Success      200 {object} MessageResponse
// @Router       /api/v1/rooms/{id}/leave [post]
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	userID := c.GetUint("user_id")
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid room id"})
		return
	}

	if err := h.roomService.LeaveRoom(uint(roomID), userID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.hub.BroadcastToRoom(uint(roomID), "member_left", gin.H{"user_id": userID})
	c.JSON(http.StatusOK, MessageResponse{Message: "left room"})
}

// CloseRoom godoc
// @Summary      Close a room (owner only); aborts a not-yet-started session
// @Tags         rooms
// @Security     BearerAuth
// @Param        id path int true "Room ID"
// @Success      200 {object} MessageResponse
// @Router       /api/v1/rooms/{id}/close [post]
func (h *RoomHandler) CloseRoom(c *gin.Context) {
	userID := c.GetUint("user_id")
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid room id"})
		return
	}

	if err := h.roomService.CloseRoom(uint(roomID), userID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	// A session that never left the ready check dies with the room. A
	// running one is left to reach its own end.
	if err := h.registry.Abort(uint(roomID)); err != nil &&
		!errors.Is(err, arena.ErrSessionNotFound) && !errors.Is(err, arena.ErrWrongState) {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	h.hub.BroadcastToRoom(uint(roomID), "room_closed", nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "room closed"})
}

// StartSession godoc
// @Summary      Start a session in a room (owner only)
// @Tags         rooms
// @Security     BearerAuth
// @Param        id path int true "Room ID"
// @Success      201 {object} arena.SessionView
// @Router       /api/v1/rooms/{id}/start [post]
func (h *RoomHandler) StartSession(c *gin.Context) {
	userID := c.GetUint("user_id")
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid room id"})
		return
	}

	room, err := h.roomService.GetRoom(uint(roomID))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	if room.OwnerID != userID {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "only the room owner can start a session"})
		return
	}

	roster, err := h.roomService.Roster(room.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	session, err := h.registry.StartSession(room.ID, room.Difficulty, roster)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, arena.ErrSessionExists) {
			status = http.StatusConflict
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, session.Snapshot())
}

// GetSession godoc
// @Summary      Live session state for a room
// @Tags         rooms
// @Produce      json
// @Param        id path int true "Room ID"
// @Success      200 {object} arena.SessionView
// @Router       /api/v1/rooms/{id}/session [get]
func (h *RoomHandler) GetSession(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid room id"})
		return
	}

	session, err := h.registry.Session(uint(roomID))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}
