package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/rickgao0917/quantrooms/internal/arena"
	"github.com/rickgao0917/quantrooms/internal/services"
	"github.com/rickgao0917/quantrooms/internal/ws"
)

type WSHandler struct {
	hub         *ws.Hub
	registry    *arena.Registry
	authService *services.AuthService
	roomService *services.RoomService
}

func NewWSHandler(hub *ws.Hub, registry *arena.Registry, authService *services.AuthService, roomService *services.RoomService) *WSHandler {
	return &WSHandler{hub: hub, registry: registry, authService: authService, roomService: roomService}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type clientFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type readyFrame struct {
	Verified bool `json:"verified"`
}

type voteFrame struct {
	ProblemID uint `json:"problem_id"`
}

type solveFrame struct {
	Solved bool `json:"solved"`
}

// HandleRoomWebSocket godoc
// @Summary      Room websocket: inbound session events, outbound broadcasts
// @Description  Authenticate with ?token=JWT. Inbound frames: ready, vote, solve_attempt.
// @Tags         websocket
// @Param        id path int true "Room ID"
// @Param        token query string true "JWT"
// @Router       /ws/room/{id} [get]
func (h *WSHandler) HandleRoomWebSocket(c *gin.Context) {
	roomID64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid room id"})
		return
	}
	roomID := uint(roomID64)

	userID, err := h.authService.ValidateToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
		return
	}
	if !h.roomService.IsMember(roomID, userID) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not a member of this room"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade error")
		return
	}

	client := h.hub.AddConnection(roomID, conn)
	defer h.hub.RemoveConnection(roomID, client)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			writeWSError(client, "validation_error", "malformed frame")
			continue
		}
		if err := h.dispatch(roomID, userID, frame); err != nil {
			writeWSError(client, errorKind(err), err.Error())
		}
	}
}

// dispatch routes one inbound frame into the session state machine. Every
// rejection stays local to the sending connection.
func (h *WSHandler) dispatch(roomID, userID uint, frame clientFrame) error {
	switch frame.Type {
	case "ready":
		var f readyFrame
		if err := json.Unmarshal(frame.Data, &f); err != nil {
			return errors.New("malformed ready frame")
		}
		return h.registry.SetReady(roomID, userID, f.Verified)

	case "vote":
		var f voteFrame
		if err := json.Unmarshal(frame.Data, &f); err != nil || f.ProblemID == 0 {
			return errors.New("malformed vote frame")
		}
		return h.registry.CastVote(roomID, userID, f.ProblemID)

	case "solve_attempt":
		var f solveFrame
		if err := json.Unmarshal(frame.Data, &f); err != nil {
			return errors.New("malformed solve_attempt frame")
		}
		return h.registry.SubmitSolve(roomID, userID, f.Solved)

	default:
		return errors.New("unknown frame type")
	}
}

func writeWSError(client *ws.Client, kind, msg string) {
	_ = client.Send("error", gin.H{"kind": kind, "error": msg})
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, arena.ErrWrongState):
		return "state_conflict"
	case errors.Is(err, arena.ErrSessionNotFound):
		return "no_active_session"
	case arena.IsValidation(err):
		return "validation_error"
	default:
		return "error"
	}
}
