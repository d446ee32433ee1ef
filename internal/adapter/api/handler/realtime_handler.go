package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"teamline/internal/adapter/api/middleware"
	"teamline/internal/infrastructure/realtime"
	"teamline/pkg/errors"
	"teamline/pkg/logger"
	"teamline/pkg/response"
)

type RealtimeHandler struct {
	hub            *realtime.Hub
	authorizer     *realtime.Authorizer
	authMiddleware *middleware.AuthMiddleware
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // restrict in production
	},
}

func NewRealtimeHandler(hub *realtime.Hub, authorizer *realtime.Authorizer, authMiddleware *middleware.AuthMiddleware) *RealtimeHandler {
	return &RealtimeHandler{
		hub:            hub,
		authorizer:     authorizer,
		authMiddleware: authMiddleware,
	}
}

// AuthorizeChannel handles POST /pusher/auth. The body is transport-native
// form encoding: socket_id and channel_name. A signed grant comes back only
// when the caller is one of the two participants encoded in the channel.
func (h *RealtimeHandler) AuthorizeChannel(c echo.Context) error {
	userID, ok := c.Get("uid").(string)
	if !ok || userID == "" {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	socketID := c.FormValue("socket_id")
	channel := c.FormValue("channel_name")

	grant, err := h.authorizer.Authorize(socketID, channel, userID)
	if err != nil {
		logger.Warn("realtime auth: denied %s on %s: %v", userID, channel, err)
		return response.Error(c, err)
	}

	return c.JSON(http.StatusOK, grant)
}

// HandleWebSocket handles GET /ws?token=... — browsers cannot set headers on
// websocket upgrades, so the session token rides a query parameter.
func (h *RealtimeHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	userID, err := h.authMiddleware.UserIDFromToken(token)
	if err != nil {
		return response.Error(c, errors.Unauthorized("Authentication required", err))
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &realtime.Client{
		SocketID: uuid.New().String(),
		UserID:   userID,
		Conn:     conn,
		Send:     make(chan []byte, 256),
	}

	h.hub.Register(client)

	// The client needs its socket id to request subscription grants.
	if frame, err := json.Marshal(map[string]interface{}{
		"event": "connection-established",
		"data":  map[string]string{"socket_id": client.SocketID},
	}); err == nil {
		client.Enqueue(frame)
	}

	go client.ReadPump(h.hub)
	go client.WritePump()

	return nil
}
