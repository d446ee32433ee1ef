package router

import (
	"github.com/labstack/echo/v4"

	"teamline/internal/adapter/api/handler"
	"teamline/internal/adapter/api/middleware"
)

func SetupRealtimeRouter(e *echo.Echo, realtimeHandler *handler.RealtimeHandler, authMiddleware *middleware.AuthMiddleware) {
	e.POST("/pusher/auth", realtimeHandler.AuthorizeChannel, authMiddleware.Authenticate)

	// Auth is handled inside the handler: the token arrives as a query
	// parameter on the upgrade request.
	e.GET("/ws", realtimeHandler.HandleWebSocket)
}
