package router

import (
	"github.com/labstack/echo/v4"

	"teamline/internal/adapter/api/handler"
	"teamline/internal/adapter/api/middleware"
)

func Setup(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	messageHandler *handler.MessageHandler,
	userHandler *handler.UserHandler,
	fileHandler *handler.FileHandler,
	realtimeHandler *handler.RealtimeHandler,
) {
	SetupMessageRouter(e, messageHandler, userHandler, authMiddleware)
	SetupFileRouter(e, fileHandler, authMiddleware)
	SetupRealtimeRouter(e, realtimeHandler, authMiddleware)
	SetupHealthRouter(e)
}
