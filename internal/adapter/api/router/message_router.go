package router

import (
	"github.com/labstack/echo/v4"

	"teamline/internal/adapter/api/handler"
	"teamline/internal/adapter/api/middleware"
)

func SetupMessageRouter(e *echo.Echo, messageHandler *handler.MessageHandler, userHandler *handler.UserHandler, authMiddleware *middleware.AuthMiddleware) {
	messages := e.Group("/messages")
	messages.Use(authMiddleware.Authenticate)

	messages.POST("", messageHandler.SendMessage) // POST /messages - send to a recipient
	messages.GET("", messageHandler.GetMessages)  // GET /messages?userId= - conversation backlog

	users := e.Group("/users")
	users.Use(authMiddleware.Authenticate)
	users.GET("", userHandler.ListUsers)
}
