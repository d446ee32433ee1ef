package router

import (
	"github.com/labstack/echo/v4"

	"teamline/internal/adapter/api/handler"
	"teamline/internal/adapter/api/middleware"
)

func SetupFileRouter(e *echo.Echo, fileHandler *handler.FileHandler, authMiddleware *middleware.AuthMiddleware) {
	e.POST("/upload", fileHandler.UploadFile, authMiddleware.Authenticate)
}
