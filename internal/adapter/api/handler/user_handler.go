package handler

import (
	"github.com/labstack/echo/v4"

	"teamline/internal/usecase"
	"teamline/pkg/response"
)

type UserHandler struct {
	messageUseCase *usecase.MessageUseCase
}

func NewUserHandler(messageUseCase *usecase.MessageUseCase) *UserHandler {
	return &UserHandler{messageUseCase: messageUseCase}
}

// ListUsers handles GET /users: the contact list for the sidebar, everyone
// except the caller.
func (h *UserHandler) ListUsers(c echo.Context) error {
	userID := c.Get("uid").(string)

	users, err := h.messageUseCase.ListContacts(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{"users": users})
}
