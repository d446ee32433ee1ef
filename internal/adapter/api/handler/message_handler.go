package handler

import (
	"github.com/labstack/echo/v4"

	"teamline/internal/domain/entity"
	"teamline/internal/usecase"
	"teamline/pkg/response"
)

type MessageHandler struct {
	messageUseCase *usecase.MessageUseCase
}

func NewMessageHandler(messageUseCase *usecase.MessageUseCase) *MessageHandler {
	return &MessageHandler{messageUseCase: messageUseCase}
}

type sendMessageRequest struct {
	RecipientID string              `json:"recipientId" validate:"required"`
	Content     string              `json:"content"`
	Attachments []attachmentPayload `json:"attachments" validate:"dive"`
}

type attachmentPayload struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required"`
	Size int64  `json:"size"`
	URL  string `json:"url" validate:"required,url"`
}

// SendMessage handles POST /messages.
func (h *MessageHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	attachments := make([]entity.Attachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		attachments = append(attachments, entity.Attachment{
			Name: a.Name,
			Type: a.Type,
			Size: a.Size,
			URL:  a.URL,
		})
	}

	message, err := h.messageUseCase.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		RecipientID: req.RecipientID,
		Content:     req.Content,
		Attachments: attachments,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{"message": message})
}

// GetMessages handles GET /messages?userId={peerId}.
func (h *MessageHandler) GetMessages(c echo.Context) error {
	userID := c.Get("uid").(string)
	peerID := c.QueryParam("userId")

	messages, err := h.messageUseCase.ListConversation(c.Request().Context(), userID, peerID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{"messages": messages})
}
