package usecase

import (
	"context"

	"teamline/internal/domain/entity"
	"teamline/internal/domain/repository"
	"teamline/pkg/errors"
	"teamline/pkg/logger"
)

// MessagePublisher is the realtime fan-out side effect of a successful send.
type MessagePublisher interface {
	Publish(ctx context.Context, message *entity.Message)
}

type MessageUseCase struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	publisher   MessagePublisher
}

func NewMessageUseCase(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	publisher MessagePublisher,
) *MessageUseCase {
	return &MessageUseCase{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

type SendMessageInput struct {
	RecipientID string
	Content     string
	Attachments []entity.Attachment
}

// SendMessage persists the message and then pushes it to the pair's channel.
// The sender id comes from the authenticated caller, never from the request
// body. Publish happens strictly after a successful persist and at most once.
func (uc *MessageUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*entity.Message, error) {
	if input.RecipientID == "" {
		return nil, errors.BadRequest("Recipient ID is required", nil)
	}
	if input.Content == "" && len(input.Attachments) == 0 {
		return nil, errors.BadRequest("Message must have content or attachments", nil)
	}

	sender, err := uc.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, errors.Internal("Failed to resolve sender", err)
	}
	if sender == nil {
		return nil, errors.Unauthorized("Unknown sender", nil)
	}

	recipient, err := uc.userRepo.GetByID(ctx, input.RecipientID)
	if err != nil {
		return nil, errors.Internal("Failed to resolve recipient", err)
	}
	if recipient == nil {
		return nil, errors.NotFound("Recipient", nil)
	}

	message := &entity.Message{
		SenderID:    senderID,
		RecipientID: input.RecipientID,
		Content:     input.Content,
		Attachments: input.Attachments,
	}

	if err := uc.messageRepo.Create(ctx, message); err != nil {
		logger.Error("SendMessage: persist failed for sender %s: %v", senderID, err)
		return nil, errors.Internal("Failed to send message", err)
	}
	message.Sender = sender.Summary()

	uc.publisher.Publish(ctx, message)

	return message, nil
}

// ListConversation returns the full ordered backlog between the caller and
// the peer. Safe to poll; an empty conversation is an empty slice.
func (uc *MessageUseCase) ListConversation(ctx context.Context, userID, peerID string) ([]entity.Message, error) {
	if peerID == "" {
		return nil, errors.BadRequest("User ID is required", nil)
	}

	messages, err := uc.messageRepo.ListConversation(ctx, userID, peerID)
	if err != nil {
		logger.Error("ListConversation: fetch failed for %s/%s: %v", userID, peerID, err)
		return nil, errors.Internal("Failed to fetch messages", err)
	}
	return messages, nil
}

// ListContacts returns everyone the caller can open a conversation with.
func (uc *MessageUseCase) ListContacts(ctx context.Context, userID string) ([]entity.User, error) {
	users, err := uc.userRepo.List(ctx, userID)
	if err != nil {
		return nil, errors.Internal("Failed to fetch users", err)
	}
	return users, nil
}
