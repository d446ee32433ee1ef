package repository

import (
	"context"

	"teamline/internal/domain/entity"
)

type MessageRepository interface {
	// Create persists the message and fills in the server-assigned ID and
	// CreatedAt on the passed value.
	Create(ctx context.Context, message *entity.Message) error

	// ListConversation returns every message exchanged between the two users,
	// in either direction, ordered by CreatedAt ascending with ID as the
	// tiebreaker. An empty conversation yields an empty slice, not an error.
	ListConversation(ctx context.Context, userID, peerID string) ([]entity.Message, error)
}
