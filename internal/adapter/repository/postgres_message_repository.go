package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"teamline/internal/domain/entity"
)

type PostgresMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresMessageRepository(pool *pgxpool.Pool) *PostgresMessageRepository {
	return &PostgresMessageRepository{pool: pool}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.Attachments == nil {
		message.Attachments = []entity.Attachment{}
	}

	query := `
		INSERT INTO messages (sender_id, recipient_id, content, attachments)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		message.SenderID, message.RecipientID, message.Content, message.Attachments,
	).Scan(&message.ID, &message.CreatedAt)
}

func (r *PostgresMessageRepository) ListConversation(ctx context.Context, userID, peerID string) ([]entity.Message, error) {
	query := `
		SELECT m.id, m.sender_id, m.recipient_id, m.content, m.attachments,
			m.created_at, u.id, u.name
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE (m.sender_id = $1 AND m.recipient_id = $2)
			OR (m.sender_id = $2 AND m.recipient_id = $1)
		ORDER BY m.created_at ASC, m.id ASC`

	rows, err := r.pool.Query(ctx, query, userID, peerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []entity.Message{}
	for rows.Next() {
		var msg entity.Message
		var sender entity.UserSummary
		if err := rows.Scan(
			&msg.ID, &msg.SenderID, &msg.RecipientID, &msg.Content, &msg.Attachments,
			&msg.CreatedAt, &sender.ID, &sender.Name,
		); err != nil {
			return nil, err
		}
		msg.Sender = &sender
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
