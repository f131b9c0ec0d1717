package repository

import (
	"context"

	"github.com/roomieradar/roomieradar/internal/database"
	"github.com/roomieradar/roomieradar/internal/errors"
	"github.com/roomieradar/roomieradar/internal/telemetry"
)

type MessageRepository struct {
	db *database.DB
}

func NewMessageRepository(db *database.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) CreateMessage(ctx context.Context, msg *database.Message) error {
	query := `
		INSERT INTO messages (id, chat_id, sender_id, recipient_id, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING read, created_at
	`
	err := r.db.QueryRowContext(ctx, query, msg.ID, msg.ChatID, msg.SenderID, msg.RecipientID, msg.Body).
		Scan(&msg.Read, &msg.CreatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return errors.NewNotFoundError("user")
		}
		telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
			"chat_id":   msg.ChatID,
			"operation": "create_message",
		}).WithError(err).Error("Failed to store message")
		return errors.NewDatabaseError("create_message", err)
	}
	return nil
}

// ListMessages returns a chat's messages oldest first.
func (r *MessageRepository) ListMessages(ctx context.Context, chatID string) ([]database.Message, error) {
	query := `
		SELECT id, chat_id, sender_id, recipient_id, body, read, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, errors.NewDatabaseError("list_messages", err)
	}
	defer rows.Close()

	messages := make([]database.Message, 0)
	for rows.Next() {
		var m database.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.RecipientID, &m.Body, &m.Read, &m.CreatedAt); err != nil {
			return nil, errors.NewDatabaseError("list_messages", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseError("list_messages", err)
	}
	return messages, nil
}

// MarkRead flags every unread message in the chat addressed to recipientID.
func (r *MessageRepository) MarkRead(ctx context.Context, chatID, recipientID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE messages SET read = TRUE WHERE chat_id = $1 AND recipient_id = $2 AND NOT read`,
		chatID, recipientID,
	)
	if err != nil {
		return 0, errors.NewDatabaseError("mark_read", err)
	}
	return result.RowsAffected()
}
