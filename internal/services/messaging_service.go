package services

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/roomieradar/roomieradar/internal/database"
	"github.com/roomieradar/roomieradar/internal/errors"
	"github.com/roomieradar/roomieradar/internal/interfaces"
)

// MaxMessageLength is the longest chat message accepted, in characters.
const MaxMessageLength = 2000

type MessagingService struct {
	messages interfaces.MessageStore
}

func NewMessagingService(messages interfaces.MessageStore) *MessagingService {
	return &MessagingService{messages: messages}
}

// ChatID names the conversation between two users; it is the same whichever
// side asks.
func ChatID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

func (s *MessagingService) SendMessage(ctx context.Context, senderID, recipientID, body string) (*database.Message, error) {
	recipientID = strings.TrimSpace(recipientID)
	body = strings.TrimSpace(body)

	switch {
	case recipientID == "":
		return nil, errors.NewValidationError("recipient_id", "Recipient is required")
	case recipientID == senderID:
		return nil, errors.NewValidationError("recipient_id", "You cannot message yourself")
	case body == "":
		return nil, errors.NewValidationError("message", "Message is empty")
	case utf8.RuneCountInString(body) > MaxMessageLength:
		return nil, errors.NewValidationError("message", "Message is too long")
	}

	msg := &database.Message{
		ID:          uuid.New().String(),
		ChatID:      ChatID(senderID, recipientID),
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        body,
	}
	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// GetChatHistory returns the conversation oldest first.
func (s *MessagingService) GetChatHistory(ctx context.Context, userID, otherID string) ([]database.Message, error) {
	if strings.TrimSpace(otherID) == "" {
		return nil, errors.NewValidationError("otherId", "Other user is required")
	}
	return s.messages.ListMessages(ctx, ChatID(userID, otherID))
}

// MarkRead flags messages otherID sent to userID as read.
func (s *MessagingService) MarkRead(ctx context.Context, userID, otherID string) error {
	_, err := s.messages.MarkRead(ctx, ChatID(userID, otherID), userID)
	return err
}
