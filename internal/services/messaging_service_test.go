package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/roomieradar/roomieradar/internal/database"
	"github.com/roomieradar/roomieradar/internal/errors"
)

func TestChatID(t *testing.T) {
	assert.Equal(t, "alice_bob", ChatID("alice", "bob"))
	assert.Equal(t, "alice_bob", ChatID("bob", "alice"))
	assert.Equal(t, ChatID("u-2", "u-10"), ChatID("u-10", "u-2"))
}

func TestMessagingService_SendMessage(t *testing.T) {
	store := new(MockMessageStore)
	service := NewMessagingService(store)
	ctx := context.Background()

	store.On("CreateMessage", ctx, mock.MatchedBy(func(m *database.Message) bool {
		return m.ID != "" && m.ChatID == "alice_bob" && m.SenderID == "bob" &&
			m.RecipientID == "alice" && m.Body == "hello"
	})).Return(nil)

	msg, err := service.SendMessage(ctx, "bob", " alice ", "  hello ")
	require.NoError(t, err)
	assert.Equal(t, "alice_bob", msg.ChatID)
	store.AssertExpectations(t)
}

func TestMessagingService_SendMessageValidation(t *testing.T) {
	store := new(MockMessageStore)
	service := NewMessagingService(store)
	ctx := context.Background()

	cases := map[string][3]string{
		"no recipient": {"bob", "", "hi"},
		"self":         {"bob", "bob", "hi"},
		"empty body":   {"bob", "alice", "   "},
		"too long":     {"bob", "alice", strings.Repeat("é", MaxMessageLength+1)},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := service.SendMessage(ctx, c[0], c[1], c[2])
			assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
		})
	}

	store.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestMessagingService_SendMessageAtLengthLimit(t *testing.T) {
	store := new(MockMessageStore)
	service := NewMessagingService(store)
	ctx := context.Background()
	store.On("CreateMessage", ctx, mock.Anything).Return(nil)

	msg, err := service.SendMessage(ctx, "bob", "alice", strings.Repeat("é", MaxMessageLength))
	require.NoError(t, err)
	assert.Equal(t, "bob", msg.SenderID)
}

func TestMessagingService_History(t *testing.T) {
	store := new(MockMessageStore)
	service := NewMessagingService(store)
	ctx := context.Background()

	history := []database.Message{{ID: "1", Body: "hi"}, {ID: "2", Body: "hey"}}
	store.On("ListMessages", ctx, "alice_bob").Return(history, nil)
	store.On("MarkRead", ctx, "alice_bob", "alice").Return(int64(2), nil)

	got, err := service.GetChatHistory(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, history, got)

	require.NoError(t, service.MarkRead(ctx, "alice", "bob"))

	_, err = service.GetChatHistory(ctx, "alice", "")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
	store.AssertExpectations(t)
}
