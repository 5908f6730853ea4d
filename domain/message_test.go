package domain

import (
	"shop-relay/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChatMessage_Validate(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		msg  ChatMessage
		err  error
	}{
		{"user to admin", ChatMessage{Sender: "u1", Receiver: AdminIdentity, Message: "hi", Timestamp: now}, nil},
		{"admin to user", ChatMessage{Sender: AdminIdentity, Receiver: "u1", Message: "hello", Timestamp: now}, nil},
		{"bot to user", ChatMessage{Sender: BotIdentity, Receiver: "u1", Message: "hello", Timestamp: now}, nil},
		{"admin to admin", ChatMessage{Sender: AdminIdentity, Receiver: AdminIdentity, Message: "x"}, errors.ErrAdminToAdmin},
		{"user to user", ChatMessage{Sender: "u1", Receiver: "u2", Message: "x"}, errors.ErrNoConversation},
		{"bot to admin", ChatMessage{Sender: BotIdentity, Receiver: AdminIdentity, Message: "x"}, errors.ErrNoConversation},
		{"blank text", ChatMessage{Sender: "u1", Receiver: AdminIdentity, Message: "  "}, errors.ErrEmptyMessage},
		{"missing receiver", ChatMessage{Sender: "u1", Message: "x"}, errors.ErrEmptyIdentity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestChatMessage_Conversation(t *testing.T) {
	req := require.New(t)

	req.Equal("u1", ChatMessage{Sender: "u1", Receiver: AdminIdentity}.Conversation())
	req.Equal("u1", ChatMessage{Sender: AdminIdentity, Receiver: "u1"}.Conversation())
	req.Equal("u1", ChatMessage{Sender: BotIdentity, Receiver: "u1"}.Conversation())
}

func TestChatMessage_InHistoryOf(t *testing.T) {
	req := require.New(t)

	req.True(ChatMessage{Sender: "u1", Receiver: AdminIdentity}.InHistoryOf("u1"))
	req.True(ChatMessage{Sender: AdminIdentity, Receiver: "u1"}.InHistoryOf("u1"))
	req.True(ChatMessage{Sender: BotIdentity, Receiver: "u1"}.InHistoryOf("u1"))

	// Messages addressed to the bot or belonging to someone else are not replayed
	req.False(ChatMessage{Sender: "u1", Receiver: BotIdentity}.InHistoryOf("u1"))
	req.False(ChatMessage{Sender: AdminIdentity, Receiver: "u2"}.InHistoryOf("u1"))
}

func TestIsAdminActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should be inactive without admin messages", func(t *testing.T) {
		history := []ChatMessage{
			{Sender: "u1", Receiver: AdminIdentity, Timestamp: now.Add(-time.Minute)},
			{Sender: BotIdentity, Receiver: "u1", Timestamp: now.Add(-time.Minute)},
		}
		require.False(t, IsAdminActive(history, now))
		require.False(t, IsAdminActive(nil, now))
	})

	t.Run("should be active when the admin wrote inside the window", func(t *testing.T) {
		history := []ChatMessage{
			{Sender: AdminIdentity, Receiver: "u1", Timestamp: now.Add(-5 * time.Minute)},
			{Sender: "u1", Receiver: AdminIdentity, Timestamp: now.Add(-time.Minute)},
		}
		require.True(t, IsAdminActive(history, now))
	})

	t.Run("should expire exactly at the window boundary", func(t *testing.T) {
		history := []ChatMessage{
			{Sender: AdminIdentity, Receiver: "u1", Timestamp: now.Add(-AdminActiveWindow)},
		}
		require.False(t, IsAdminActive(history, now))

		history[0].Timestamp = now.Add(-AdminActiveWindow + time.Second)
		require.True(t, IsAdminActive(history, now))
	})
}
