// Package domain contains core concepts of the chat and livestream system.
// This file defines chat messages and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"shop-relay/errors"
	"strings"
	"time"
)

// ChatMessage is one durable turn of a user/admin conversation.
type ChatMessage struct {
	ID        string    `json:"_id,omitempty"`
	Sender    string    `json:"sender" validate:"required,max=128"`
	Receiver  string    `json:"receiver" validate:"required,max=128"`
	Message   string    `json:"message" validate:"required,max=4000"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate checks the conversation invariants.
func (m ChatMessage) Validate() error {
	if strings.TrimSpace(m.Message) == "" {
		return errors.ErrEmptyMessage
	}
	if m.Sender == "" || m.Receiver == "" {
		return errors.ErrEmptyIdentity
	}
	if m.Sender == AdminIdentity && m.Receiver == AdminIdentity {
		return errors.ErrAdminToAdmin
	}
	if m.Sender == m.Receiver {
		return errors.ErrSelfAddressed
	}
	if !IsReserved(m.Sender) && !IsReserved(m.Receiver) {
		return errors.ErrNoConversation
	}
	if IsReserved(m.Sender) && IsReserved(m.Receiver) {
		return errors.ErrNoConversation
	}
	return nil
}

// Conversation returns the customer side of the message.
func (m ChatMessage) Conversation() string {
	if IsCustomer(m.Sender) {
		return m.Sender
	}
	return m.Receiver
}

// FromCustomer reports whether a customer wrote the message.
func (m ChatMessage) FromCustomer() bool { return IsCustomer(m.Sender) }

// InHistoryOf reports whether m is part of the history replayed to userID:
// userID to admin, admin to userID, or bot to userID.
func (m ChatMessage) InHistoryOf(userID string) bool {
	switch {
	case m.Sender == userID && m.Receiver == AdminIdentity:
		return true
	case m.Sender == AdminIdentity && m.Receiver == userID:
		return true
	case m.Sender == BotIdentity && m.Receiver == userID:
		return true
	}
	return false
}

// InvolvesAdmin reports whether a human admin is one side of the message.
func (m ChatMessage) InvolvesAdmin() bool {
	return m.Sender == AdminIdentity || m.Receiver == AdminIdentity
}

// NewBotMessage builds a bot reply addressed to userID.
func NewBotMessage(userID, text string, at time.Time) ChatMessage {
	return ChatMessage{Sender: BotIdentity, Receiver: userID, Message: text, Timestamp: at}
}
