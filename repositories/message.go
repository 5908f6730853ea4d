//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"shop-relay/domain"
	"slices"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/oklog/ulid/v2"
)

const (
	chatPrefix     = "chat:"
	chatUserPrefix = "chatuser:"
)

type IMessageRepository interface {
	Store(ctx context.Context, message domain.ChatMessage) (domain.ChatMessage, error)
	History(ctx context.Context, userID string) ([]domain.ChatMessage, error)
	Recent(ctx context.Context, userID string, n int) ([]domain.ChatMessage, error)
	ChatUsers(ctx context.Context) ([]string, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

var _ IMessageRepository = MessageRepository{}

// NewMessageRepository builds the chat store. When limitMessages is set, History only
// replays that many of the latest messages.
func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// Store persists a message in BadgerDB and returns it with its ID.
// The key is formatted as "chat:{conversation}:{timestamp_padded}:{ulid}" to:
//  1. Keep one conversation contiguous so history is a single prefix scan.
//  2. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  3. Prevent data loss when two messages share the same nanosecond.
//
// Customers talking with the admin are also indexed under "chatuser:{id}".
func (m MessageRepository) Store(ctx context.Context, message domain.ChatMessage) (domain.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return domain.ChatMessage{}, err
	}
	if err := message.Validate(); err != nil {
		return domain.ChatMessage{}, err
	}
	if message.Timestamp.IsZero() {
		return domain.ChatMessage{}, fmt.Errorf("message timestamp is required")
	}
	if message.ID == "" {
		message.ID = ulid.Make().String()
	}

	bytes, err := json.Marshal(message)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	conversation := message.Conversation()
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(messageKey(conversation, message), bytes); err != nil {
			return err
		}
		if message.InvolvesAdmin() {
			return txn.Set([]byte(chatUserPrefix+conversation), nil)
		}
		return nil
	})
	if err != nil {
		return domain.ChatMessage{}, err
	}
	return message, nil
}

// History returns the conversation replayed to userID, oldest first: userID to admin,
// admin to userID and bot to userID.
func (m MessageRepository) History(ctx context.Context, userID string) ([]domain.ChatMessage, error) {
	limit := 0
	if m.limitMessages != nil {
		limit = *m.limitMessages
	}
	if limit > 0 {
		return m.latest(ctx, userID, limit)
	}

	var messages []domain.ChatMessage
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := conversationPrefix(userID)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			message, err := decode(it.Item())
			if err != nil {
				return err
			}
			if message.InHistoryOf(userID) {
				messages = append(messages, message)
			}
		}
		return nil
	})
	return messages, err
}

// Recent returns the n latest history messages of userID, oldest first.
func (m MessageRepository) Recent(ctx context.Context, userID string, n int) ([]domain.ChatMessage, error) {
	if n <= 0 {
		return nil, nil
	}
	return m.latest(ctx, userID, n)
}

func (m MessageRepository) latest(ctx context.Context, userID string, n int) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := conversationPrefix(userID)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Every key of the conversation sorts before prefix+0xFF
		seekKey := append(slices.Clone(prefix), 0xFF)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if len(messages) == n {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", n))
				break
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			message, err := decode(it.Item())
			if err != nil {
				return err
			}
			if message.InHistoryOf(userID) {
				messages = append(messages, message)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(messages)
	return messages, nil
}

// ChatUsers lists, sorted, every customer that wrote to or received a message from the admin.
func (m MessageRepository) ChatUsers(ctx context.Context) ([]string, error) {
	var users []string
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(chatUserPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			users = append(users, strings.TrimPrefix(string(it.Item().Key()), chatUserPrefix))
		}
		return nil
	})
	sort.Strings(users)
	return users, err
}

func conversationPrefix(userID string) []byte {
	return []byte(chatPrefix + userID + ":")
}

func messageKey(conversation string, message domain.ChatMessage) []byte {
	return []byte(fmt.Sprintf("%s%s:%019d:%s",
		chatPrefix,
		conversation,
		message.Timestamp.UnixNano(),
		message.ID,
	))
}

func decode(item *badger.Item) (domain.ChatMessage, error) {
	var message domain.ChatMessage
	err := item.Value(func(value []byte) error {
		return json.Unmarshal(value, &message)
	})
	return message, err
}
