//go:generate go run go.uber.org/mock/mockgen -source=message_index.go -destination=../mocks/mock_message_index.go -package=mocks
package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"shop-relay/domain"
	"strings"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/blugelabs/bluge/search"
	"golang.org/x/text/unicode/norm"
)

const (
	fieldConversation = "conversation"
	fieldSender       = "sender"
	fieldReceiver     = "receiver"
	fieldMessage      = "message"
	fieldTimestamp    = "timestamp"

	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

type IMessageIndex interface {
	Index(ctx context.Context, messages []domain.ChatMessage) error
	Search(ctx context.Context, query SearchQuery) (SearchResult, error)
}

// SearchQuery is a full-text lookup over chat messages.
// An empty Conversation searches every conversation.
type SearchQuery struct {
	Text         string
	Conversation string
	Limit        int
}

type SearchResult struct {
	Messages []domain.ChatMessage
	Total    uint64
}

// MessageIndex keeps a full-text index of chat messages next to the Badger store.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

var _ IMessageIndex = MessageIndex{}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) MessageIndex {
	return MessageIndex{writer: writer, log: log}
}

// Index adds or replaces messages in a single batch. Messages without ID are skipped.
func (i MessageIndex) Index(ctx context.Context, messages []domain.ChatMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	batch := bluge.NewBatch()
	count := 0
	for _, message := range messages {
		if message.ID == "" {
			i.log.Debug("Skipping message without id")
			continue
		}
		doc := bluge.NewDocument(message.ID).
			AddField(bluge.NewKeywordField(fieldConversation, message.Conversation()).StoreValue()).
			AddField(bluge.NewKeywordField(fieldSender, message.Sender).StoreValue()).
			AddField(bluge.NewKeywordField(fieldReceiver, message.Receiver).StoreValue()).
			AddField(bluge.NewTextField(fieldMessage, norm.NFC.String(message.Message)).StoreValue()).
			AddField(bluge.NewDateTimeField(fieldTimestamp, message.Timestamp).StoreValue().Sortable())
		batch.Update(doc.ID(), doc)
		count++
	}
	if count == 0 {
		return nil
	}
	if err := i.writer.Batch(batch); err != nil {
		return fmt.Errorf("failed to index %d messages: %w", count, err)
	}
	return nil
}

// Search returns the newest matching messages first.
func (i MessageIndex) Search(ctx context.Context, query SearchQuery) (SearchResult, error) {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return SearchResult{}, nil
	}
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	limit = min(limit, MaxSearchLimit)

	reader, err := i.writer.Reader()
	if err != nil {
		return SearchResult{}, fmt.Errorf("failed to open index reader: %w", err)
	}
	defer func() { _ = reader.Close() }()

	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(norm.NFC.String(text)).SetField(fieldMessage))
	if query.Conversation != "" {
		q.AddMust(bluge.NewTermQuery(query.Conversation).SetField(fieldConversation))
	}

	request := bluge.NewTopNSearch(limit, q).
		SortBy([]string{"-" + fieldTimestamp}).
		WithStandardAggregations()
	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search failed: %w", err)
	}

	var result SearchResult
	match, err := iterator.Next()
	for err == nil && match != nil {
		message, visitErr := toChatMessage(match)
		if visitErr != nil {
			return SearchResult{}, visitErr
		}
		result.Messages = append(result.Messages, message)
		match, err = iterator.Next()
	}
	if err != nil {
		return SearchResult{}, fmt.Errorf("failed to iterate search results: %w", err)
	}
	result.Total = iterator.Aggregations().Count()
	return result, nil
}

func toChatMessage(match *search.DocumentMatch) (domain.ChatMessage, error) {
	var message domain.ChatMessage
	var decodeErr error
	err := match.VisitStoredFields(func(field string, value []byte) bool {
		switch field {
		case "_id":
			message.ID = string(value)
		case fieldSender:
			message.Sender = string(value)
		case fieldReceiver:
			message.Receiver = string(value)
		case fieldMessage:
			message.Message = string(value)
		case fieldTimestamp:
			var at time.Time
			at, decodeErr = bluge.DecodeDateTime(value)
			message.Timestamp = at.UTC()
		}
		return decodeErr == nil
	})
	if err != nil {
		return domain.ChatMessage{}, err
	}
	return message, decodeErr
}
