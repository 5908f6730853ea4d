package workers

import (
	"context"
	"fmt"
	"log/slog"
	"shop-relay/contract"
	"shop-relay/domain"
	"shop-relay/errors"
)

// MessageFanout hands every persisted chat message to side consumers (search index, analytics).
//
// It is best-effort: no retries, no durability. The chat history in badger stays the source
// of truth, a message lost here is only missing from search results or statistics.
type MessageFanout struct {
	log      *slog.Logger
	messages chan domain.ChatMessage
	sinks    []contract.MessageSink
}

var (
	_ contract.Worker      = (*MessageFanout)(nil)
	_ contract.MessageSink = (*MessageFanout)(nil)
)

func NewMessageFanout(log *slog.Logger, size int, sinks ...contract.MessageSink) *MessageFanout {
	return &MessageFanout{log: log, messages: make(chan domain.ChatMessage, size), sinks: sinks}
}

// Consume enqueues without blocking the chat path.
func (f *MessageFanout) Consume(_ context.Context, message domain.ChatMessage) error {
	select {
	case f.messages <- message:
		return nil
	default:
		f.log.Warn("Message fanout queue full, message skipped", "id", message.ID)
		return errors.ErrSinkFull
	}
}

func (f *MessageFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			f.log.Debug("Context done, stopping message fanout")
			return nil
		case message := <-f.messages:
			for _, sink := range f.sinks {
				if err := sink.Consume(ctx, message); err != nil {
					f.log.Warn("Message sink failed", "sink", fmt.Sprintf("%T", sink), "id", message.ID, "error", err)
				}
			}
		}
	}
}

func (f *MessageFanout) Queue() chan domain.ChatMessage { return f.messages }
