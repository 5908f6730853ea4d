package sink

import (
	"context"
	"fmt"
	"log/slog"
	"shop-relay/domain"
	"shop-relay/repositories"
	"sync"
	"time"
)

// IndexSink buffers persisted chat messages and hands them to the search index in batches.
// A batch is flushed when it reaches maxBatch messages or bufferTimeout after its first message.
type IndexSink struct {
	mu            sync.Mutex
	timer         *time.Timer
	index         repositories.IMessageIndex
	log           *slog.Logger
	messages      []domain.ChatMessage
	maxBatch      int
	bufferTimeout time.Duration
	indexTimeout  time.Duration
}

func NewIndexSink(
	index repositories.IMessageIndex,
	log *slog.Logger,
	maxBatch int,
	bufferTimeout time.Duration,
	indexTimeout time.Duration,
) *IndexSink {
	return &IndexSink{
		index:         index,
		log:           log,
		maxBatch:      max(maxBatch, 1),
		bufferTimeout: bufferTimeout,
		indexTimeout:  indexTimeout,
	}
}

func (s *IndexSink) Consume(ctx context.Context, message domain.ChatMessage) error {
	s.mu.Lock()
	s.messages = append(s.messages, message)

	// Low throughput must not leave messages unsearchable
	if len(s.messages) == 1 && s.timer == nil {
		s.timer = time.AfterFunc(s.bufferTimeout, func() {
			if err := s.Flush(context.WithoutCancel(ctx)); err != nil {
				s.log.Error("Timeout flush of the search index failed", "error", err)
			}
		})
	}
	isFull := len(s.messages) >= s.maxBatch
	s.mu.Unlock()

	if isFull {
		return s.Flush(ctx)
	}
	return nil
}

// Flush indexes whatever is buffered. The buffer is swapped under the lock so
// producers can start the next batch while this one is written.
func (s *IndexSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if len(s.messages) == 0 {
		s.mu.Unlock()
		return nil
	}
	batch := s.messages
	s.messages = make([]domain.ChatMessage, 0, s.maxBatch)
	s.mu.Unlock()

	batchCtx, cancel := context.WithTimeout(ctx, s.indexTimeout)
	defer cancel()

	if err := s.index.Index(batchCtx, batch); err != nil {
		return fmt.Errorf("failed to index %d messages: %w", len(batch), err)
	}
	s.log.Debug("Chat messages indexed", "count", len(batch))
	return nil
}
