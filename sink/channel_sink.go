package sink

import (
	"context"
	"shop-relay/contract"
	"shop-relay/domain/event"
	"shop-relay/errors"
	"sync"
)

// ChannelSink queues outbound events for the goroutine writing to a connection.
// Consume never blocks: when the queue is full the event is dropped and ErrSinkFull returned.
type ChannelSink struct {
	mu     sync.RWMutex
	events chan event.Outbound
	closed bool
}

var _ contract.EventSink = (*ChannelSink)(nil)

func NewChannelSink(size int) *ChannelSink {
	return &ChannelSink{events: make(chan event.Outbound, size)}
}

func (s *ChannelSink) Consume(ctx context.Context, e event.Outbound) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return errors.ErrSinkClosed
	}
	select {
	case s.events <- e:
		return nil
	default:
		return errors.ErrSinkFull
	}
}

// Events is closed by Close once every queued event has been read.
func (s *ChannelSink) Events() <-chan event.Outbound {
	return s.events
}

// Close stops accepting events. It is safe to call more than once.
func (s *ChannelSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}
