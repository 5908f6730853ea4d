package sink_test

import (
	"context"
	"shop-relay/domain/event"
	"shop-relay/errors"
	"shop-relay/sink"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChannelSink_Consume(t *testing.T) {
	ctx := context.Background()

	t.Run("should keep events in order", func(t *testing.T) {
		req := require.New(t)
		s := sink.NewChannelSink(3)

		req.NoError(s.Consume(ctx, event.New(event.LikeCount, 1)))
		req.NoError(s.Consume(ctx, event.New(event.LikeCount, 2)))

		req.Equal(1, (<-s.Events()).Data)
		req.Equal(2, (<-s.Events()).Data)
	})

	t.Run("should drop events when the buffer is full", func(t *testing.T) {
		req := require.New(t)
		s := sink.NewChannelSink(1)

		req.NoError(s.Consume(ctx, event.Bare(event.StreamStarted)))
		req.ErrorIs(s.Consume(ctx, event.Bare(event.StreamStopped)), errors.ErrSinkFull)
		req.Len(s.Events(), 1)
	})

	t.Run("should refuse events once closed", func(t *testing.T) {
		req := require.New(t)
		s := sink.NewChannelSink(2)
		req.NoError(s.Consume(ctx, event.Bare(event.StreamStarted)))

		s.Close()
		s.Close()

		req.ErrorIs(s.Consume(ctx, event.Bare(event.StreamStopped)), errors.ErrSinkClosed)

		// Queued events are still readable before the channel reports closure
		e, ok := <-s.Events()
		req.True(ok)
		req.Equal(event.StreamStarted, e.Name)
		_, ok = <-s.Events()
		req.False(ok)
	})

	t.Run("should honour a cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		s := sink.NewChannelSink(1)

		require.ErrorIs(t, s.Consume(cancelled, event.Bare(event.StreamStarted)), context.Canceled)
	})
}
