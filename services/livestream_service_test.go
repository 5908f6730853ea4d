package services

import (
	"context"
	"encoding/json"
	"fmt"
	"shop-relay/domain"
	"shop-relay/domain/event"
	"shop-relay/errors"
	"shop-relay/sink"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type livestreamFixture struct {
	*relay
	service *LivestreamService
}

func newLivestreamFixture() livestreamFixture {
	r := newRelay()
	return livestreamFixture{relay: r, service: NewLivestreamService(discardLogger(), r.registry, r.router, r.metrics)}
}

func (f livestreamFixture) broadcaster(t *testing.T, connID string) (*domain.Participant, *sink.ChannelSink) {
	t.Helper()
	p, s := f.connect(connID, domain.AdminIdentity, false)
	require.NoError(t, f.service.AdminJoin(context.Background(), p))
	return p, s
}

func (f livestreamFixture) viewer(t *testing.T, connID, name string) (*domain.Participant, *sink.ChannelSink) {
	t.Helper()
	p, s := f.connect(connID, "", true)
	require.NoError(t, f.service.JoinLivestream(context.Background(), p, name))
	return p, s
}

func TestLivestreamService_Start_Stream(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newLivestreamFixture()

	admin, adminSink := f.broadcaster(t, "b1")
	_, v1Sink := f.viewer(t, "v1", "Lan")
	_, v2Sink := f.viewer(t, "v2", "")
	req.Equal([]string{event.LikeCount}, names(drain(v1Sink)))
	req.Equal([]string{event.LikeCount}, names(drain(v2Sink)))
	req.Equal([]string{event.ClientCount, event.ClientCount}, names(drain(adminSink)))

	// When the broadcaster starts
	req.NoError(f.service.StartStream(ctx, admin))

	// Then every viewer is told
	req.Equal([]string{event.StreamStarted}, names(drain(v1Sink)))
	req.Equal([]string{event.StreamStarted}, names(drain(v2Sink)))

	// And a late viewer is told on join
	_, v3Sink := f.viewer(t, "v3", "Minh")
	req.Equal([]string{event.LikeCount, event.StreamStarted}, names(drain(v3Sink)))

	events := drain(adminSink)
	req.Len(events, 1)
	req.Equal(event.New(event.ClientCount, 3), events[0])
	req.True(f.service.Snapshot().Streaming)
	req.Equal("Khách", f.service.Snapshot().Viewers["v2"])
}

func TestLivestreamService_Likes(t *testing.T) {
	ctx := context.Background()

	t.Run("should count every like from concurrent viewers", func(t *testing.T) {
		req := require.New(t)
		f := newLivestreamFixture()
		_, adminSink := f.broadcaster(t, "b1")

		viewers := make([]*domain.Participant, 3)
		sinks := make([]*sink.ChannelSink, 3)
		for i := range viewers {
			viewers[i], sinks[i] = f.viewer(t, fmt.Sprintf("v%d", i), "")
			drain(sinks[i])
		}
		drain(adminSink)

		var wg sync.WaitGroup
		for _, v := range viewers {
			wg.Add(1)
			go func(p *domain.Participant) {
				defer wg.Done()
				req.NoError(f.service.SendLike(ctx, p))
			}(v)
		}
		wg.Wait()

		req.Equal(3, f.service.Snapshot().Likes)
		for _, s := range sinks {
			events := drain(s)
			req.Len(events, 3)
			req.Equal(event.New(event.LikeCount, 3), events[2])
		}
		broadcasterEvents := drain(adminSink)
		req.Len(broadcasterEvents, 3)
		req.Equal(event.New(event.LikeCount, 3), broadcasterEvents[2])
	})

	t.Run("should reset likes when the stream stops", func(t *testing.T) {
		req := require.New(t)
		f := newLivestreamFixture()
		admin, adminSink := f.broadcaster(t, "b1")
		viewer, viewerSink := f.viewer(t, "v1", "")
		req.NoError(f.service.StartStream(ctx, admin))
		req.NoError(f.service.SendLike(ctx, viewer))
		req.NoError(f.service.SendLike(ctx, viewer))
		drain(viewerSink)
		drain(adminSink)

		req.NoError(f.service.StopStream(ctx, admin))

		req.Equal([]event.Outbound{event.Bare(event.StreamStopped), event.New(event.LikeCount, 0)}, drain(viewerSink))
		req.Equal([]event.Outbound{event.Bare(event.StreamStopped), event.New(event.LikeCount, 0)}, drain(adminSink))
		req.Zero(f.service.Snapshot().Likes)
		req.False(f.service.Snapshot().Streaming)
	})
}

func TestLivestreamService_Late_Join_Sync(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newLivestreamFixture()
	admin, _ := f.broadcaster(t, "b1")
	early, earlySink := f.viewer(t, "v1", "")

	product := json.RawMessage(`{"_id":"p1","name":"Áo thun","price":199000}`)
	req.NoError(f.service.HighlightProduct(ctx, admin, product))
	req.NoError(f.service.SendLike(ctx, early))
	req.NoError(f.service.SendLike(ctx, early))
	drain(earlySink)

	// When a viewer joins after the highlight and the likes
	_, lateSink := f.viewer(t, "v2", "Hoa")

	// Then it gets the current state right away
	req.Equal([]event.Outbound{
		event.New(event.LikeCount, 2),
		event.New(event.ProductHighlighted, product),
	}, drain(lateSink))
	req.Empty(drain(earlySink))
}

func TestLivestreamService_Broadcaster_Disconnect(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newLivestreamFixture()
	admin, _ := f.broadcaster(t, "b1")
	viewer, viewerSink := f.viewer(t, "v1", "")
	req.NoError(f.service.StartStream(ctx, admin))
	req.NoError(f.service.HighlightProduct(ctx, admin, json.RawMessage(`{"name":"Váy"}`)))
	req.NoError(f.service.SendLike(ctx, viewer))
	drain(viewerSink)

	// When the broadcaster leaves mid stream
	f.service.Disconnect(ctx, admin)

	// Then viewers see the stream end and the counter reset
	req.Equal([]event.Outbound{event.Bare(event.StreamStopped), event.New(event.LikeCount, 0)}, drain(viewerSink))
	_, ok := f.service.Broadcaster()
	req.False(ok)

	// And a new viewer finds an empty session
	_, lateSink := f.viewer(t, "v2", "")
	req.Equal([]event.Outbound{event.New(event.LikeCount, 0)}, drain(lateSink))
}

func TestLivestreamService_Viewer_Disconnect(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newLivestreamFixture()
	_, adminSink := f.broadcaster(t, "b1")
	v1, _ := f.viewer(t, "v1", "")
	f.viewer(t, "v2", "")
	drain(adminSink)

	f.service.Disconnect(ctx, v1)

	req.Equal([]event.Outbound{
		event.New(event.ClientDisconnected, event.ClientRef{ClientID: "v1"}),
		event.New(event.ClientCount, 1),
	}, drain(adminSink))

	// A connection that never joined changes nothing
	stranger, _ := f.connect("s1", "u1", false)
	f.service.Disconnect(ctx, stranger)
	req.Empty(drain(adminSink))
}

func TestLivestreamService_Broadcaster_Only(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newLivestreamFixture()
	customer, _ := f.connect("c1", "u1", false)

	req.ErrorIs(f.service.AdminJoin(ctx, customer), errors.ErrForbidden)
	req.ErrorIs(f.service.StartStream(ctx, customer), errors.ErrForbidden)
	req.ErrorIs(f.service.StopStream(ctx, customer), errors.ErrForbidden)
	req.ErrorIs(f.service.HighlightProduct(ctx, customer, json.RawMessage(`{}`)), errors.ErrForbidden)
	req.False(customer.IsBroadcaster)
}

func TestLivestreamService_Comments(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newLivestreamFixture()
	_, adminSink := f.broadcaster(t, "b1")
	viewer, viewerSink := f.viewer(t, "v1", "Lan")
	drain(viewerSink)
	drain(adminSink)

	req.NoError(f.service.SendComment(ctx, viewer, "Đẹp quá"))

	for _, events := range [][]event.Outbound{drain(viewerSink), drain(adminSink)} {
		req.Len(events, 1)
		comment, ok := events[0].Data.(event.Comment)
		req.True(ok)
		req.Equal("Lan", comment.Username)
		req.Equal("Đẹp quá", comment.Text)
		req.NotZero(comment.Timestamp)
	}
}
