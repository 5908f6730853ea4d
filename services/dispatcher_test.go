package services

import (
	"context"
	"encoding/json"
	"shop-relay/domain"
	"shop-relay/domain/event"
	"shop-relay/errors"
	"shop-relay/mocks"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newDispatcher(f livestreamFixture, chat IChatService) *Dispatcher {
	signaling := NewSignalingService(discardLogger(), f.router, f.service)
	return NewDispatcher(discardLogger(), f.router, chat, f.service, signaling, f.metrics)
}

func failure(t *testing.T, events []event.Outbound) event.ErrorPayload {
	t.Helper()
	require.Len(t, events, 1)
	require.Equal(t, event.Error, events[0].Name)
	payload, ok := events[0].Data.(event.ErrorPayload)
	require.True(t, ok)
	return payload
}

func TestDispatcher_Chat_Events(t *testing.T) {
	ctx := context.Background()

	t.Run("should decode join and privateMessage", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newLivestreamFixture()
		chat := mocks.NewMockIChatService(ctrl)
		dispatcher := newDispatcher(f, chat)
		u1, u1Sink := f.connect("c-u1", "u1", false)

		chat.EXPECT().OnJoin(gomock.Any(), u1, event.JoinPayload{UserID: "u1"}).Return(nil).Times(1)
		chat.EXPECT().
			OnSend(gomock.Any(), u1, domain.ChatMessage{Sender: "u1", Receiver: domain.AdminIdentity, Message: "hi"}).
			Return(domain.ChatMessage{}, nil).Times(1)

		dispatcher.Dispatch(ctx, u1, event.Inbound{Name: event.Join, Data: json.RawMessage(`{"userId":"u1"}`)})
		dispatcher.Dispatch(ctx, u1, event.Inbound{Name: event.PrivateMessage, Data: json.RawMessage(`{"sender":"u1","receiver":"admin","message":"hi"}`)})

		req.Empty(drain(u1Sink))
	})

	t.Run("should answer a failed send with an error event", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newLivestreamFixture()
		chat := mocks.NewMockIChatService(ctrl)
		dispatcher := newDispatcher(f, chat)
		u1, u1Sink := f.connect("c-u1", "u1", false)

		chat.EXPECT().OnSend(gomock.Any(), u1, gomock.Any()).Return(domain.ChatMessage{}, errors.ErrPersistFailed).Times(1)

		dispatcher.Dispatch(ctx, u1, event.Inbound{Name: event.PrivateMessage, Data: json.RawMessage(`{"sender":"u1","receiver":"admin","message":"hi"}`)})

		payload := failure(t, drain(u1Sink))
		req.Equal(event.PrivateMessage, payload.Event)
		req.Contains(payload.Message, errors.ErrPersistFailed.Error())
	})

	t.Run("should reject malformed payloads before the chat relay", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newLivestreamFixture()
		dispatcher := newDispatcher(f, mocks.NewMockIChatService(ctrl))
		u1, u1Sink := f.connect("c-u1", "u1", false)

		for _, data := range []string{``, `{"userId":`, `{"userId":""}`, `[1,2]`} {
			dispatcher.Dispatch(ctx, u1, event.Inbound{Name: event.Join, Data: json.RawMessage(data)})
			payload := failure(t, drain(u1Sink))
			req.Equal(event.Join, payload.Event, data)
		}
	})

	t.Run("should refuse chat to tokenless connections", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newLivestreamFixture()
		dispatcher := newDispatcher(f, mocks.NewMockIChatService(ctrl))
		guest, guestSink := f.connect("c-guest", "", false)

		dispatcher.Dispatch(ctx, guest, event.Inbound{Name: event.Join, Data: json.RawMessage(`{"userId":"u1"}`)})

		failure(t, drain(guestSink))
	})
}

func TestDispatcher_Livestream_Events(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()
	f := newLivestreamFixture()
	dispatcher := newDispatcher(f, mocks.NewMockIChatService(ctrl))

	admin, adminSink := f.connect("b1", domain.AdminIdentity, false)
	viewer, viewerSink := f.connect("v1", "", false)

	dispatcher.Dispatch(ctx, admin, event.Inbound{Name: event.AdminJoin})
	dispatcher.Dispatch(ctx, viewer, event.Inbound{Name: event.JoinLivestream, Data: json.RawMessage(`{"username":"Lan"}`)})
	dispatcher.Dispatch(ctx, admin, event.Inbound{Name: event.AdminStartStream})
	dispatcher.Dispatch(ctx, viewer, event.Inbound{Name: event.ClientReady})
	dispatcher.Dispatch(ctx, admin, event.Inbound{Name: event.HighlightProduct, Data: json.RawMessage(`{"name":"Áo"}`)})
	dispatcher.Dispatch(ctx, viewer, event.Inbound{Name: event.SendLike})
	dispatcher.Dispatch(ctx, viewer, event.Inbound{Name: event.SendComment, Data: json.RawMessage(`{"text":"Đẹp"}`)})

	req.Equal([]string{
		event.LikeCount, event.StreamStarted, event.ProductHighlighted, event.LikeCount, event.NewComment,
	}, names(drain(viewerSink)))
	req.Equal([]string{
		event.ClientCount, event.ClientReady, event.ProductHighlighted, event.LikeCount, event.NewComment,
	}, names(drain(adminSink)))

	// A viewer cannot drive the stream
	dispatcher.Dispatch(ctx, viewer, event.Inbound{Name: event.AdminStopStream})
	req.Equal(event.AdminStopStream, failure(t, drain(viewerSink)).Event)

	dispatcher.Dispatch(ctx, viewer, event.Inbound{Name: "dance"})
	req.Equal("dance", failure(t, drain(viewerSink)).Event)

	// Signals go through the relay
	dispatcher.Dispatch(ctx, viewer, event.Inbound{Name: event.Signal, Data: json.RawMessage(`{"answer":{"sdp":"v=0"},"toAdmin":true}`)})
	req.Equal([]string{event.Signal}, names(drain(adminSink)))

	dispatcher.Disconnect(ctx, admin)
	req.Equal([]string{event.StreamStopped, event.LikeCount}, names(drain(viewerSink)))
}
