package services

import (
	"context"
	"shop-relay/ai"
	"shop-relay/contract"
	"shop-relay/domain"
	"shop-relay/domain/event"
	"shop-relay/errors"
	"shop-relay/keywords"
	"shop-relay/mocks"
	"shop-relay/observability"
	"shop-relay/repositories"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type scheduled struct {
	due        time.Time
	deliveries []contract.Delivery
}

// RecordingScheduler keeps every planned delivery instead of waiting for it.
type RecordingScheduler struct {
	mu    sync.Mutex
	calls []scheduled
}

func (s *RecordingScheduler) Schedule(_ context.Context, due time.Time, deliveries ...contract.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, scheduled{due: due, deliveries: deliveries})
	return nil
}

func (s *RecordingScheduler) Calls() []scheduled {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]scheduled(nil), s.calls...)
}

func newBotService(t *testing.T, repository repositories.IMessageRepository, responder ai.IResponder, scheduler contract.Scheduler, now time.Time) *BotService {
	t.Helper()
	handoff, err := keywords.NewHandoffMatcher()
	require.NoError(t, err)
	bot := NewBotService(discardLogger(), repository, responder, handoff, scheduler, observability.NewTestMetrics(), 1)
	bot.now = func() time.Time { return now }
	return bot
}

func botMessages(history []domain.ChatMessage) []domain.ChatMessage {
	var out []domain.ChatMessage
	for _, m := range history {
		if m.Sender == domain.BotIdentity {
			out = append(out, m)
		}
	}
	return out
}

func TestBotService_Handle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	userRoom, _ := domain.UserRoom("u1")

	store := func(t *testing.T, repository repositories.IMessageRepository, messages ...domain.ChatMessage) domain.ChatMessage {
		t.Helper()
		var last domain.ChatMessage
		for _, m := range messages {
			stored, err := repository.Store(ctx, m)
			require.NoError(t, err)
			last = stored
		}
		return last
	}

	t.Run("should reply with generated text after the delay", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repository := newMessageRepository(t)
		responder := mocks.NewMockIResponder(ctrl)
		scheduler := &RecordingScheduler{}
		bot := newBotService(t, repository, responder, scheduler, now)

		// Given a first message without any admin activity
		incoming := store(t, repository, domain.ChatMessage{Sender: "u1", Receiver: domain.AdminIdentity, Message: "hi", Timestamp: now})
		responder.EXPECT().Reply(gomock.Any(), "hi", gomock.Len(1)).Return("Dạ chào bạn, shop có thể giúp gì ạ?", nil).Times(1)

		// When
		outcome := bot.Handle(ctx, incoming)

		// Then a bot message is persisted and planned for the user and admin rooms
		req.Equal(observability.BotReplied, outcome)
		calls := scheduler.Calls()
		req.Len(calls, 1)
		req.True(now.Add(domain.BotReplyDelay).Equal(calls[0].due))
		req.Len(calls[0].deliveries, 2)
		req.Equal(userRoom, calls[0].deliveries[0].Room)
		req.Equal(domain.AdminRoom(), calls[0].deliveries[1].Room)

		reply, ok := calls[0].deliveries[0].Event.Data.(domain.ChatMessage)
		req.True(ok)
		req.Equal(domain.BotIdentity, reply.Sender)
		req.Equal("u1", reply.Receiver)
		req.NotEmpty(reply.ID)

		history, err := repository.History(ctx, "u1")
		req.NoError(err)
		req.Len(history, 2)
		req.Equal(reply, history[1])
	})

	t.Run("should hand off once even while an admin is active", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repository := newMessageRepository(t)
		scheduler := &RecordingScheduler{}
		bot := newBotService(t, repository, mocks.NewMockIResponder(ctrl), scheduler, now)

		// Given the admin wrote five minutes ago and the customer asks for a human
		incoming := store(t, repository,
			domain.ChatMessage{Sender: domain.AdminIdentity, Receiver: "u1", Message: "Chào bạn", Timestamp: now.Add(-5 * time.Minute)},
			domain.ChatMessage{Sender: "u1", Receiver: domain.AdminIdentity, Message: "Cho mình gặp nhân viên", Timestamp: now},
		)

		// When
		outcome := bot.Handle(ctx, incoming)

		// Then exactly one handoff message goes to both rooms, followed by the admin notification
		req.Equal(observability.BotHandoff, outcome)
		calls := scheduler.Calls()
		req.Len(calls, 1)
		deliveries := calls[0].deliveries
		req.Len(deliveries, 3)
		req.Equal(userRoom, deliveries[0].Room)
		req.Equal(domain.AdminRoom(), deliveries[1].Room)
		req.Equal(domain.AdminRoom(), deliveries[2].Room)
		req.Equal(event.AdminNotification, deliveries[2].Event.Name)
		req.Equal(event.AdminNotice{UserID: "u1", Message: domain.HandoffAdminNotice}, deliveries[2].Event.Data)

		history, err := repository.History(ctx, "u1")
		req.NoError(err)
		replies := botMessages(history)
		req.Len(replies, 1)
		req.Equal(domain.HandoffReply, replies[0].Message)
	})

	t.Run("should stay quiet while an admin answered within the window", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repository := newMessageRepository(t)
		scheduler := &RecordingScheduler{}
		bot := newBotService(t, repository, mocks.NewMockIResponder(ctrl), scheduler, now)

		incoming := store(t, repository,
			domain.ChatMessage{Sender: domain.AdminIdentity, Receiver: "u1", Message: "Shop đây ạ", Timestamp: now.Add(-29 * time.Minute)},
			domain.ChatMessage{Sender: "u1", Receiver: domain.AdminIdentity, Message: "Còn size M không?", Timestamp: now},
		)

		req.Equal(observability.BotSuppressed, bot.Handle(ctx, incoming))
		req.Empty(scheduler.Calls())

		history, err := repository.History(ctx, "u1")
		req.NoError(err)
		req.Empty(botMessages(history))
	})

	t.Run("should answer again once the admin window is over", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repository := newMessageRepository(t)
		responder := mocks.NewMockIResponder(ctrl)
		scheduler := &RecordingScheduler{}
		bot := newBotService(t, repository, responder, scheduler, now)

		incoming := store(t, repository,
			domain.ChatMessage{Sender: domain.AdminIdentity, Receiver: "u1", Message: "Shop đây ạ", Timestamp: now.Add(-31 * time.Minute)},
			domain.ChatMessage{Sender: "u1", Receiver: domain.AdminIdentity, Message: "Còn size M không?", Timestamp: now},
		)
		responder.EXPECT().Reply(gomock.Any(), "Còn size M không?", gomock.Len(2)).Return("Dạ còn ạ", nil).Times(1)

		req.Equal(observability.BotReplied, bot.Handle(ctx, incoming))
		req.Len(scheduler.Calls(), 1)
	})

	t.Run("should send nothing when generation fails", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repository := newMessageRepository(t)
		responder := mocks.NewMockIResponder(ctrl)
		scheduler := &RecordingScheduler{}
		bot := newBotService(t, repository, responder, scheduler, now)

		incoming := store(t, repository, domain.ChatMessage{Sender: "u1", Receiver: domain.AdminIdentity, Message: "hi", Timestamp: now})
		responder.EXPECT().Reply(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.ErrGenerationQuota).Times(1)

		req.Equal(observability.BotFailed, bot.Handle(ctx, incoming))
		req.Empty(scheduler.Calls())

		history, err := repository.History(ctx, "u1")
		req.NoError(err)
		req.Len(history, 1)
	})

	t.Run("should ignore messages not written by a customer to the admin", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		scheduler := &RecordingScheduler{}
		bot := newBotService(t, mocks.NewMockIMessageRepository(ctrl), mocks.NewMockIResponder(ctrl), scheduler, now)

		req.Equal(observability.BotSuppressed, bot.Handle(ctx, domain.ChatMessage{Sender: domain.AdminIdentity, Receiver: "u1", Message: "hi", Timestamp: now}))
		req.Empty(scheduler.Calls())
	})
}

func TestBotService_Submit(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()
	bot := newBotService(t, mocks.NewMockIMessageRepository(ctrl), mocks.NewMockIResponder(ctrl), &RecordingScheduler{}, time.Now())

	message := domain.ChatMessage{Sender: "u1", Receiver: domain.AdminIdentity, Message: "hi"}

	// The queue holds a single job
	req.True(bot.Submit(ctx, message))
	req.False(bot.Submit(ctx, message))
	req.False(bot.Submit(ctx, domain.ChatMessage{Sender: domain.AdminIdentity, Receiver: "u1", Message: "hi"}))

	req.Equal(message, <-bot.Jobs())
}
