package workers

import (
	"context"
	"shop-relay/contract"
	"shop-relay/domain"
	"shop-relay/domain/event"
	"shop-relay/mocks"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestDelayedDelivery(t *testing.T) {
	t.Run("should broadcast only after the due time, in order", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		router := mocks.NewMockIRouter(ctrl)
		delivery := NewDelayedDelivery(discardLogger(), router, 8)
		userRoom, err := domain.UserRoom("u1")
		req.NoError(err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = delivery.Run(ctx) }()

		delivered := make(chan time.Time, 3)
		gomock.InOrder(
			router.EXPECT().Broadcast(gomock.Any(), userRoom, event.Bare("first")).
				DoAndReturn(func(context.Context, domain.RoomID, event.Outbound) int { delivered <- time.Now(); return 1 }),
			router.EXPECT().Broadcast(gomock.Any(), domain.AdminRoom(), event.Bare("first")).
				DoAndReturn(func(context.Context, domain.RoomID, event.Outbound) int { delivered <- time.Now(); return 1 }),
			router.EXPECT().Broadcast(gomock.Any(), userRoom, event.Bare("second")).
				DoAndReturn(func(context.Context, domain.RoomID, event.Outbound) int { delivered <- time.Now(); return 1 }),
		)

		start := time.Now()
		due := start.Add(50 * time.Millisecond)
		req.NoError(delivery.Schedule(ctx, due,
			contract.Delivery{Room: userRoom, Event: event.Bare("first")},
			contract.Delivery{Room: domain.AdminRoom(), Event: event.Bare("first")},
		))
		req.NoError(delivery.Schedule(ctx, due, contract.Delivery{Room: userRoom, Event: event.Bare("second")}))

		for i := 0; i < 3; i++ {
			select {
			case at := <-delivered:
				req.False(at.Before(due))
			case <-time.After(time.Second):
				req.Fail("delivery not performed")
			}
		}
	})

	t.Run("should give up scheduling when the context is done and the queue is full", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		delivery := NewDelayedDelivery(discardLogger(), mocks.NewMockIRouter(ctrl), 1)
		one := contract.Delivery{Room: domain.AdminRoom(), Event: event.Bare("x")}

		req.NoError(delivery.Schedule(context.Background(), time.Now(), one))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		req.ErrorIs(delivery.Schedule(ctx, time.Now(), one), context.Canceled)
		req.Equal(1, delivery.Len())
	})
}
