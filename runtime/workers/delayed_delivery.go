package workers

import (
	"context"
	"log/slog"
	"shop-relay/contract"
	"time"
)

type scheduled struct {
	due        time.Time
	deliveries []contract.Delivery
}

// DelayedDelivery broadcasts bot messages once their reply delay has elapsed.
// Deliveries are scheduled with a constant delay, so the queue is already sorted by due time
// and a single goroutine can wait for the head of the queue.
// A disconnect of the recipient does not cancel a scheduled delivery.
type DelayedDelivery struct {
	log    *slog.Logger
	router contract.IRouter
	queue  chan scheduled
}

var (
	_ contract.Worker    = (*DelayedDelivery)(nil)
	_ contract.Scheduler = (*DelayedDelivery)(nil)
)

func NewDelayedDelivery(log *slog.Logger, router contract.IRouter, size int) *DelayedDelivery {
	return &DelayedDelivery{log: log, router: router, queue: make(chan scheduled, size)}
}

// Schedule blocks while the queue is full, until ctx is done.
func (d *DelayedDelivery) Schedule(ctx context.Context, due time.Time, deliveries ...contract.Delivery) error {
	if len(deliveries) == 0 {
		return nil
	}
	select {
	case d.queue <- scheduled{due: due, deliveries: deliveries}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *DelayedDelivery) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.log.Debug("Stopping delayed delivery", "pending", len(d.queue))
			return nil
		case item := <-d.queue:
			if wait := time.Until(item.due); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return nil
				case <-timer.C:
				}
			}
			for _, delivery := range item.deliveries {
				d.router.Broadcast(ctx, delivery.Room, delivery.Event)
			}
		}
	}
}

// Len is the number of pending deliveries.
func (d *DelayedDelivery) Len() int { return len(d.queue) }
