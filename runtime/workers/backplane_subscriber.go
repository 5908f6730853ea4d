package workers

import (
	"context"
	"log/slog"
	"shop-relay/contract"
)

// EnvelopeDeliverer hands an envelope received from another process to local connections.
type EnvelopeDeliverer interface {
	Deliver(ctx context.Context, env contract.Envelope)
}

// BackplaneSubscriber relays the broadcasts published by the other processes.
// Subscribe returning an error (lost redis connection) makes the supervisor restart it.
type BackplaneSubscriber struct {
	log       *slog.Logger
	backplane contract.Backplane
	router    EnvelopeDeliverer
}

func NewBackplaneSubscriber(log *slog.Logger, backplane contract.Backplane, router EnvelopeDeliverer) *BackplaneSubscriber {
	return &BackplaneSubscriber{log: log, backplane: backplane, router: router}
}

func (w *BackplaneSubscriber) Run(ctx context.Context) error {
	w.log.Info("Subscribing to the backplane")
	err := w.backplane.Subscribe(ctx, w.router.Deliver)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
