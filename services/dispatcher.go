package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"shop-relay/auth"
	"shop-relay/contract"
	"shop-relay/domain"
	"shop-relay/domain/event"
	"shop-relay/errors"
	"shop-relay/observability"
)

// Dispatcher decodes inbound frames of one connection and routes them to the chat relay,
// the livestream coordinator or the signaling relay. It is called sequentially per connection.
type Dispatcher struct {
	log        *slog.Logger
	router     contract.IRouter
	chat       IChatService
	livestream *LivestreamService
	signaling  *SignalingService
	metrics    *observability.Metrics
}

func NewDispatcher(
	log *slog.Logger,
	router contract.IRouter,
	chat IChatService,
	livestream *LivestreamService,
	signaling *SignalingService,
	metrics *observability.Metrics,
) *Dispatcher {
	return &Dispatcher{log: log, router: router, chat: chat, livestream: livestream, signaling: signaling, metrics: metrics}
}

// Dispatch handles one inbound event. A rejected event is answered with an error event
// to the sender only.
func (d *Dispatcher) Dispatch(ctx context.Context, p *domain.Participant, in event.Inbound) {
	d.metrics.InboundEvents.WithLabelValues(metricLabel(in.Name)).Inc()
	if err := d.dispatch(ctx, p, in); err != nil {
		d.metrics.RejectedEvents.WithLabelValues(metricLabel(in.Name)).Inc()
		d.log.Debug("Inbound event rejected", "conn_id", p.ConnID, "event", in.Name, "error", err)
		d.router.EmitTo(ctx, p.ConnID, event.Failure(in.Name, err))
	}
}

// Disconnect releases the livestream role of a closing connection.
func (d *Dispatcher) Disconnect(ctx context.Context, p *domain.Participant) {
	d.livestream.Disconnect(ctx, p)
}

func (d *Dispatcher) dispatch(ctx context.Context, p *domain.Participant, in event.Inbound) error {
	switch in.Name {
	case event.Join:
		var payload event.JoinPayload
		if err := decode(in.Data, &payload); err != nil {
			return err
		}
		if err := chatAllowed(p); err != nil {
			return err
		}
		return d.chat.OnJoin(ctx, p, payload)

	case event.PrivateMessage:
		var message domain.ChatMessage
		if err := decode(in.Data, &message); err != nil {
			return err
		}
		if err := chatAllowed(p); err != nil {
			return err
		}
		_, err := d.chat.OnSend(ctx, p, message)
		return err

	case event.AdminJoin:
		return d.livestream.AdminJoin(ctx, p)

	case event.JoinLivestream:
		var payload event.JoinLivestreamPayload
		if err := decodeOptional(in.Data, &payload); err != nil {
			return err
		}
		return d.livestream.JoinLivestream(ctx, p, payload.Username)

	case event.ClientReady:
		return d.livestream.ClientReady(ctx, p)

	case event.AdminStartStream:
		return d.livestream.StartStream(ctx, p)

	case event.AdminStopStream:
		return d.livestream.StopStream(ctx, p)

	case event.HighlightProduct:
		var payload event.HighlightPayload
		if err := json.Unmarshal(in.Data, &payload); err != nil {
			return fmt.Errorf("%w: %w", errors.ErrMalformedPayload, err)
		}
		product := payload.Product
		// The original client sends the product object itself
		if len(product) == 0 {
			product = in.Data
		}
		return d.livestream.HighlightProduct(ctx, p, product)

	case event.SendComment:
		var payload event.CommentPayload
		if err := decode(in.Data, &payload); err != nil {
			return err
		}
		return d.livestream.SendComment(ctx, p, payload.Text)

	case event.SendLike:
		return d.livestream.SendLike(ctx, p)

	case event.Signal:
		var payload event.SignalPayload
		if err := json.Unmarshal(in.Data, &payload); err != nil {
			return fmt.Errorf("%w: %w", errors.ErrMalformedPayload, err)
		}
		d.signaling.Relay(ctx, p, payload)
		return nil
	}
	return fmt.Errorf("%w: %q", errors.ErrUnknownEvent, in.Name)
}

// chatAllowed rejects tokenless connections outside development mode.
func chatAllowed(p *domain.Participant) error {
	if p.Anonymous || p.Identity != "" {
		return nil
	}
	return fmt.Errorf("%w: chat requires an authenticated connection", errors.ErrForbidden)
}

func decode(data json.RawMessage, payload any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing data", errors.ErrMalformedPayload)
	}
	if err := json.Unmarshal(data, payload); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrMalformedPayload, err)
	}
	return auth.ValidatePayload(payload)
}

// decodeOptional accepts an absent payload.
func decodeOptional(data json.RawMessage, payload any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return decode(data, payload)
}

// metricLabel bounds the label cardinality to the known events.
func metricLabel(name string) string {
	switch name {
	case event.Join, event.PrivateMessage, event.AdminJoin, event.JoinLivestream, event.ClientReady,
		event.AdminStartStream, event.AdminStopStream, event.HighlightProduct, event.SendComment,
		event.SendLike, event.Signal:
		return name
	}
	return "unknown"
}
