package runtime

import (
	"context"
	"log/slog"
	"shop-relay/contract"
	"shop-relay/domain"
	"shop-relay/domain/event"
)

// Router is the Room Router. It delivers to local connections through the registry and,
// when a backplane is configured, republishes every delivery for the other processes.
type Router struct {
	log       *slog.Logger
	registry  contract.IRegistry
	backplane contract.Backplane
	nodeID    string
}

var _ contract.IRouter = (*Router)(nil)

// NewRouter builds a router. backplane may be nil for a single process deployment.
func NewRouter(log *slog.Logger, registry contract.IRegistry, backplane contract.Backplane, nodeID string) *Router {
	return &Router{log: log, registry: registry, backplane: backplane, nodeID: nodeID}
}

// Broadcast delivers e to every local member of roomID and returns how many accepted it.
// A room without members is a silent no-op.
func (r *Router) Broadcast(ctx context.Context, roomID domain.RoomID, e event.Outbound) int {
	delivered := r.deliverToRoom(ctx, roomID, e)
	r.publish(ctx, contract.Envelope{Origin: r.nodeID, Room: roomID.String(), Event: e})
	return delivered
}

// EmitTo delivers e to a single connection. It returns false when the connection is not
// hosted by this process; the event is then forwarded to the backplane, if any.
func (r *Router) EmitTo(ctx context.Context, connID string, e event.Outbound) bool {
	if connID == "" {
		return false
	}
	if sink, ok := r.registry.Sink(connID); ok {
		r.consume(ctx, connID, sink, e)
		return true
	}
	r.publish(ctx, contract.Envelope{Origin: r.nodeID, ConnID: connID, Event: e})
	return false
}

// Deliver hands an envelope received from the backplane to local connections.
// Envelopes published by this process were already delivered and are ignored.
func (r *Router) Deliver(ctx context.Context, env contract.Envelope) {
	if env.Origin == r.nodeID {
		return
	}
	if env.ConnID != "" {
		if sink, ok := r.registry.Sink(env.ConnID); ok {
			r.consume(ctx, env.ConnID, sink, env.Event)
		}
		return
	}
	roomID, err := domain.ParseRoomID(env.Room)
	if err != nil {
		r.log.Warn("Dropping backplane envelope", "room", env.Room, "error", err)
		return
	}
	r.deliverToRoom(ctx, roomID, env.Event)
}

func (r *Router) deliverToRoom(ctx context.Context, roomID domain.RoomID, e event.Outbound) int {
	delivered := 0
	for _, sink := range r.registry.SinksForRoom(roomID) {
		if err := sink.Consume(ctx, e); err != nil {
			r.log.Debug("Event not delivered", "room", roomID.String(), "event", e.Name, "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

func (r *Router) consume(ctx context.Context, connID string, sink contract.EventSink, e event.Outbound) {
	if err := sink.Consume(ctx, e); err != nil {
		r.log.Debug("Event not delivered", "conn_id", connID, "event", e.Name, "error", err)
	}
}

func (r *Router) publish(ctx context.Context, env contract.Envelope) {
	if r.backplane == nil {
		return
	}
	if err := r.backplane.Publish(ctx, env); err != nil {
		r.log.Warn("Backplane publish failed", "event", env.Event.Name, "error", err)
	}
}
