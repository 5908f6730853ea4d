package services

import (
	"context"
	"log/slog"
	"shop-relay/contract"
	"shop-relay/domain"
	"shop-relay/domain/event"
)

// BroadcasterLocator knows which connection currently broadcasts.
type BroadcasterLocator interface {
	Broadcaster() (string, bool)
}

// SignalingService relays WebRTC negotiation between the broadcaster and each viewer.
// Payloads are forwarded as received; only the routing fields are read.
type SignalingService struct {
	log         *slog.Logger
	router      contract.IRouter
	broadcaster BroadcasterLocator
}

func NewSignalingService(log *slog.Logger, router contract.IRouter, broadcaster BroadcasterLocator) *SignalingService {
	return &SignalingService{log: log, router: router, broadcaster: broadcaster}
}

// Relay forwards a broadcaster signal to the viewer named by clientId, or a viewer signal
// flagged toAdmin to the current broadcaster. Anything else, or an absent target, is dropped.
// Only the connection currently holding the broadcaster role may address viewers.
func (s *SignalingService) Relay(ctx context.Context, p *domain.Participant, signal event.SignalPayload) bool {
	broadcaster, live := s.broadcaster.Broadcaster()
	current := live && broadcaster == p.ConnID

	switch {
	case current && signal.ClientID != "":
		delivered := s.router.EmitTo(ctx, signal.ClientID, event.New(event.Signal, event.ViewerSignal{
			Type:      signal.Type,
			Offer:     signal.Offer,
			Candidate: signal.Candidate,
		}))
		s.log.Debug("Broadcaster to viewer signal", "to", signal.ClientID, "delivered", delivered)
		return delivered
	case !p.IsBroadcaster && signal.ToAdmin:
		if !live {
			return false
		}
		delivered := s.router.EmitTo(ctx, broadcaster, event.New(event.Signal, event.BroadcasterSignal{
			Type:      signal.Type,
			Answer:    signal.Answer,
			Candidate: signal.Candidate,
			ClientID:  p.ConnID,
		}))
		s.log.Debug("Viewer to broadcaster signal", "from", p.ConnID, "delivered", delivered)
		return delivered
	}
	return false
}
