package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"shop-relay/contract"
	"shop-relay/domain"
	"shop-relay/domain/event"
	"shop-relay/errors"
	"shop-relay/observability"
	"strings"
	"sync"
	"time"
)

// LivestreamService is the livestream session coordinator. It owns the single session;
// every operation mutates it and emits the resulting events while holding the lock,
// so viewers observe state changes in the order they happened.
type LivestreamService struct {
	mu       sync.Mutex
	session  *domain.LivestreamSession
	log      *slog.Logger
	registry contract.IRegistry
	router   contract.IRouter
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewLivestreamService(log *slog.Logger, registry contract.IRegistry, router contract.IRouter, metrics *observability.Metrics) *LivestreamService {
	return &LivestreamService{
		session:  domain.NewLivestreamSession(),
		log:      log,
		registry: registry,
		router:   router,
		metrics:  metrics,
		now:      time.Now,
	}
}

// canBroadcast reports whether p may drive the stream.
func canBroadcast(p *domain.Participant) bool {
	return p.Anonymous || p.IsAdmin()
}

// AdminJoin records p as the broadcaster. A later admin-join replaces it.
func (s *LivestreamService) AdminJoin(_ context.Context, p *domain.Participant) error {
	if !canBroadcast(p) {
		return errors.ErrForbidden
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if previous, ok := s.session.Broadcaster(); ok && previous != p.ConnID {
		s.log.Info("Broadcaster replaced", "previous", previous, "conn_id", p.ConnID)
	}
	s.session.SetBroadcaster(p.ConnID)
	p.IsBroadcaster = true
	s.log.Info("Broadcaster joined", "conn_id", p.ConnID)
	return nil
}

// JoinLivestream registers p as a viewer and syncs it with the current state:
// like count, highlighted product and stream-started when live.
func (s *LivestreamService) JoinLivestream(ctx context.Context, p *domain.Participant, username string) error {
	name := strings.TrimSpace(username)
	if name == "" {
		name = domain.DefaultViewerName
	}
	if err := s.registry.Join(p.ConnID, domain.LivestreamRoom(), domain.RoleViewer, name); err != nil {
		return err
	}
	p.DisplayName = name
	p.IsViewer = true

	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.session.AddViewer(p.ConnID, name)
	s.metrics.Viewers.Set(float64(count))
	s.router.EmitTo(ctx, p.ConnID, event.New(event.LikeCount, s.session.Likes()))
	if product, ok := s.session.Highlight(); ok {
		s.router.EmitTo(ctx, p.ConnID, event.New(event.ProductHighlighted, product))
	}
	if s.session.IsStreaming() {
		s.router.EmitTo(ctx, p.ConnID, event.Bare(event.StreamStarted))
	}
	s.toBroadcaster(ctx, event.New(event.ClientCount, count))
	s.log.Info("Viewer joined", "conn_id", p.ConnID, "username", name, "viewers", count)
	return nil
}

// ClientReady tells the broadcaster that viewer p waits for an offer.
func (s *LivestreamService) ClientReady(ctx context.Context, p *domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toBroadcaster(ctx, event.New(event.ClientReady, event.ClientRef{ClientID: p.ConnID, Username: p.DisplayName}))
	return nil
}

func (s *LivestreamService) StartStream(ctx context.Context, p *domain.Participant) error {
	if !canBroadcast(p) {
		return errors.ErrForbidden
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.Start()
	s.router.Broadcast(ctx, domain.LivestreamRoom(), event.Bare(event.StreamStarted))
	s.log.Info("Stream started", "viewers", s.session.ViewerCount())
	return nil
}

func (s *LivestreamService) StopStream(ctx context.Context, p *domain.Participant) error {
	if !canBroadcast(p) {
		return errors.ErrForbidden
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.Stop()
	s.metrics.Viewers.Set(0)
	s.broadcastReset(ctx)
	s.toBroadcaster(ctx, event.Bare(event.StreamStopped))
	s.toBroadcaster(ctx, event.New(event.LikeCount, 0))
	s.log.Info("Stream stopped")
	return nil
}

func (s *LivestreamService) HighlightProduct(ctx context.Context, p *domain.Participant, product json.RawMessage) error {
	if !canBroadcast(p) {
		return errors.ErrForbidden
	}
	if len(product) == 0 || string(product) == "null" {
		return errors.ErrMalformedPayload
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.SetHighlight(product)
	highlight, _ := s.session.Highlight()
	s.toEveryone(ctx, event.New(event.ProductHighlighted, highlight))
	return nil
}

// SendComment relays an ephemeral comment tagged with the viewer name and the server time.
func (s *LivestreamService) SendComment(ctx context.Context, p *domain.Participant, text string) error {
	comment := event.Comment{Username: p.DisplayName, Text: text, Timestamp: s.now().UnixMilli()}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toEveryone(ctx, event.New(event.NewComment, comment))
	return nil
}

// SendLike adds exactly one like, every click counts.
func (s *LivestreamService) SendLike(ctx context.Context, _ *domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.session.Like()
	s.metrics.Likes.Inc()
	s.toEveryone(ctx, event.New(event.LikeCount, total))
	return nil
}

// Disconnect handles the end of a connection. The current broadcaster leaving resets
// the whole session; a viewer leaving only updates the broadcaster.
func (s *LivestreamService) Disconnect(ctx context.Context, p *domain.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.IsBroadcaster(p.ConnID) {
		s.session.Release()
		s.metrics.Viewers.Set(0)
		s.broadcastReset(ctx)
		s.log.Info("Broadcaster disconnected, stream reset", "conn_id", p.ConnID)
		return
	}
	count, ok := s.session.RemoveViewer(p.ConnID)
	if !ok {
		return
	}
	s.metrics.Viewers.Set(float64(count))
	s.toBroadcaster(ctx, event.New(event.ClientDisconnected, event.ClientRef{ClientID: p.ConnID}))
	s.toBroadcaster(ctx, event.New(event.ClientCount, count))
	s.log.Info("Viewer left", "conn_id", p.ConnID, "viewers", count)
}

// Broadcaster returns the connection id of the current broadcaster.
func (s *LivestreamService) Broadcaster() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Broadcaster()
}

func (s *LivestreamService) Snapshot() domain.LivestreamSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Snapshot()
}

func (s *LivestreamService) broadcastReset(ctx context.Context) {
	s.router.Broadcast(ctx, domain.LivestreamRoom(), event.Bare(event.StreamStopped))
	s.router.Broadcast(ctx, domain.LivestreamRoom(), event.New(event.LikeCount, 0))
}

func (s *LivestreamService) toEveryone(ctx context.Context, e event.Outbound) {
	s.router.Broadcast(ctx, domain.LivestreamRoom(), e)
	s.toBroadcaster(ctx, e)
}

// toBroadcaster must be called with the lock held.
func (s *LivestreamService) toBroadcaster(ctx context.Context, e event.Outbound) {
	if connID, ok := s.session.Broadcaster(); ok {
		s.router.EmitTo(ctx, connID, e)
	}
}
