package websocket

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"shop-relay/auth"
	"shop-relay/contract"
	"shop-relay/domain"
	"shop-relay/domain/event"
	"shop-relay/errors"
	"shop-relay/observability"
	"shop-relay/sink"
	"sync"
	"time"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// EventHandler processes the inbound events of one connection, in the order they were read.
type EventHandler interface {
	Dispatch(ctx context.Context, p *domain.Participant, in event.Inbound)
	Disconnect(ctx context.Context, p *domain.Participant)
}

// TokenValidator verifies the token presented when a connection opens.
type TokenValidator interface {
	ValidateToken(token string) (*auth.CustomClaims, error)
}

type Config struct {
	SendBufferSize  int
	MaxMessageSize  int64
	EventsPerSecond float64
	EventBurst      int
	// AllowAnonymous lets tokenless connections claim any chat identity.
	AllowAnonymous bool
}

// Server upgrades HTTP requests to websocket connections and serves each of them
// with one read pump and one write pump.
type Server struct {
	log      *slog.Logger
	registry contract.IRegistry
	handler  EventHandler
	tokens   TokenValidator
	metrics  *observability.Metrics
	config   Config
	upgrader ws.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewServer(
	log *slog.Logger,
	registry contract.IRegistry,
	handler EventHandler,
	tokens TokenValidator,
	metrics *observability.Metrics,
	config Config,
) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		log:      log,
		registry: registry,
		handler:  handler,
		tokens:   tokens,
		metrics:  metrics,
		config:   config,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024 * 4,
			WriteBufferSize: 1024 * 4,
			// The shop front and the back-office are served from their own origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Participant builds the connection state from the request token.
// A request without token is accepted; an invalid token is not.
func (s *Server) Participant(r *http.Request, connID string) (*domain.Participant, error) {
	token := auth.TokenFromRequest(r)
	if token == "" {
		return domain.NewParticipant(connID, "", s.config.AllowAnonymous), nil
	}
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return domain.NewParticipant(connID, claims.Identity(), false), nil
}

// ServeHTTP blocks until the connection is closed.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, err := s.Participant(r, uuid.NewString())
	if err != nil {
		s.log.Debug("Connection refused", "remote", r.RemoteAddr, "error", err)
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	s.serve(conn, p)
}

// Shutdown closes every open connection and waits for their cleanup.
func (s *Server) Shutdown() {
	s.cancel()
	s.wg.Wait()
}

func (s *Server) serve(conn *ws.Conn, p *domain.Participant) {
	s.wg.Add(1)
	defer s.wg.Done()

	out := &countingSink{ChannelSink: sink.NewChannelSink(s.config.SendBufferSize), dropped: s.metrics.DroppedOutbound}
	s.registry.Register(p.ConnID, out)
	s.metrics.Connections.Inc()
	s.log.Info("Client connected", "conn_id", p.ConnID, "identity", p.Identity, "anonymous", p.Anonymous)

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	written := make(chan struct{})
	go func() {
		defer close(written)
		s.writePump(ctx, conn, out.ChannelSink)
	}()

	s.readPump(ctx, conn, p, out)

	rooms := s.registry.Unregister(p.ConnID)
	s.handler.Disconnect(context.WithoutCancel(ctx), p)
	out.Close()
	<-written
	s.metrics.Connections.Dec()
	s.log.Info("Client disconnected", "conn_id", p.ConnID, "rooms", len(rooms))
}

func (s *Server) readPump(ctx context.Context, conn *ws.Conn, p *domain.Participant, out contract.EventSink) {
	defer func() { _ = conn.Close() }()

	if s.config.MaxMessageSize > 0 {
		conn.SetReadLimit(s.config.MaxMessageSize)
	}
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	limit := rate.Limit(s.config.EventsPerSecond)
	if limit <= 0 {
		limit = rate.Inf
	}
	limiter := rate.NewLimiter(limit, s.config.EventBurst)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseGoingAway, ws.CloseNormalClosure, ws.CloseNoStatusReceived) {
				s.log.Debug("Read error", "conn_id", p.ConnID, "error", err)
			}
			return
		}
		if !limiter.Allow() {
			s.log.Warn("Rate limit exceeded, event dropped", "conn_id", p.ConnID)
			s.metrics.RejectedEvents.WithLabelValues("rate_limited").Inc()
			continue
		}

		var in event.Inbound
		if err := json.Unmarshal(data, &in); err != nil {
			_ = out.Consume(ctx, event.Failure("", fmt.Errorf("%w: %w", errors.ErrMalformedPayload, err)))
			continue
		}
		s.handler.Dispatch(ctx, p, in)
	}
}

// writePump is the only writer of conn. It ends when the sink is closed, a write fails
// or the server shuts down.
func (s *Server) writePump(ctx context.Context, conn *ws.Conn, out *sink.ChannelSink) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case e, ok := <-out.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(ws.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(e); err != nil {
				s.log.Debug("Write error", "event", e.Name, "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(ws.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			_ = conn.WriteControl(ws.CloseMessage,
				ws.FormatCloseMessage(ws.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		}
	}
}

type counter interface{ Inc() }

// countingSink counts the events dropped for a slow connection.
type countingSink struct {
	*sink.ChannelSink
	dropped counter
}

func (s *countingSink) Consume(ctx context.Context, e event.Outbound) error {
	err := s.ChannelSink.Consume(ctx, e)
	if stderrors.Is(err, errors.ErrSinkFull) {
		s.dropped.Inc()
	}
	return err
}
