package websocket

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"shop-relay/auth"
	"shop-relay/domain"
	"shop-relay/domain/event"
	"shop-relay/observability"
	"shop-relay/runtime"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// RecordingHandler acknowledges every inbound event to its sender.
type RecordingHandler struct {
	mu           sync.Mutex
	registry     *runtime.Registry
	participants []domain.Participant
	disconnected []string
}

func (h *RecordingHandler) Dispatch(ctx context.Context, p *domain.Participant, in event.Inbound) {
	h.mu.Lock()
	h.participants = append(h.participants, *p)
	h.mu.Unlock()
	if sink, ok := h.registry.Sink(p.ConnID); ok {
		_ = sink.Consume(ctx, event.New("ack", in.Name))
	}
}

func (h *RecordingHandler) Disconnect(_ context.Context, p *domain.Participant) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disconnected = append(h.disconnected, p.ConnID)
}

func (h *RecordingHandler) Disconnected() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.disconnected)
}

func (h *RecordingHandler) Last() domain.Participant {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.participants[len(h.participants)-1]
}

type ackFrame struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

func startServer(t *testing.T, config Config) (*httptest.Server, *RecordingHandler, *runtime.Registry, auth.Tokens) {
	t.Helper()
	registry := runtime.NewRegistry()
	handler := &RecordingHandler{registry: registry}
	tokens := auth.NewTokens("test-secret")
	server := NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)), registry, handler, tokens, observability.NewTestMetrics(), config)
	httpServer := httptest.NewServer(server)
	t.Cleanup(func() {
		server.Shutdown()
		httpServer.Close()
	})
	return httpServer, handler, registry, tokens
}

func wsURL(server *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/?" + query
}

func TestServer_Round_Trip(t *testing.T) {
	req := require.New(t)
	server, handler, registry, tokens := startServer(t, Config{SendBufferSize: 8, MaxMessageSize: 4096})
	token, err := tokens.GenerateToken("staff-1", []string{"admin"}, time.Minute)
	req.NoError(err)

	conn, _, err := ws.DefaultDialer.Dial(wsURL(server, "token="+token), nil)
	req.NoError(err)

	// When the client sends an event
	req.NoError(conn.WriteJSON(event.Inbound{Name: event.SendLike}))

	// Then it is dispatched with the verified identity and answered on the same connection
	var ack ackFrame
	req.NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	req.NoError(conn.ReadJSON(&ack))
	req.Equal(ackFrame{Event: "ack", Data: event.SendLike}, ack)
	req.Equal(domain.AdminIdentity, handler.Last().Identity)
	req.False(handler.Last().Anonymous)

	// A frame that is not JSON gets an error event
	req.NoError(conn.WriteMessage(ws.TextMessage, []byte("not json")))
	var failure struct {
		Event string             `json:"event"`
		Data  event.ErrorPayload `json:"data"`
	}
	req.NoError(conn.ReadJSON(&failure))
	req.Equal(event.Error, failure.Event)

	// Closing the connection releases it
	req.NoError(conn.Close())
	req.Eventually(func() bool {
		return handler.Disconnected() == 1 && registry.Connections() == 0
	}, 5*time.Second, 20*time.Millisecond)
}

func TestServer_Identity(t *testing.T) {
	t.Run("should refuse an invalid token", func(t *testing.T) {
		req := require.New(t)
		server, _, _, _ := startServer(t, Config{SendBufferSize: 8})

		_, resp, err := ws.DefaultDialer.Dial(wsURL(server, "token=garbage"), nil)

		req.Error(err)
		req.NotNil(resp)
		req.Equal(http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("should accept a tokenless viewer", func(t *testing.T) {
		req := require.New(t)
		server, handler, _, _ := startServer(t, Config{SendBufferSize: 8})

		conn, _, err := ws.DefaultDialer.Dial(wsURL(server, ""), nil)
		req.NoError(err)
		defer func() { _ = conn.Close() }()

		req.NoError(conn.WriteJSON(event.Inbound{Name: event.ClientReady}))
		var ack ackFrame
		req.NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
		req.NoError(conn.ReadJSON(&ack))

		req.Empty(handler.Last().Identity)
		req.False(handler.Last().Anonymous)
	})

	t.Run("should mark tokenless connections anonymous in development mode", func(t *testing.T) {
		req := require.New(t)
		server, handler, _, _ := startServer(t, Config{SendBufferSize: 8, AllowAnonymous: true})

		conn, _, err := ws.DefaultDialer.Dial(wsURL(server, ""), nil)
		req.NoError(err)
		defer func() { _ = conn.Close() }()

		req.NoError(conn.WriteJSON(event.Inbound{Name: event.ClientReady}))
		var ack ackFrame
		req.NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
		req.NoError(conn.ReadJSON(&ack))

		req.True(handler.Last().Anonymous)
	})
}

func TestServer_Rate_Limit(t *testing.T) {
	req := require.New(t)
	server, _, _, _ := startServer(t, Config{SendBufferSize: 16, EventsPerSecond: 0.001, EventBurst: 2})

	conn, _, err := ws.DefaultDialer.Dial(wsURL(server, ""), nil)
	req.NoError(err)
	defer func() { _ = conn.Close() }()

	for range 5 {
		req.NoError(conn.WriteJSON(event.Inbound{Name: event.SendLike}))
	}

	// Only the burst is served
	req.NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	for range 2 {
		var ack ackFrame
		req.NoError(conn.ReadJSON(&ack))
	}
	req.NoError(conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond)))
	var extra ackFrame
	req.Error(conn.ReadJSON(&extra))
}
