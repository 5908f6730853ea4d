package services

import (
	"io"
	"log/slog"
	"shop-relay/domain"
	"shop-relay/domain/event"
	"shop-relay/observability"
	"shop-relay/repositories"
	"shop-relay/runtime"
	"shop-relay/sink"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// relay wires a real registry and router, with one channel sink per test connection.
type relay struct {
	registry *runtime.Registry
	router   *runtime.Router
	metrics  *observability.Metrics
}

func newRelay() *relay {
	registry := runtime.NewRegistry()
	return &relay{
		registry: registry,
		router:   runtime.NewRouter(discardLogger(), registry, nil, "node-test"),
		metrics:  observability.NewTestMetrics(),
	}
}

func (r *relay) connect(connID, identity string, anonymous bool) (*domain.Participant, *sink.ChannelSink) {
	s := sink.NewChannelSink(64)
	r.registry.Register(connID, s)
	return domain.NewParticipant(connID, identity, anonymous), s
}

func drain(s *sink.ChannelSink) []event.Outbound {
	var events []event.Outbound
	for {
		select {
		case e := <-s.Events():
			events = append(events, e)
		default:
			return events
		}
	}
}

func names(events []event.Outbound) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Name)
	}
	return out
}

func newMessageRepository(t *testing.T) repositories.MessageRepository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repositories.NewMessageRepository(db, discardLogger(), nil)
}
