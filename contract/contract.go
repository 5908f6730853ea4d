//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"shop-relay/domain"
	"shop-relay/domain/event"
	"time"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is the write side of one live connection.
// Consume must not block: a slow client loses events instead of stalling the sender.
type EventSink interface {
	Consume(ctx context.Context, e event.Outbound) error
}

// IRegistry tracks live connections and their room memberships.
type IRegistry interface {
	Register(connID string, sink EventSink)
	Unregister(connID string) []domain.RoomID
	Join(connID string, roomID domain.RoomID, role domain.Role, identity string) error
	Leave(connID string, roomID domain.RoomID)
	SinksForRoom(roomID domain.RoomID) []EventSink
	Sink(connID string) (EventSink, bool)
	Count(roomID domain.RoomID) int
	Connections() int
}

// IRouter delivers events to rooms and connections, wherever they are hosted.
type IRouter interface {
	Broadcast(ctx context.Context, roomID domain.RoomID, e event.Outbound) int
	EmitTo(ctx context.Context, connID string, e event.Outbound) bool
}

// Envelope is an event travelling between processes through a Backplane.
// Exactly one of Room and ConnID is set.
type Envelope struct {
	Origin string         `json:"origin"`
	Room   string         `json:"room,omitempty"`
	ConnID string         `json:"conn_id,omitempty"`
	Event  event.Outbound `json:"event"`
}

// Backplane fans room broadcasts out to the other server processes.
type Backplane interface {
	Publish(ctx context.Context, env Envelope) error
	Subscribe(ctx context.Context, handle func(ctx context.Context, env Envelope)) error
	Close() error
}

// MessageSink receives every chat message once it is persisted.
type MessageSink interface {
	Consume(ctx context.Context, message domain.ChatMessage) error
}

// Delivery is one room broadcast planned for later.
type Delivery struct {
	Room  domain.RoomID
	Event event.Outbound
}

// Scheduler broadcasts deliveries once due has passed, in the order they were scheduled.
type Scheduler interface {
	Schedule(ctx context.Context, due time.Time, deliveries ...Delivery) error
}
