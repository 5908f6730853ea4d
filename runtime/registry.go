package runtime

import (
	"fmt"
	"shop-relay/contract"
	"shop-relay/domain"
	"shop-relay/errors"
	"sync"
)

type Set map[string]struct{}

// Membership is what the registry knows about one connection inside one room.
type Membership struct {
	Role     domain.Role
	Identity string
}

type session struct {
	sink  contract.EventSink
	rooms map[domain.RoomID]Membership
}

// Registry is the Connection Registry: every live connection and the rooms it belongs to.
// It never delivers anything by itself; the Router reads sinks from it.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]*session   // map connection -> sink and rooms
	roomMembers map[domain.RoomID]Set // map room to connections
}

var _ contract.IRegistry = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		sessions:    make(map[string]*session),
		roomMembers: make(map[domain.RoomID]Set),
	}
}

// Register makes a connection addressable. Registering an existing id swaps its sink
// and keeps its memberships.
func (r *Registry) Register(connID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[connID]; ok {
		s.sink = sink
		return
	}
	r.sessions[connID] = &session{sink: sink, rooms: make(map[domain.RoomID]Membership)}
}

// Unregister removes the connection from every room and returns the rooms it left.
// No empty sets are left in the room map.
func (r *Registry) Unregister(connID string) []domain.RoomID {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return nil
	}
	delete(r.sessions, connID)

	left := make([]domain.RoomID, 0, len(s.rooms))
	for roomID := range s.rooms {
		r.removeMember(roomID, connID)
		left = append(left, roomID)
	}
	return left
}

// Join associates a registered connection with a room. Joining twice only refreshes
// the role and identity recorded for that room.
func (r *Registry) Join(connID string, roomID domain.RoomID, role domain.Role, identity string) error {
	if roomID.IsZero() {
		return errors.ErrInvalidRoom
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownConnection, connID)
	}
	s.rooms[roomID] = Membership{Role: role, Identity: identity}

	if _, ok := r.roomMembers[roomID]; !ok {
		r.roomMembers[roomID] = make(Set)
	}
	r.roomMembers[roomID][connID] = struct{}{}
	return nil
}

func (r *Registry) Leave(connID string, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[connID]; ok {
		delete(s.rooms, roomID)
	}
	r.removeMember(roomID, connID)
}

func (r *Registry) removeMember(roomID domain.RoomID, connID string) {
	if members, ok := r.roomMembers[roomID]; ok {
		delete(members, connID)

		// If no one is left in the room, remove the room entry entirely
		if len(members) == 0 {
			delete(r.roomMembers, roomID)
		}
	}
}

// SinksForRoom retrieves all active connections of a room.
// Returns nil if the room doesn't exist or has no members.
func (r *Registry) SinksForRoom(roomID domain.RoomID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return nil
	}
	sinks := make([]contract.EventSink, 0, len(members))
	for connID := range members {
		if s, exists := r.sessions[connID]; exists {
			sinks = append(sinks, s.sink)
		}
	}
	return sinks
}

func (r *Registry) Sink(connID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[connID]
	if !ok {
		return nil, false
	}
	return s.sink, true
}

// Membership returns how a connection joined a room.
func (r *Registry) Membership(connID string, roomID domain.RoomID) (Membership, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[connID]
	if !ok {
		return Membership{}, false
	}
	m, ok := s.rooms[roomID]
	return m, ok
}

func (r *Registry) Count(roomID domain.RoomID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.roomMembers[roomID])
}

func (r *Registry) Connections() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
