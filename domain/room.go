package domain

import (
	"fmt"
	"shop-relay/errors"
	"strings"
)

type roomKind uint8

const (
	adminRoom roomKind = iota + 1
	userRoom
	livestreamRoom
)

const (
	adminRoomName      = "admin"
	livestreamRoomName = "livestream"
	userRoomPrefix     = "user:"
)

// RoomID addresses a logical group of connections.
// It is one of AdminRoom, UserRoom(userID) or LivestreamRoom; the zero value is not a valid room.
type RoomID struct {
	kind   roomKind
	userID string
}

// AdminRoom is shared by every admin-side observer and receives all user to admin traffic.
func AdminRoom() RoomID { return RoomID{kind: adminRoom} }

// LivestreamRoom holds every viewer of the livestream.
func LivestreamRoom() RoomID { return RoomID{kind: livestreamRoom} }

// UserRoom is the private room of one customer, named after its own identity.
func UserRoom(userID string) (RoomID, error) {
	if strings.TrimSpace(userID) == "" {
		return RoomID{}, errors.ErrEmptyIdentity
	}
	if IsReserved(userID) {
		return RoomID{}, fmt.Errorf("%w: %q", errors.ErrReservedIdentity, userID)
	}
	return RoomID{kind: userRoom, userID: userID}, nil
}

// ChatRoomFor returns the room a chat message addressed to receiver must be delivered to.
func ChatRoomFor(receiver string) (RoomID, error) {
	if receiver == AdminIdentity {
		return AdminRoom(), nil
	}
	return UserRoom(receiver)
}

// ParseRoomID is the inverse of String.
func ParseRoomID(s string) (RoomID, error) {
	switch {
	case s == adminRoomName:
		return AdminRoom(), nil
	case s == livestreamRoomName:
		return LivestreamRoom(), nil
	case strings.HasPrefix(s, userRoomPrefix):
		return UserRoom(strings.TrimPrefix(s, userRoomPrefix))
	default:
		return RoomID{}, fmt.Errorf("%w: %q", errors.ErrInvalidRoom, s)
	}
}

func (r RoomID) IsZero() bool { return r.kind == 0 }

// UserID returns the owner of a private room.
func (r RoomID) UserID() (string, bool) {
	return r.userID, r.kind == userRoom
}

func (r RoomID) String() string {
	switch r.kind {
	case adminRoom:
		return adminRoomName
	case livestreamRoom:
		return livestreamRoomName
	case userRoom:
		return userRoomPrefix + r.userID
	default:
		return "invalid"
	}
}
