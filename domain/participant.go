// Package domain contains core concepts of the chat and livestream system.
// This file defines identities, roles and the per-connection state.
// No runtime, network, or UI logic should be added here.
package domain

const (
	AdminIdentity = "admin"
	BotIdentity   = "bot"

	// DefaultViewerName is used when a viewer joins the livestream without a display name.
	DefaultViewerName = "Khách"
)

type Role string

const (
	RoleUser        Role = "user"
	RoleAdmin       Role = "admin"
	RoleViewer      Role = "viewer"
	RoleBroadcaster Role = "broadcaster"
)

// IsReserved reports whether identity is one of the two service identities.
func IsReserved(identity string) bool {
	return identity == AdminIdentity || identity == BotIdentity
}

// IsCustomer reports whether identity belongs to a regular shop user.
func IsCustomer(identity string) bool {
	return identity != "" && !IsReserved(identity)
}

// Participant is the state attached to one live connection.
// It is only read and written by the goroutine serving that connection.
type Participant struct {
	ConnID string
	// Identity is the verified application identity, empty for anonymous viewers.
	Identity string
	// Anonymous connections may claim any chat identity (development mode).
	Anonymous     bool
	DisplayName   string
	IsBroadcaster bool
	IsViewer      bool
}

func NewParticipant(connID, identity string, anonymous bool) *Participant {
	return &Participant{ConnID: connID, Identity: identity, Anonymous: anonymous, DisplayName: DefaultViewerName}
}

func (p *Participant) IsAdmin() bool { return p.Identity == AdminIdentity }

// CanActAs reports whether the connection may speak for identity in the chat.
func (p *Participant) CanActAs(identity string) bool {
	if p.Anonymous {
		return true
	}
	return p.Identity != "" && p.Identity == identity
}
