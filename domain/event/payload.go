package event

import "encoding/json"

type JoinPayload struct {
	UserID  string `json:"userId" validate:"required,max=128"`
	AdminID string `json:"adminId,omitempty" validate:"max=128"`
}

type JoinLivestreamPayload struct {
	Username string `json:"username" validate:"max=64"`
}

type HighlightPayload struct {
	Product json.RawMessage `json:"product"`
}

type CommentPayload struct {
	Text string `json:"text" validate:"required,max=500"`
}

// SignalPayload carries opaque WebRTC negotiation blobs. Only routing fields are interpreted.
type SignalPayload struct {
	Type      json.RawMessage `json:"type,omitempty"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	ToAdmin   bool            `json:"toAdmin,omitempty"`
}

// ViewerSignal is relayed from the broadcaster to one viewer.
type ViewerSignal struct {
	Type      json.RawMessage `json:"type,omitempty"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// BroadcasterSignal is relayed from a viewer to the broadcaster.
type BroadcasterSignal struct {
	Type      json.RawMessage `json:"type,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	ClientID  string          `json:"clientId"`
}

type ClientRef struct {
	ClientID string `json:"clientId"`
	Username string `json:"username,omitempty"`
}

type Comment struct {
	Username string `json:"username"`
	Text     string `json:"text"`
	// Timestamp is in unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

type AdminNotice struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

type ErrorPayload struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}
