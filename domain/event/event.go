package event

import "encoding/json"

// Client to server events.
const (
	Join             = "join"
	PrivateMessage   = "privateMessage"
	AdminJoin        = "admin-join"
	JoinLivestream   = "join-livestream"
	ClientReady      = "client-ready"
	AdminStartStream = "admin-start-stream"
	AdminStopStream  = "admin-stop-stream"
	HighlightProduct = "highlight-product"
	SendComment      = "send-comment"
	SendLike         = "send-like"
	Signal           = "signal"
)

// Server to client events. PrivateMessage, ClientReady and Signal are used in both directions.
const (
	PreviousMessages   = "previousMessages"
	StreamStarted      = "stream-started"
	StreamStopped      = "stream-stopped"
	ClientDisconnected = "client-disconnected"
	ClientCount        = "client-count"
	NewComment         = "new-comment"
	LikeCount          = "like-count"
	ProductHighlighted = "product-highlighted"
	AdminNotification  = "adminNotification"
	Error              = "error"
)

// Inbound is one frame received from a client.
type Inbound struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Outbound is one frame sent to a client.
type Outbound struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

func New(name string, data any) Outbound {
	return Outbound{Name: name, Data: data}
}

// Bare builds an event without payload, such as stream-started.
func Bare(name string) Outbound {
	return Outbound{Name: name}
}

// Failure tells a sender that its inbound event was not processed.
func Failure(inbound string, err error) Outbound {
	return Outbound{Name: Error, Data: ErrorPayload{Event: inbound, Message: err.Error()}}
}
