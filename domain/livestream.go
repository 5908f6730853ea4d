package domain

import (
	"encoding/json"
	"maps"
)

// LivestreamSession is the state of the single livestream.
// It is not safe for concurrent use; the coordinator owning it serialises access.
type LivestreamSession struct {
	broadcaster string
	streaming   bool
	viewers     map[string]string // connection id -> display name
	likes       int
	highlight   json.RawMessage
}

func NewLivestreamSession() *LivestreamSession {
	return &LivestreamSession{viewers: make(map[string]string)}
}

// SetBroadcaster records connID as the broadcaster, replacing any previous one, and resets likes.
func (s *LivestreamSession) SetBroadcaster(connID string) {
	s.broadcaster = connID
	s.likes = 0
}

func (s *LivestreamSession) Broadcaster() (string, bool) {
	return s.broadcaster, s.broadcaster != ""
}

func (s *LivestreamSession) IsBroadcaster(connID string) bool {
	return connID != "" && s.broadcaster == connID
}

// AddViewer registers or renames a viewer and returns the viewer count.
func (s *LivestreamSession) AddViewer(connID, name string) int {
	s.viewers[connID] = name
	return len(s.viewers)
}

// RemoveViewer returns false when connID was not a viewer.
func (s *LivestreamSession) RemoveViewer(connID string) (int, bool) {
	if _, ok := s.viewers[connID]; !ok {
		return len(s.viewers), false
	}
	delete(s.viewers, connID)
	return len(s.viewers), true
}

func (s *LivestreamSession) ViewerCount() int { return len(s.viewers) }

func (s *LivestreamSession) Start() { s.streaming = true }

func (s *LivestreamSession) IsStreaming() bool { return s.streaming }

// Stop returns the session to idle: no viewers, no likes, no highlight.
// The broadcaster stays recorded until it leaves or is replaced.
func (s *LivestreamSession) Stop() {
	s.streaming = false
	s.viewers = make(map[string]string)
	s.likes = 0
	s.highlight = nil
}

// Release forgets the broadcaster and stops the stream.
func (s *LivestreamSession) Release() {
	s.broadcaster = ""
	s.Stop()
}

// Like adds exactly one like and returns the new total. Likes are not deduplicated per viewer.
func (s *LivestreamSession) Like() int {
	s.likes++
	return s.likes
}

func (s *LivestreamSession) Likes() int { return s.likes }

func (s *LivestreamSession) SetHighlight(product json.RawMessage) {
	s.highlight = append(json.RawMessage(nil), product...)
}

func (s *LivestreamSession) Highlight() (json.RawMessage, bool) {
	return s.highlight, len(s.highlight) > 0
}

// LivestreamSnapshot is a read-only copy of the session, used by the inspector and metrics.
type LivestreamSnapshot struct {
	Broadcaster string            `json:"broadcaster,omitempty"`
	Streaming   bool              `json:"streaming"`
	Viewers     map[string]string `json:"viewers"`
	Likes       int               `json:"likes"`
	Highlight   json.RawMessage   `json:"highlight,omitempty"`
}

func (s *LivestreamSession) Snapshot() LivestreamSnapshot {
	return LivestreamSnapshot{
		Broadcaster: s.broadcaster,
		Streaming:   s.streaming,
		Viewers:     maps.Clone(s.viewers),
		Likes:       s.likes,
		Highlight:   append(json.RawMessage(nil), s.highlight...),
	}
}
