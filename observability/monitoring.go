package observability

import (
	"sync"
	"time"
)

// ProcessStats is the latest process sample taken by the heartbeat worker.
type ProcessStats struct {
	PID        int32     `json:"pid"`
	Status     string    `json:"status"`
	CPUPercent float64   `json:"cpu_percent"`
	RSSMb      uint64    `json:"rss_mb"`
	Goroutines int       `json:"goroutines"`
	NumGC      uint32    `json:"num_gc"`
	SampledAt  time.Time `json:"sampled_at"`
}

// RelayStats is what the debug inspector shows next to the badger keys.
type RelayStats struct {
	Process     ProcessStats `json:"process"`
	Connections int          `json:"connections"`
	Viewers     int          `json:"viewers"`
	Streaming   bool         `json:"streaming"`
	Likes       int          `json:"likes"`
}

// Monitor keeps the latest samples for the inspector.
type Monitor struct {
	mu     sync.RWMutex
	latest RelayStats
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) UpdateProcess(stats ProcessStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest.Process = stats
}

func (m *Monitor) UpdateRelay(connections, viewers int, streaming bool, likes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest.Connections = connections
	m.latest.Viewers = viewers
	m.latest.Streaming = streaming
	m.latest.Likes = likes
}

func (m *Monitor) GetLatest() RelayStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}
