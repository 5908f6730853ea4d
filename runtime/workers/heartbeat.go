package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"shop-relay/contract"
	"shop-relay/domain"
	"shop-relay/observability"
	"time"

	"github.com/shirou/gopsutil/process"
)

// LivestreamSnapshotter exposes a copy of the livestream state.
type LivestreamSnapshotter interface {
	Snapshot() domain.LivestreamSnapshot
}

// HeartbeatWorker samples process health (CPU, RSS, status) and relay load at a fixed interval,
// logs it and keeps the latest sample for the debug inspector and the prometheus gauges.
type HeartbeatWorker struct {
	log        *slog.Logger
	registry   contract.IRegistry
	livestream LivestreamSnapshotter
	monitor    *observability.Monitor
	metrics    *observability.Metrics
	interval   time.Duration
}

func NewHeartbeatWorker(
	log *slog.Logger,
	registry contract.IRegistry,
	livestream LivestreamSnapshotter,
	monitor *observability.Monitor,
	metrics *observability.Metrics,
	interval time.Duration,
) *HeartbeatWorker {
	return &HeartbeatWorker{
		log:        log,
		registry:   registry,
		livestream: livestream,
		monitor:    monitor,
		metrics:    metrics,
		interval:   interval,
	}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.beat(p)
		}
	}
}

func (w *HeartbeatWorker) beat(p *process.Process) {
	snapshot := w.livestream.Snapshot()
	connections := w.registry.Connections()
	w.monitor.UpdateRelay(connections, len(snapshot.Viewers), snapshot.Streaming, snapshot.Likes)
	w.metrics.Connections.Set(float64(connections))
	w.metrics.Viewers.Set(float64(len(snapshot.Viewers)))

	rss, cpu, status, err := selfStats(p)
	if err != nil {
		w.log.Error("Failed to collect self stats", "error", err)
		return
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	stats := observability.ProcessStats{
		PID:        p.Pid,
		Status:     status,
		CPUPercent: cpu,
		RSSMb:      rss / 1024 / 1024,
		Goroutines: runtime.NumGoroutine(),
		NumGC:      mem.NumGC,
		SampledAt:  time.Now().UTC(),
	}
	w.monitor.UpdateProcess(stats)
	w.log.Debug("Heartbeat",
		"cpu_percent", stats.CPUPercent,
		"rss_mb", stats.RSSMb,
		"goroutines", stats.Goroutines,
		"connections", connections,
		"viewers", len(snapshot.Viewers),
		"streaming", snapshot.Streaming,
	)
}

// selfStats retrieves memory, CPU and OS status of the given process.
func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}
	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
