// Package observability aggregates runtime telemetry for the stats
// endpoint. Counters are atomic so the hot broadcast path never takes a
// lock to record a delivery.
package observability

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// MonitoringStats is the snapshot served at /api/stats.
type MonitoringStats struct {
	Connections     int      `json:"connections"`
	OnlineUsers     []string `json:"online_users"`
	EventsBroadcast uint64   `json:"events_broadcast"`
	EventsDropped   uint64   `json:"events_dropped"`
	CommandsDropped uint64   `json:"commands_dropped"`
	ArchiveErrors   uint64   `json:"archive_errors"`
	AllocMemMb      uint64   `json:"alloc_mem_mb"`
	NumGC           uint32   `json:"num_gc"`
	CPUPercent      float64  `json:"cpu_percent"`
	RAMPercent      float32  `json:"ram_percent"`
	SampledAt       string   `json:"sampled_at"`
}

// MonitoringManager collects realtime-core telemetry.
type MonitoringManager struct {
	mu sync.RWMutex

	eventsBroadcast uint64
	eventsDropped   uint64
	commandsDropped uint64
	archiveErrors   uint64

	cpuPercent float64
	ramPercent float32
}

func NewMonitoringManager() *MonitoringManager {
	return &MonitoringManager{}
}

func (m *MonitoringManager) IncrBroadcast() {
	atomic.AddUint64(&m.eventsBroadcast, 1)
}

func (m *MonitoringManager) IncrDroppedEvent() {
	atomic.AddUint64(&m.eventsDropped, 1)
}

func (m *MonitoringManager) IncrDroppedCommand() {
	atomic.AddUint64(&m.commandsDropped, 1)
}

func (m *MonitoringManager) IncrArchiveError() {
	atomic.AddUint64(&m.archiveErrors, 1)
}

// SetProcessUsage records the latest self-process sample from the stats
// worker.
func (m *MonitoringManager) SetProcessUsage(cpu float64, ram float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cpuPercent = cpu
	m.ramPercent = ram
}

// Snapshot assembles the current stats; connections and online users come
// from the registry at call time.
func (m *MonitoringManager) Snapshot(connections int, onlineUsers []string) MonitoringStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	m.mu.RLock()
	cpu, ram := m.cpuPercent, m.ramPercent
	m.mu.RUnlock()

	return MonitoringStats{
		Connections:     connections,
		OnlineUsers:     onlineUsers,
		EventsBroadcast: atomic.LoadUint64(&m.eventsBroadcast),
		EventsDropped:   atomic.LoadUint64(&m.eventsDropped),
		CommandsDropped: atomic.LoadUint64(&m.commandsDropped),
		ArchiveErrors:   atomic.LoadUint64(&m.archiveErrors),
		AllocMemMb:      mem.Alloc / 1024 / 1024,
		NumGC:           mem.NumGC,
		CPUPercent:      cpu,
		RAMPercent:      ram,
		SampledAt:       time.Now().UTC().Format(time.RFC3339),
	}
}
