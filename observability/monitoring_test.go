package observability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonitoringManager_Snapshot(t *testing.T) {
	req := require.New(t)
	m := NewMonitoringManager()

	m.IncrBroadcast()
	m.IncrBroadcast()
	m.IncrDroppedEvent()
	m.IncrDroppedCommand()
	m.IncrArchiveError()
	m.SetProcessUsage(12.5, 3.25)

	stats := m.Snapshot(3, []string{"alex", "brian"})
	req.Equal(3, stats.Connections)
	req.Equal([]string{"alex", "brian"}, stats.OnlineUsers)
	req.Equal(uint64(2), stats.EventsBroadcast)
	req.Equal(uint64(1), stats.EventsDropped)
	req.Equal(uint64(1), stats.CommandsDropped)
	req.Equal(uint64(1), stats.ArchiveErrors)
	req.Equal(12.5, stats.CPUPercent)
	req.Equal(float32(3.25), stats.RAMPercent)
	req.NotEmpty(stats.SampledAt)
}
