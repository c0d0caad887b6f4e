package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// ProcessUsage receives the sampled self-process figures.
type ProcessUsage interface {
	SetProcessUsage(cpu float64, ram float32)
}

// StatsWorker samples this process's CPU and RAM usage on a ticker and
// pushes the figures into the monitoring manager for the stats endpoint.
type StatsWorker struct {
	log        *slog.Logger
	monitoring ProcessUsage
	interval   time.Duration
}

func NewStatsWorker(log *slog.Logger, monitoring ProcessUsage, interval time.Duration) *StatsWorker {
	return &StatsWorker{log: log, monitoring: monitoring, interval: interval}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	self, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping stats sampling")
			return nil
		case <-ticker.C:
			cpu, err := self.CPUPercent()
			if err != nil {
				w.log.Error("Error while finding process cpu usage", "err", err)
				continue
			}
			ram, err := self.MemoryPercent()
			if err != nil {
				w.log.Error("Error while finding process ram usage", "err", err)
				continue
			}
			w.monitoring.SetProcessUsage(cpu, ram)
		}
	}
}
