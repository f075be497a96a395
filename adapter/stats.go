package adapter

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/gosles/slcore/pkg/engine"
)

// Stats is a point-in-time operator view of the runtime and its process.
type Stats struct {
	LiveObjects int
	QueuedJobs  int64
	RSSBytes    uint64
	VMSBytes    uint64
	CPUPercent  float64
}

// CollectStats samples engine counters and process memory/CPU usage.
func CollectStats(e *engine.Engine) (Stats, error) {
	s := Stats{
		LiveObjects: e.LiveObjects(),
		QueuedJobs:  e.QueueLen(),
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return s, fmt.Errorf("open process: %w", err)
	}
	if mem, err := proc.MemoryInfo(); err == nil {
		s.RSSBytes = mem.RSS
		s.VMSBytes = mem.VMS
	}
	if cpu, err := proc.CPUPercent(); err == nil {
		s.CPUPercent = cpu
	}
	return s, nil
}
