package observability

import (
	"fmt"
	"os"
	goruntime "runtime"

	"github.com/shirou/gopsutil/process"
)

// ProcessStats describes the resource usage of the running server.
type ProcessStats struct {
	PID           int32
	CPUPercent    float64
	MemoryPercent float32
	RSSBytes      uint64
	Goroutines    int
	NumGC         uint32
}

// ReadProcessStats samples the current process through gopsutil and the Go
// runtime.
func ReadProcessStats() (ProcessStats, error) {
	pid := int32(os.Getpid())
	p, err := process.NewProcess(pid)
	if err != nil {
		return ProcessStats{}, fmt.Errorf("find process %d: %w", pid, err)
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return ProcessStats{}, fmt.Errorf("process cpu usage: %w", err)
	}
	ram, err := p.MemoryPercent()
	if err != nil {
		return ProcessStats{}, fmt.Errorf("process ram usage: %w", err)
	}
	info, err := p.MemoryInfo()
	if err != nil {
		return ProcessStats{}, fmt.Errorf("process memory info: %w", err)
	}

	var m goruntime.MemStats
	goruntime.ReadMemStats(&m)

	return ProcessStats{
		PID:           pid,
		CPUPercent:    cpu,
		MemoryPercent: ram,
		RSSBytes:      info.RSS,
		Goroutines:    goruntime.NumGoroutine(),
		NumGC:         m.NumGC,
	}, nil
}
